package businessstore

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/dalemusser/carrental/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicate is returned when the user already registered a business.
	ErrDuplicate = errors.New("this user already has a business")

	errNameRequired   = errors.New("business name is required")
	errBadStatus      = errors.New(`status must be "approved"|"declined"`)
	errReasonRequired = errors.New("a decline reason is required")
)

// Decline reasons are plain text typed by the admin; strip any markup.
// Entity-encoded input is decoded before sanitizing so encoded tags are
// stripped too; the sanitizer's own escaping is then undone so the
// stored text is escaped once, by the templates.
var reasonPolicy = bluemonday.StrictPolicy()

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("businesses")}
}

// ListAll returns every business ordered by name.
func (s *Store) ListAll(ctx context.Context) ([]models.Business, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Business{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByUserID loads the business registered by userID.
// Returns mongo.ErrNoDocuments if the user has none.
func (s *Store) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Business, error) {
	var b models.Business
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&b); err != nil {
		return nil, err
	}
	if b.Cars == nil {
		b.Cars = []models.FleetCar{}
	}
	return &b, nil
}

// Create registers a pending business for userID.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, name string, fleet []models.FleetCar) (models.Business, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Business{}, errNameRequired
	}
	if fleet == nil {
		fleet = []models.FleetCar{}
	}
	now := time.Now().UTC()
	b := models.Business{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Name:      name,
		NameCI:    text.Fold(name),
		Status:    models.BusinessPending,
		Cars:      fleet,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, b); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Business{}, ErrDuplicate
		}
		return models.Business{}, err
	}
	return b, nil
}

// Decide records the admin's review. Declining requires a reason, which is
// stripped of markup; approving clears any previous reason.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, status, reason string) error {
	set := bson.M{"status": status, "updated_at": time.Now().UTC()}
	update := bson.M{"$set": set}

	switch status {
	case models.BusinessApproved:
		update["$unset"] = bson.M{"decline_reason": ""}
	case models.BusinessDeclined:
		clean := cleanReason(reason)
		if clean == "" {
			return errReasonRequired
		}
		set["decline_reason"] = clean
	default:
		return errBadStatus
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func cleanReason(reason string) string {
	decoded := html.UnescapeString(reason)
	return strings.TrimSpace(html.UnescapeString(reasonPolicy.Sanitize(decoded)))
}
