package carstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/carrental/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when a car does not exist or is not owned by the caller.
	ErrNotFound = errors.New("car not found")

	// ErrInvalid wraps every validation failure from Create.
	ErrInvalid = errors.New("invalid car")

	errMakeModel = fmt.Errorf("%w: make and model are required", ErrInvalid)
	errWindow    = fmt.Errorf("%w: available until must be after available from", ErrInvalid)
	errPrice     = fmt.Errorf("%w: price per day must not be negative", ErrInvalid)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("cars")}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

// ListAll returns every listed car, newest first. Availability is not
// applied here; callers filter with availability.Filter.
func (s *Store) ListAll(ctx context.Context) ([]models.Car, error) {
	return s.find(ctx, bson.M{})
}

// ListByOwner returns the cars listed by ownerID, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Car, error) {
	return s.find(ctx, bson.M{"owner_id": ownerID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Car, error) {
	cur, err := s.c.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Car{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewCar is the input to Create.
type NewCar struct {
	OwnerID        primitive.ObjectID
	Make           string
	Model          string
	Year           int
	PricePerDay    float64
	ImageURL       string
	AvailableFrom  time.Time
	AvailableUntil time.Time
}

// Create validates and inserts a car listing.
func (s *Store) Create(ctx context.Context, in NewCar) (models.Car, error) {
	c := models.Car{
		ID:             primitive.NewObjectID(),
		OwnerID:        in.OwnerID,
		Make:           strings.TrimSpace(in.Make),
		Model:          strings.TrimSpace(in.Model),
		Year:           in.Year,
		PricePerDay:    in.PricePerDay,
		ImageURL:       strings.TrimSpace(in.ImageURL),
		AvailableFrom:  in.AvailableFrom.UTC(),
		AvailableUntil: in.AvailableUntil.UTC(),
		CreatedAt:      time.Now().UTC(),
	}
	if c.Make == "" || c.Model == "" {
		return models.Car{}, errMakeModel
	}
	if c.PricePerDay < 0 {
		return models.Car{}, errPrice
	}
	if !c.AvailableUntil.After(c.AvailableFrom) {
		return models.Car{}, errWindow
	}

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Car{}, err
	}
	return c, nil
}

// Delete removes car id if it is owned by ownerID.
func (s *Store) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAny removes car id regardless of owner (admin moderation).
func (s *Store) DeleteAny(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
