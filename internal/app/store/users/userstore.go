package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/carrental/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrBadCredentials is returned by Authenticate for an unknown email or a wrong password.
	ErrBadCredentials = errors.New("invalid email or password")

	errBadRole       = errors.New(`role must be "carOwner"|"business"|"admin"`)
	errEmailRequired = errors.New("email is required")
	errShortPassword = errors.New("password must be at least 8 characters")
)

// RoleAdmin is stored on the bootstrap admin account. The dashboard still
// decides admin by email (authz.Policy), never by this value.
const RoleAdmin = "admin"

// BcryptCost is the hashing cost for new passwords. Tests lower it.
var BcryptCost = bcrypt.DefaultCost

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// NormalizeEmail trims and lowercases an email for storage and lookup.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": NormalizeEmail(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// NewUser is the input to Create.
type NewUser struct {
	FullName string
	Email    string
	Role     string
	ImageURL string
	Password string
}

// Create validates, hashes the password, and inserts a user.
func (s *Store) Create(ctx context.Context, in NewUser) (models.User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return models.User{}, errEmailRequired
	}
	switch in.Role {
	case models.RoleCarOwner, models.RoleBusiness, RoleAdmin:
	default:
		return models.User{}, errBadRole
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		Role:         in.Role,
		ImageURL:     strings.TrimSpace(in.ImageURL),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// SetPassword replaces the password hash of the user with id.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Authenticate returns the user with email when password matches.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	return u, nil
}

// HashPassword bcrypt-hashes a password after checking its length.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", errShortPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// UserWithCars is a user together with the cars they list.
// Its JSON shape is what the session-user endpoint returns.
type UserWithCars struct {
	models.User `bson:",inline"`
	Cars        []models.Car `bson:"car" json:"car"`
}

// GetWithCars loads the user with id and their cars, newest first.
// Returns mongo.ErrNoDocuments if the user does not exist.
func (s *Store) GetWithCars(ctx context.Context, id primitive.ObjectID) (*UserWithCars, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "cars",
			"let":  bson.M{"uid": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$owner_id", "$$uid"}}}},
				bson.M{"$sort": bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
			},
			"as": "car",
		}}},
		{{Key: "$project", Value: bson.M{"password_hash": 0}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, err
		}
		return nil, mongo.ErrNoDocuments
	}
	var out UserWithCars
	if err := cur.Decode(&out); err != nil {
		return nil, err
	}
	if out.Cars == nil {
		out.Cars = []models.Car{}
	}
	return &out, nil
}
