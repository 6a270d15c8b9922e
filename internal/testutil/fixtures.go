package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/carrental/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given role. PasswordHash is left empty.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		FullName:  fullName,
		Email:     email,
		Role:      role,
		ImageURL:  "https://img.test/" + email + ".png",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateCarOwner inserts a user with role carOwner.
func (f *Fixtures) CreateCarOwner(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleCarOwner)
}

// CreateBusinessUser inserts a user with role business.
func (f *Fixtures) CreateBusinessUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleBusiness)
}

// CreateCar inserts a car for ownerID available until the given time.
func (f *Fixtures) CreateCar(ctx context.Context, ownerID primitive.ObjectID, brand, model string, until time.Time) models.Car {
	f.t.Helper()

	now := time.Now().UTC()
	car := models.Car{
		ID:             primitive.NewObjectID(),
		OwnerID:        ownerID,
		Make:           brand,
		Model:          model,
		Year:           2022,
		PricePerDay:    45,
		AvailableFrom:  now.AddDate(0, 0, -1),
		AvailableUntil: until.UTC(),
		CreatedAt:      now,
	}
	if _, err := f.db.Collection("cars").InsertOne(ctx, car); err != nil {
		f.t.Fatalf("failed to create test car: %v", err)
	}
	return car
}

// CreateBusiness inserts a business owned by userID.
func (f *Fixtures) CreateBusiness(ctx context.Context, userID primitive.ObjectID, name, status, declineReason string) models.Business {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.Business{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		Name:          name,
		NameCI:        text.Fold(name),
		Status:        status,
		DeclineReason: declineReason,
		Cars: []models.FleetCar{
			{Make: "Toyota", Model: "Corolla", Year: 2021, PricePerDay: 39},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("businesses").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test business: %v", err)
	}
	return b
}
