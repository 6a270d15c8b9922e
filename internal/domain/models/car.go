// internal/domain/models/car.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Car is a vehicle listed for rent by a car owner.
type Car struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner"`
	Make        string             `bson:"make" json:"make"`
	Model       string             `bson:"model" json:"model"`
	Year        int                `bson:"year,omitempty" json:"year,omitempty"`
	PricePerDay float64            `bson:"price_per_day" json:"pricePerDay"`
	ImageURL    string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`

	AvailableFrom  time.Time `bson:"available_from" json:"availableFrom"`
	AvailableUntil time.Time `bson:"available_until" json:"availableUntil"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
