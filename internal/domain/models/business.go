// internal/domain/models/business.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Business review states.
const (
	BusinessPending  = "pending"
	BusinessApproved = "approved"
	BusinessDeclined = "declined"
)

// Business is a rental company registered by a user with role "business".
// One business per user.
type Business struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"userId"`
	Name          string             `bson:"name" json:"name"`
	NameCI        string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Status        string             `bson:"status" json:"status"`
	DeclineReason string             `bson:"decline_reason,omitempty" json:"declineReason,omitempty"`
	Cars          []FleetCar         `bson:"cars,omitempty" json:"cars"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// FleetCar is a vehicle listed in a business's fleet.
type FleetCar struct {
	Make        string  `bson:"make" json:"make"`
	Model       string  `bson:"model" json:"model"`
	Year        int     `bson:"year,omitempty" json:"year,omitempty"`
	PricePerDay float64 `bson:"price_per_day" json:"pricePerDay"`
	ImageURL    string  `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
}
