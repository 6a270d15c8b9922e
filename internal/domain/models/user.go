// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a signed-up account: car owners, businesses, and the admin.
//
// NOTE:
//   - Admin is not a stored role. A user is the admin when their email
//     matches the configured admin_email (see authz.Resolve).
//   - Cars are not embedded. Use the cars collection keyed by owner_id.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	FullName     string             `bson:"full_name" json:"fullname"`
	Email        string             `bson:"email" json:"email"`
	Role         string             `bson:"role" json:"role"` // carOwner | business
	ImageURL     string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Stored role values.
const (
	RoleCarOwner = "carOwner"
	RoleBusiness = "business"
)
