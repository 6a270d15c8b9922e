// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/carrental/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the dashboard a signed-in user gets.
type Role string

const (
	RoleNone     Role = ""
	RoleCarOwner Role = "carOwner"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

// Label is the short caption shown under the user's name.
func (r Role) Label() string {
	switch r {
	case RoleCarOwner:
		return "Car owner"
	case RoleBusiness:
		return "Company"
	case RoleAdmin:
		return "Admin"
	}
	return ""
}

// Policy resolves roles. Admin is not a stored role: a user is the admin
// when their email equals AdminEmail.
type Policy struct {
	AdminEmail string
}

// IsAdmin reports whether email is the configured admin address.
// Comparison is trimmed and case-insensitive; an unset admin email
// matches nobody.
func (p Policy) IsAdmin(email string) bool {
	want := strings.TrimSpace(p.AdminEmail)
	if want == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(email), want)
}

// Resolve picks the dashboard for u. A carOwner always gets the owner
// dashboard, even when their email is the admin address; admin wins over
// business.
func (p Policy) Resolve(u *auth.SessionUser) Role {
	if u == nil {
		return RoleNone
	}
	switch {
	case u.Role == string(RoleCarOwner):
		return RoleCarOwner
	case p.IsAdmin(u.Email):
		return RoleAdmin
	case u.Role == string(RoleBusiness):
		return RoleBusiness
	}
	return RoleNone
}

// UserCtx returns the user's resolved role, name, Mongo ObjectID, and a
// found flag. If no user is present or the user ID is malformed it
// returns RoleNone, "", NilObjectID, false.
func (p Policy) UserCtx(r *http.Request) (role Role, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return RoleNone, "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session; fail closed.
		return RoleNone, "", primitive.NilObjectID, false
	}
	return p.Resolve(user), user.Name, userID, true
}

// RequireAdmin lets through only users that Resolve to RoleAdmin, so a
// carOwner holding the admin address is refused here as on the dashboard.
func (p Policy) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.CurrentUser(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if p.Resolve(u) != RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
