// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/carrental/internal/app/store/users"
	"github.com/dalemusser/carrental/internal/app/system/authz"
	"github.com/dalemusser/carrental/internal/app/system/timeouts"
	"github.com/dalemusser/carrental/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserGetter loads the stored user record.
type UserGetter interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type Handler struct {
	Users  UserGetter
	Policy authz.Policy
	Log    *zap.Logger
	Render func(w http.ResponseWriter, r *http.Request, name string, data any)
}

func NewHandler(db *mongo.Database, policy authz.Policy, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  userstore.New(db),
		Policy: policy,
		Log:    logger,
		Render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}

type profileData struct {
	Title       string
	FullName    string
	Email       string
	RoleLabel   string
	ImageURL    string
	MemberSince string
	BackURL     string
}

// ServeProfile handles GET /profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := h.Policy.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "profile load")
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		http.NotFound(w, r)
		return
	case err != nil:
		h.Log.Error("profile: load user", zap.String("user_id", userID.Hex()), zap.Error(err))
		http.Error(w, "could not load profile", http.StatusInternalServerError)
		return
	}

	since := "n/a"
	if !u.CreatedAt.IsZero() {
		since = u.CreatedAt.Format("January 2006")
	}

	h.Render(w, r, "profile", profileData{
		Title:       "Profile",
		FullName:    u.FullName,
		Email:       u.Email,
		RoleLabel:   role.Label(),
		ImageURL:    u.ImageURL,
		MemberSince: since,
		BackURL:     "/dashboard",
	})
}
