// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	businessstore "github.com/dalemusser/carrental/internal/app/store/businesses"
	carstore "github.com/dalemusser/carrental/internal/app/store/cars"
	userstore "github.com/dalemusser/carrental/internal/app/store/users"
	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/dalemusser/carrental/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RenderFunc renders the named template with data.
type RenderFunc func(w http.ResponseWriter, r *http.Request, name string, data any)

type Handler struct {
	Loader *Loader
	Policy authz.Policy
	Log    *zap.Logger
	Render RenderFunc
}

func NewHandler(db *mongo.Database, policy authz.Policy, logger *zap.Logger) *Handler {
	return &Handler{
		Loader: &Loader{
			Owners:     userstore.New(db),
			Cars:       carstore.New(db),
			Businesses: businessstore.New(db),
			Log:        logger,
		},
		Policy: policy,
		Log:    logger,
		Render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}

// ServeDashboard picks the sub-dashboard for the signed-in user's role.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := h.Policy.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	u, _ := auth.CurrentUser(r)

	switch role {
	case authz.RoleCarOwner:
		h.serveOwner(w, r, u, userID)
	case authz.RoleAdmin:
		h.serveAdmin(w, r, u)
	case authz.RoleBusiness:
		h.serveBusiness(w, r, u, userID)
	default:
		h.Log.Warn("dashboard: user has no dashboard role",
			zap.String("user_id", u.ID), zap.String("role", u.Role))
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
