// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /profile.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeProfile)
	return r
}
