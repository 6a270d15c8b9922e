// internal/app/features/cars/routes.go
package cars

import (
	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /cars. The {id}/{role} segments must name the
// signed-in car owner.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/new/{id}/{role}", h.ServeNew)
		pr.Post("/new/{id}/{role}", h.HandleCreate)
	})
	return r
}
