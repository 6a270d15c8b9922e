// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/dashboard").
//
// The handler dispatches to the car owner, business, or admin view
// based on the current user's resolved role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)
		pr.Post("/cars/{id}/delete", h.HandleOwnerDeleteCar)

		pr.Group(func(ar chi.Router) {
			ar.Use(h.Policy.RequireAdmin)
			ar.Post("/admin/cars/{id}/delete", h.HandleAdminDeleteCar)
			ar.Post("/admin/businesses/{id}/decide", h.HandleAdminDecide)
		})
	})

	return r
}
