// internal/app/features/api/routes.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SessionRoutes is mounted under /auth/user. bearer authenticates the caller.
func SessionRoutes(h *Handler, bearer func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(bearer).Get("/get_session_user", h.ServeSessionUser)
	return r
}

// RootRoutes is mounted under /root.
func RootRoutes(h *Handler, bearer func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/cars/get", h.ServeCars)

	r.Group(func(pr chi.Router) {
		pr.Use(bearer)
		pr.With(h.Policy.RequireAdmin).Get("/business/get", h.ServeBusinesses)
		pr.Get("/business/get/{userID}", h.ServeBusinessByUser)
	})
	return r
}
