// internal/app/features/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	businessstore "github.com/dalemusser/carrental/internal/app/store/businesses"
	carstore "github.com/dalemusser/carrental/internal/app/store/cars"
	userstore "github.com/dalemusser/carrental/internal/app/store/users"
	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/dalemusser/carrental/internal/app/system/authz"
	"github.com/dalemusser/carrental/internal/app/system/timeouts"
	"github.com/dalemusser/carrental/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// UserReader loads a user together with their cars.
type UserReader interface {
	GetWithCars(ctx context.Context, id primitive.ObjectID) (*userstore.UserWithCars, error)
}

// CarLister lists every car.
type CarLister interface {
	ListAll(ctx context.Context) ([]models.Car, error)
}

// BusinessReader lists businesses and loads one by owner.
type BusinessReader interface {
	ListAll(ctx context.Context) ([]models.Business, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Business, error)
}

// Handler serves the JSON reads the dashboard and other clients use.
type Handler struct {
	Users      UserReader
	Cars       CarLister
	Businesses BusinessReader
	Policy     authz.Policy
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, policy authz.Policy, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Cars:       carstore.New(db),
		Businesses: businessstore.New(db),
		Policy:     policy,
		Log:        logger,
	}
}

// ServeSessionUser handles GET /auth/user/get_session_user.
//
//	{ "user": { "_id": "...", "fullname": "...", ..., "car": [ ... ] } }
func (h *Handler) ServeSessionUser(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "api session user")
	defer cancel()

	u, err := h.Users.GetWithCars(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.Log.Error("api: load session user failed", zap.String("user_id", su.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

// ServeCars handles GET /root/cars/get. Every car is returned; callers
// apply their own availability rules.
func (h *Handler) ServeCars(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "api list cars")
	defer cancel()

	cars, err := h.Cars.ListAll(ctx)
	if err != nil {
		h.Log.Error("api: list cars failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list cars")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cars": cars})
}

// ServeBusinesses handles GET /root/business/get (admin only).
func (h *Handler) ServeBusinesses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "api list businesses")
	defer cancel()

	list, err := h.Businesses.ListAll(ctx)
	if err != nil {
		h.Log.Error("api: list businesses failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list businesses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"businesses": list})
}

// ServeBusinessByUser handles GET /root/business/get/{userID}. A user may
// read their own business; the admin may read any.
func (h *Handler) ServeBusinessByUser(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "userID")
	userID, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	su, ok := auth.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if su.ID != userID.Hex() && h.Policy.Resolve(su) != authz.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "api business by user")
	defer cancel()

	b, err := h.Businesses.GetByUserID(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		writeError(w, http.StatusNotFound, "business not found")
		return
	}
	if err != nil {
		h.Log.Error("api: load business failed", zap.String("user_id", raw), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load business")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"business": b})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
