// internal/app/features/dashboard/owner.go
package dashboard

import (
	"errors"
	"net/http"

	carstore "github.com/dalemusser/carrental/internal/app/store/cars"
	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/dalemusser/carrental/internal/app/system/authz"
	"github.com/dalemusser/carrental/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ownerDashboardData struct {
	baseDashboardData
	Cars       []carRow
	ProfileURL string
	LogoutURL  string
	AddCarURL  string
}

func (h *Handler) serveOwner(w http.ResponseWriter, r *http.Request, u *auth.SessionUser, userID primitive.ObjectID) {
	data := h.Loader.LoadOwner(r.Context(), userID)

	vm := ownerDashboardData{
		baseDashboardData: newBase(r, u, authz.RoleCarOwner, "Dashboard"),
		Cars:              carRows(data.Cars),
		ProfileURL:        "/profile",
		LogoutURL:         "/logout",
		AddCarURL:         "/cars/new/" + u.ID + "/" + u.Role,
	}

	h.Log.Debug("owner dashboard served", zap.String("user", u.Name), zap.Int("cars", len(vm.Cars)))
	h.Render(w, r, "owner_dashboard", vm)
}

// HandleOwnerDeleteCar removes one of the signed-in owner's cars.
// POST /dashboard/cars/{id}/delete
func (h *Handler) HandleOwnerDeleteCar(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := h.Policy.UserCtx(r)
	if !ok || role != authz.RoleCarOwner {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	carID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad car id", http.StatusBadRequest)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "owner delete car")
	defer cancel()

	err = h.Loader.Cars.Delete(ctx, carID, userID)
	switch {
	case errors.Is(err, carstore.ErrNotFound):
		redirectWithNotice(w, r, noticeCarMissing)
	case err != nil:
		h.Log.Error("owner delete car failed", zap.String("car_id", carID.Hex()), zap.Error(err))
		http.Error(w, "could not delete car", http.StatusInternalServerError)
	default:
		h.Log.Info("car removed by owner", zap.String("car_id", carID.Hex()), zap.String("owner_id", userID.Hex()))
		redirectWithNotice(w, r, noticeCarRemoved)
	}
}
