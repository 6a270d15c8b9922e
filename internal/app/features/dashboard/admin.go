// internal/app/features/dashboard/admin.go
package dashboard

import (
	"errors"
	"net/http"
	"strings"

	carstore "github.com/dalemusser/carrental/internal/app/store/cars"
	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/dalemusser/carrental/internal/app/system/authz"
	"github.com/dalemusser/carrental/internal/app/system/timeouts"
	"github.com/dalemusser/carrental/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type businessRow struct {
	ID            string
	Name          string
	Status        string
	DeclineReason string
	FleetSize     int
	Pending       bool
}

type adminDashboardData struct {
	baseDashboardData
	Cars       []carRow
	Businesses []businessRow
}

func (h *Handler) serveAdmin(w http.ResponseWriter, r *http.Request, u *auth.SessionUser) {
	data := h.Loader.LoadAdmin(r.Context())

	rows := make([]businessRow, 0, len(data.Businesses))
	for _, b := range data.Businesses {
		rows = append(rows, businessRow{
			ID:            b.ID.Hex(),
			Name:          b.Name,
			Status:        b.Status,
			DeclineReason: b.DeclineReason,
			FleetSize:     len(b.Cars),
			Pending:       b.Status == models.BusinessPending,
		})
	}

	vm := adminDashboardData{
		baseDashboardData: newBase(r, u, authz.RoleAdmin, "Admin Dashboard"),
		Cars:              carRows(data.Cars),
		Businesses:        rows,
	}

	h.Log.Debug("admin dashboard served",
		zap.String("user", u.Name),
		zap.Int("cars", len(vm.Cars)),
		zap.Int("businesses", len(vm.Businesses)))

	h.Render(w, r, "admin_dashboard", vm)
}

// HandleAdminDeleteCar removes any car listing.
// POST /dashboard/admin/cars/{id}/delete
func (h *Handler) HandleAdminDeleteCar(w http.ResponseWriter, r *http.Request) {
	carID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad car id", http.StatusBadRequest)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin delete car")
	defer cancel()

	err = h.Loader.Cars.DeleteAny(ctx, carID)
	switch {
	case errors.Is(err, carstore.ErrNotFound):
		redirectWithNotice(w, r, noticeCarMissing)
	case err != nil:
		h.Log.Error("admin delete car failed", zap.String("car_id", carID.Hex()), zap.Error(err))
		http.Error(w, "could not delete car", http.StatusInternalServerError)
	default:
		h.Log.Info("car removed by admin", zap.String("car_id", carID.Hex()), zap.String("admin", adminEmail(r)))
		redirectWithNotice(w, r, noticeCarRemoved)
	}
}

// HandleAdminDecide approves or declines a business.
// POST /dashboard/admin/businesses/{id}/decide  (form: status, reason)
func (h *Handler) HandleAdminDecide(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad business id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	status := strings.TrimSpace(r.PostFormValue("status"))
	reason := r.PostFormValue("reason")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin decide business")
	defer cancel()

	if err := h.Loader.Businesses.Decide(ctx, id, status, reason); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Warn("business decision rejected",
				zap.String("business_id", id.Hex()),
				zap.String("status", status),
				zap.Error(err))
		}
		redirectWithNotice(w, r, noticeDecideError)
		return
	}

	h.Log.Info("business reviewed",
		zap.String("business_id", id.Hex()),
		zap.String("status", status),
		zap.String("admin", adminEmail(r)))
	redirectWithNotice(w, r, noticeDecided)
}

func adminEmail(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return u.Email
	}
	return ""
}
