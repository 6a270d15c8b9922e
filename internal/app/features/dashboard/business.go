// internal/app/features/dashboard/business.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/dalemusser/carrental/internal/app/system/authz"
	"github.com/dalemusser/carrental/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type businessDashboardData struct {
	baseDashboardData
	HasBusiness   bool
	Status        string
	DeclineReason string
	Fleet         []models.FleetCar
}

func (h *Handler) serveBusiness(w http.ResponseWriter, r *http.Request, u *auth.SessionUser, userID primitive.ObjectID) {
	data := h.Loader.LoadBusiness(r.Context(), userID)

	vm := businessDashboardData{
		baseDashboardData: newBase(r, u, authz.RoleBusiness, "Company Dashboard"),
		DeclineReason:     data.DeclineReason,
		Fleet:             []models.FleetCar{},
	}
	// The profile card shows the company name, not the person.
	vm.DisplayName = data.Name
	if data.Business != nil {
		vm.HasBusiness = true
		vm.Status = data.Business.Status
		vm.Fleet = data.Business.Cars
	}

	h.Render(w, r, "business_dashboard", vm)
}
