// internal/app/features/cars/handler.go
package cars

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	carstore "github.com/dalemusser/carrental/internal/app/store/cars"
	"github.com/dalemusser/carrental/internal/app/system/authz"
	"github.com/dalemusser/carrental/internal/app/system/timeouts"
	"github.com/dalemusser/carrental/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CarCreator inserts a new listing.
type CarCreator interface {
	Create(ctx context.Context, in carstore.NewCar) (models.Car, error)
}

type Handler struct {
	Cars   CarCreator
	Policy authz.Policy
	Log    *zap.Logger
	Now    func() time.Time
	Render func(w http.ResponseWriter, r *http.Request, name string, data any)
}

func NewHandler(db *mongo.Database, policy authz.Policy, logger *zap.Logger) *Handler {
	return &Handler{
		Cars:   carstore.New(db),
		Policy: policy,
		Log:    logger,
		Now:    time.Now,
		Render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}

const dateInput = "2006-01-02"

type newCarFormData struct {
	Title     string
	Error     string
	CSRFToken string
	Action    string
	BackURL   string

	Make           string
	Model          string
	Year           string
	PricePerDay    string
	ImageURL       string
	AvailableFrom  string
	AvailableUntil string
}

// owner returns the signed-in car owner's ID when the {id}/{role} path
// segments name that same user.
func (h *Handler) owner(r *http.Request) (primitive.ObjectID, bool) {
	role, _, userID, ok := h.Policy.UserCtx(r)
	if !ok || role != authz.RoleCarOwner {
		return primitive.NilObjectID, false
	}
	if chi.URLParam(r, "id") != userID.Hex() || chi.URLParam(r, "role") != string(authz.RoleCarOwner) {
		return primitive.NilObjectID, false
	}
	return userID, true
}

// ServeNew handles GET /cars/new/{id}/{role}.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.owner(r); !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	today := h.Now().UTC()
	h.Render(w, r, "car_new", newCarFormData{
		Title:          "Rent your car",
		CSRFToken:      csrf.Token(r),
		Action:         r.URL.Path,
		BackURL:        "/dashboard",
		AvailableFrom:  today.Format(dateInput),
		AvailableUntil: today.AddDate(0, 0, 30).Format(dateInput),
	})
}

// HandleCreate handles POST /cars/new/{id}/{role}.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.owner(r)
	if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	form := newCarFormData{
		Title:          "Rent your car",
		CSRFToken:      csrf.Token(r),
		Action:         r.URL.Path,
		BackURL:        "/dashboard",
		Make:           strings.TrimSpace(r.FormValue("make")),
		Model:          strings.TrimSpace(r.FormValue("model")),
		Year:           strings.TrimSpace(r.FormValue("year")),
		PricePerDay:    strings.TrimSpace(r.FormValue("price_per_day")),
		ImageURL:       strings.TrimSpace(r.FormValue("image_url")),
		AvailableFrom:  strings.TrimSpace(r.FormValue("available_from")),
		AvailableUntil: strings.TrimSpace(r.FormValue("available_until")),
	}

	in, msg := parseNewCar(form)
	if msg != "" {
		form.Error = msg
		h.Render(w, r, "car_new", form)
		return
	}
	in.OwnerID = ownerID

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create car")
	defer cancel()

	car, err := h.Cars.Create(ctx, in)
	switch {
	case errors.Is(err, carstore.ErrInvalid):
		form.Error = strings.TrimPrefix(err.Error(), carstore.ErrInvalid.Error()+": ")
		h.Render(w, r, "car_new", form)
		return
	case err != nil:
		h.Log.Error("create car failed", zap.String("owner_id", ownerID.Hex()), zap.Error(err))
		http.Error(w, "could not save car", http.StatusInternalServerError)
		return
	}

	h.Log.Info("car listed", zap.String("car_id", car.ID.Hex()), zap.String("owner_id", ownerID.Hex()))
	http.Redirect(w, r, "/dashboard?notice=car-added", http.StatusSeeOther)
}

// parseNewCar converts the form strings. A non-empty message means the
// form must be shown again.
func parseNewCar(f newCarFormData) (carstore.NewCar, string) {
	in := carstore.NewCar{Make: f.Make, Model: f.Model, ImageURL: f.ImageURL}

	if f.Year != "" {
		y, err := strconv.Atoi(f.Year)
		if err != nil || y < 1886 || y > 9999 {
			return in, "Year must be a valid year."
		}
		in.Year = y
	}

	if f.PricePerDay == "" {
		return in, "Price per day is required."
	}
	price, err := strconv.ParseFloat(f.PricePerDay, 64)
	if err != nil {
		return in, "Price per day must be a number."
	}
	in.PricePerDay = price

	from, err := time.Parse(dateInput, f.AvailableFrom)
	if err != nil {
		return in, "Available from must be a date."
	}
	until, err := time.Parse(dateInput, f.AvailableUntil)
	if err != nil {
		return in, "Available until must be a date."
	}
	in.AvailableFrom = from
	// The last day is bookable through its end.
	in.AvailableUntil = until.Add(24*time.Hour - time.Second)
	return in, ""
}
