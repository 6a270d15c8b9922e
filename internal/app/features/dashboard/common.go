// internal/app/features/dashboard/common.go
package dashboard

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/dalemusser/carrental/internal/app/system/authz"
	"github.com/dalemusser/carrental/internal/domain/models"
	"github.com/gorilla/csrf"
)

// baseDashboardData contains fields common to all dashboard views.
type baseDashboardData struct {
	Title       string
	IsLoggedIn  bool
	Role        string
	RoleLabel   string
	UserName    string // shown in the welcome line
	DisplayName string // shown on the profile card
	ImageURL    string
	CurrentPath string
	Notice      string
	CSRFToken   string
}

func newBase(r *http.Request, u *auth.SessionUser, role authz.Role, title string) baseDashboardData {
	return baseDashboardData{
		Title:       title,
		IsLoggedIn:  true,
		Role:        string(role),
		RoleLabel:   role.Label(),
		UserName:    u.Name,
		DisplayName: u.Name,
		ImageURL:    u.ImageURL,
		CurrentPath: r.URL.Path,
		Notice:      noticeText(r.URL.Query().Get("notice")),
		CSRFToken:   csrf.Token(r),
	}
}

// carRow is a car formatted for the dashboard tables.
type carRow struct {
	ID             string
	Title          string
	ImageURL       string
	Price          string
	AvailableFrom  string
	AvailableUntil string
}

const dateLayout = "Jan 2, 2006"

func carRows(cars []models.Car) []carRow {
	rows := make([]carRow, 0, len(cars))
	for _, c := range cars {
		title := c.Make + " " + c.Model
		if c.Year > 0 {
			title = fmt.Sprintf("%s (%d)", title, c.Year)
		}
		rows = append(rows, carRow{
			ID:             c.ID.Hex(),
			Title:          title,
			ImageURL:       c.ImageURL,
			Price:          fmt.Sprintf("$%.2f/day", c.PricePerDay),
			AvailableFrom:  formatDate(c.AvailableFrom),
			AvailableUntil: formatDate(c.AvailableUntil),
		})
	}
	return rows
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "n/a"
	}
	return t.Format(dateLayout)
}

// Notices carried across POST/redirect/GET.
const (
	noticeCarAdded    = "car-added"
	noticeCarRemoved  = "car-removed"
	noticeCarMissing  = "car-missing"
	noticeDecided     = "decided"
	noticeDecideError = "decide-failed"
)

func noticeText(code string) string {
	switch code {
	case noticeCarAdded:
		return "Car listed."
	case noticeCarRemoved:
		return "Car removed."
	case noticeCarMissing:
		return "That car no longer exists."
	case noticeDecided:
		return "Business review saved."
	case noticeDecideError:
		return "Could not save the business review."
	}
	return ""
}

func redirectWithNotice(w http.ResponseWriter, r *http.Request, notice string) {
	http.Redirect(w, r, "/dashboard?notice="+url.QueryEscape(notice), http.StatusSeeOther)
}
