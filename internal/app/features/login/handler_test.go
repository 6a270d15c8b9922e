package login_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/carrental/internal/app/features/login"
	userstore "github.com/dalemusser/carrental/internal/app/store/users"
	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/dalemusser/carrental/internal/domain/models"
	"github.com/dalemusser/carrental/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	userstore.BcryptCost = bcrypt.MinCost
}

type rendered struct {
	name string
	data any
}

func newTestHandler(t *testing.T) (*login.Handler, *rendered, models.User) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only-32b", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	tokens, err := auth.NewTokenService("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}

	h := login.NewHandler(db, sessionMgr, tokens, logger)
	got := &rendered{}
	h.Render = func(w http.ResponseWriter, r *http.Request, name string, data any) {
		got.name, got.data = name, data
		w.WriteHeader(http.StatusOK)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := userstore.New(db).Create(ctx, userstore.NewUser{
		FullName: "Olga Owner",
		Email:    "olga@rent.test",
		Role:     models.RoleCarOwner,
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return h, got, u
}

func postForm(h http.HandlerFunc, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandleLoginPost_Success(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := postForm(h.HandleLoginPost, url.Values{"email": {"Olga@Rent.test"}, "password": {"correct horse"}})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location: got %q, want %q", loc, "/dashboard")
	}

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
		}
	}
	if !found {
		t.Error("expected session cookie to be set")
	}
}

func TestHandleLoginPost_ReturnURL(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := postForm(h.HandleLoginPost, url.Values{
		"email": {"olga@rent.test"}, "password": {"correct horse"}, "return": {"/dashboard?notice=x"},
	})
	if loc := rec.Header().Get("Location"); loc != "/dashboard?notice=x" {
		t.Errorf("Location: got %q", loc)
	}

	// Off-site return targets fall back to the dashboard.
	rec = postForm(h.HandleLoginPost, url.Values{
		"email": {"olga@rent.test"}, "password": {"correct horse"}, "return": {"https://evil.test/"},
	})
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("Location: got %q, want /dashboard", loc)
	}
}

func TestHandleLoginPost_BadPassword(t *testing.T) {
	h, got, _ := newTestHandler(t)

	rec := postForm(h.HandleLoginPost, url.Values{"email": {"olga@rent.test"}, "password": {"wrong password"}})

	if rec.Code != http.StatusOK {
		t.Errorf("expected form re-render, got %d", rec.Code)
	}
	if got.name != "login" {
		t.Errorf("template: got %q, want login", got.name)
	}
}

func TestHandleLoginPost_MissingFields(t *testing.T) {
	h, got, _ := newTestHandler(t)

	postForm(h.HandleLoginPost, url.Values{"email": {"olga@rent.test"}})
	if got.name != "login" {
		t.Errorf("template: got %q, want login", got.name)
	}
}

func TestHandleTokenLogin(t *testing.T) {
	h, _, u := newTestHandler(t)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.HandleTokenLogin(rec, req)
		return rec
	}

	rec := post(`{"email":"olga@rent.test","password":"correct horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response JSON: %v", err)
	}
	claims, err := h.Tokens.Parse(resp.Token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Subject != u.ID.Hex() {
		t.Errorf("subject: got %q, want %q", claims.Subject, u.ID.Hex())
	}

	if rec := post(`{"email":"olga@rent.test","password":"nope nope"}`); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status: got %d, want 401", rec.Code)
	}
	if rec := post(`not json`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad body status: got %d, want 400", rec.Code)
	}
}
