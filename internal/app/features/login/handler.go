// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/carrental/internal/app/store/users"
	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/dalemusser/carrental/internal/app/system/timeouts"
	"github.com/dalemusser/carrental/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Authenticator checks an email and password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

type Handler struct {
	Users      Authenticator
	SessionMgr *auth.SessionManager
	Tokens     *auth.TokenService
	Log        *zap.Logger
	Render     func(w http.ResponseWriter, r *http.Request, name string, data any)
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, tokens *auth.TokenService, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sessionMgr,
		Tokens:     tokens,
		Log:        logger,
		Render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}

type loginFormData struct {
	Title     string
	Error     string
	Email     string
	ReturnURL string
	CSRFToken string
}

// ServeLogin handles GET /login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	h.Render(w, r, "login", loginFormData{
		Title:     "Login",
		ReturnURL: query.Get(r, "return"),
		CSRFToken: csrf.Token(r),
	})
}

// HandleLoginPost handles POST /login (form: email, password, return).
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login authenticate")
	defer cancel()

	u, err := h.Users.Authenticate(ctx, email, password)
	switch {
	case errors.Is(err, userstore.ErrBadCredentials):
		h.Log.Info("login failed", zap.String("email", email))
		h.renderFormWithError(w, r, "Incorrect email or password.", email)
		return
	case err != nil:
		h.Log.Error("login: authenticate", zap.Error(err))
		http.Error(w, "a server error occurred", http.StatusInternalServerError)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		h.renderFormWithError(w, r, "Unable to create session. Please try again.", email)
		return
	}

	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	dest := urlutil.SafeReturn(strings.TrimSpace(r.FormValue("return")), "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email string) {
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}
	h.Render(w, r, "login", loginFormData{
		Title:     "Login",
		Error:     msg,
		Email:     email,
		ReturnURL: ret,
		CSRFToken: csrf.Token(r),
	})
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// HandleTokenLogin handles POST /auth/login and returns a bearer token
// for the JSON endpoints.
func (h *Handler) HandleTokenLogin(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "token login")
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, userstore.ErrBadCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	case err != nil:
		h.Log.Error("token login: authenticate", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server error"})
		return
	}

	tok, exp, err := h.Tokens.Issue(u.ID.Hex())
	if err != nil {
		h.Log.Error("token login: issue", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server error"})
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: tok, ExpiresAt: exp.Unix()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
