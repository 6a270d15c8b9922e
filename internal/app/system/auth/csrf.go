package auth

import (
	"fmt"
	"net/http"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// CSRF returns middleware that requires a valid gorilla/csrf token on
// every unsafe request. Pages read the token with csrf.Token(r) and post
// it back in the "gorilla.csrf.Token" form field.
//
// With secure=false (plain http in dev) the token cookie drops the Secure
// flag and the https-only Referer check is skipped; the token and Origin
// checks still apply.
func CSRF(key string, secure bool, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	if len(key) < 32 {
		return nil, fmt.Errorf("csrf key must be at least 32 bytes, got %d", len(key))
	}

	protect := csrf.Protect([]byte(key)[:32],
		csrf.Path("/"),
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Error(csrf.FailureReason(r)))
			http.Error(w, "forbidden: invalid or missing CSRF token", http.StatusForbidden)
		})),
	)

	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}, nil
}
