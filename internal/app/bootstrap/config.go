// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"
	devJWTSecret  = "dev-only-jwt-secret-change-me-0123456789"
	devCSRFKey    = "dev-only-csrf-key-change-me-0123456789"
)

// appConfigKeys defines the configuration keys for the rental service.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: CARRENTAL_MONGO_URI, CARRENTAL_ADMIN_EMAIL, etc.
//   - Command-line flags: --mongo_uri, --admin_email, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "carrental", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_connect_tries", Default: 5, Desc: "MongoDB connect attempts before startup fails"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "carrental-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "72h", Desc: "Session cookie lifetime"},
	{Name: "csrf_key", Default: devCSRFKey, Desc: "CSRF token signing key (32+ chars, strong in production)"},

	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HMAC secret for API bearer tokens (32+ chars)"},
	{Name: "jwt_ttl", Default: "24h", Desc: "API bearer token lifetime"},

	{Name: "admin_email", Default: "", Desc: "Email of the admin account"},
	{Name: "admin_password", Default: "", Desc: "Creates the admin account on startup when it does not exist"},
	{Name: "admin_name", Default: "Administrator", Desc: "Full name used when creating the admin account"},

	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single-document store operations"},
	{Name: "timeout_medium", Default: "10s", Desc: "Timeout for list and aggregate store operations"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// Precedence: flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CARRENTAL", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:          appValues.String("mongo_uri"),
		MongoDatabase:     appValues.String("mongo_database"),
		MongoMaxPoolSize:  uint64(appValues.Int("mongo_max_pool_size")),
		MongoConnectTries: uint(appValues.Int("mongo_connect_tries")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 72*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 24*time.Hour),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),
		AdminName:     appValues.String("admin_name"),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 10*time.Second),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The Mongo URI is checked before any connection attempt. In production
// the development secrets are refused.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if len(appCfg.JWTSecret) < 32 {
		return fmt.Errorf("jwt_secret must be at least 32 characters")
	}
	if appCfg.JWTTTL <= 0 {
		return fmt.Errorf("jwt_ttl must be positive")
	}
	if len(appCfg.CSRFKey) < 32 {
		return fmt.Errorf("csrf_key must be at least 32 characters")
	}

	if coreCfg.Env == "prod" {
		if appCfg.SessionKey == devSessionKey || len(appCfg.SessionKey) < 32 {
			return fmt.Errorf("session_key must be set to a strong value in production")
		}
		if appCfg.JWTSecret == devJWTSecret {
			return fmt.Errorf("jwt_secret must be changed in production")
		}
		if appCfg.CSRFKey == devCSRFKey {
			return fmt.Errorf("csrf_key must be changed in production")
		}
	}

	if appCfg.AdminEmail == "" {
		logger.Warn("admin_email is not set; no user will see the admin dashboard")
	}
	return nil
}
