// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging, and CORS. Everything
// specific to the rental service lives here and is passed to every
// lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI          string
	MongoDatabase     string
	MongoMaxPoolSize  uint64
	MongoConnectTries uint // attempts before ConnectDB gives up

	// Session management configuration
	SessionKey    string        // secret for signing session cookies
	SessionName   string        // cookie name (default: carrental-session)
	SessionDomain string        // blank means current host
	SessionMaxAge time.Duration // cookie lifetime

	// CSRFKey signs the CSRF token cookie on the HTML pages (32+ chars).
	CSRFKey string

	// Bearer tokens for the JSON endpoints
	JWTSecret string
	JWTTTL    time.Duration

	// The admin is whoever signs in with AdminEmail. When AdminPassword
	// is set, Startup creates that account if it is missing.
	AdminEmail    string
	AdminPassword string
	AdminName     string

	// Store operation timeouts
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
}
