// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	apifeature "github.com/dalemusser/carrental/internal/app/features/api"
	carsfeature "github.com/dalemusser/carrental/internal/app/features/cars"
	dashboardfeature "github.com/dalemusser/carrental/internal/app/features/dashboard"
	healthfeature "github.com/dalemusser/carrental/internal/app/features/health"
	loginfeature "github.com/dalemusser/carrental/internal/app/features/login"
	logoutfeature "github.com/dalemusser/carrental/internal/app/features/logout"
	profilefeature "github.com/dalemusser/carrental/internal/app/features/profile"
	// Registers the "shared" layout set the template engine requires.
	_ "github.com/dalemusser/carrental/internal/app/features/shared/views"
	userstore "github.com/dalemusser/carrental/internal/app/store/users"
	"github.com/dalemusser/carrental/internal/app/system/auth"
	"github.com/dalemusser/carrental/internal/app/system/authz"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// It boots the template engine, builds the session manager and bearer
// token service, and mounts the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Reload the user on every request so role and email changes apply at once.
	return buildRouter(coreCfg, appCfg, deps, userstore.NewFetcher(deps.MongoDatabase), logger)
}

func buildRouter(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, fetcher auth.UserFetcher, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetUserFetcher(fetcher)

	// HTML forms post with a CSRF token; the JSON endpoints use bearer tokens.
	csrfMW, err := auth.CSRF(appCfg.CSRFKey, secure, logger)
	if err != nil {
		logger.Error("csrf init failed", zap.Error(err))
		return nil, err
	}

	tokens, err := auth.NewTokenService(appCfg.JWTSecret, appCfg.JWTTTL)
	if err != nil {
		logger.Error("token service init failed", zap.Error(err))
		return nil, err
	}
	bearer := tokens.RequireBearer(fetcher, logger)

	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	policy := authz.Policy{AdminEmail: appCfg.AdminEmail}

	r := chi.NewRouter()

	// Health checks run without session lookups.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// JSON endpoints authenticate with bearer tokens, not cookies.
	apiHandler := apifeature.NewHandler(deps.MongoDatabase, policy, logger)
	r.Mount("/auth/user", apifeature.SessionRoutes(apiHandler, bearer))
	r.Mount("/root", apifeature.RootRoutes(apiHandler, bearer))

	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, tokens, logger)
	r.Post("/auth/login", loginHandler.HandleTokenLogin)

	r.Group(func(web chi.Router) {
		web.Use(csrfMW)
		web.Use(sessionMgr.LoadSessionUser)

		web.Get("/", func(w http.ResponseWriter, r *http.Request) {
			u, ok := auth.CurrentUser(r)
			switch {
			case !ok:
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			case policy.Resolve(u) == authz.RoleNone:
				http.Error(w, "this account has no dashboard", http.StatusForbidden)
			default:
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			}
		})

		web.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
		web.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, policy, logger)
		web.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

		profileHandler := profilefeature.NewHandler(deps.MongoDatabase, policy, logger)
		web.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

		carsHandler := carsfeature.NewHandler(deps.MongoDatabase, policy, logger)
		web.Mount("/cars", carsfeature.Routes(carsHandler, sessionMgr))
	})

	return r, nil
}
