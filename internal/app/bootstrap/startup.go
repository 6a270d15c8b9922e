// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/carrental/internal/app/store/users"
	"github.com/dalemusser/carrental/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
	})

	return ensureAdmin(ctx, deps, appCfg.AdminEmail, appCfg.AdminPassword, appCfg.AdminName, logger)
}

// ensureAdmin creates the admin account when admin_email and
// admin_password are both set and no user with that email exists.
// An existing account is left untouched; its email alone makes it the admin.
func ensureAdmin(ctx context.Context, deps DBDeps, email, password, name string, logger *zap.Logger) error {
	if email == "" {
		return nil
	}

	store := userstore.New(deps.MongoDatabase)
	_, err := store.GetByEmail(ctx, email)
	switch {
	case err == nil:
		logger.Info("admin account present", zap.String("email", userstore.NormalizeEmail(email)))
		return nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return err
	}

	if password == "" {
		logger.Warn("admin account does not exist and admin_password is not set",
			zap.String("email", email))
		return nil
	}

	u, err := store.Create(ctx, userstore.NewUser{
		FullName: name,
		Email:    email,
		Role:     userstore.RoleAdmin,
		Password: password,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		// Another instance created it first.
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("created admin account", zap.String("email", u.Email), zap.String("user_id", u.ID.Hex()))
	return nil
}
