// internal/app/features/dashboard/loader.go
package dashboard

import (
	"context"
	"errors"
	"time"

	userstore "github.com/dalemusser/carrental/internal/app/store/users"
	"github.com/dalemusser/carrental/internal/app/system/availability"
	"github.com/dalemusser/carrental/internal/app/system/timeouts"
	"github.com/dalemusser/carrental/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// OwnerStore loads a user with the cars they list.
type OwnerStore interface {
	GetWithCars(ctx context.Context, id primitive.ObjectID) (*userstore.UserWithCars, error)
}

// CarStore lists and removes car listings.
type CarStore interface {
	ListAll(ctx context.Context) ([]models.Car, error)
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
	DeleteAny(ctx context.Context, id primitive.ObjectID) error
}

// BusinessStore lists, loads, and reviews businesses.
type BusinessStore interface {
	ListAll(ctx context.Context) ([]models.Business, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Business, error)
	Decide(ctx context.Context, id primitive.ObjectID, status, reason string) error
}

// Loader fetches the data behind each dashboard. A failed fetch is
// logged and leaves its part of the result empty; it never fails the page.
type Loader struct {
	Owners     OwnerStore
	Cars       CarStore
	Businesses BusinessStore
	Log        *zap.Logger
	Now        func() time.Time
}

// OwnerData backs the car-owner dashboard.
type OwnerData struct {
	Cars []models.Car
}

// LoadOwner returns every car the owner lists, expired ones included.
func (l *Loader) LoadOwner(ctx context.Context, userID primitive.ObjectID) OwnerData {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), l.Log, "owner dashboard cars")
	defer cancel()

	out := OwnerData{Cars: []models.Car{}}
	u, err := l.Owners.GetWithCars(ctx, userID)
	if err != nil {
		l.Log.Error("owner dashboard: load cars failed",
			zap.String("user_id", userID.Hex()), zap.Error(err))
		return out
	}
	if u.Cars != nil {
		out.Cars = u.Cars
	}
	return out
}

// AdminData backs the admin dashboard.
type AdminData struct {
	Cars       []models.Car // only cars still available
	Businesses []models.Business
}

// LoadAdmin fetches cars and businesses concurrently. The two fetches are
// independent: one failing leaves the other's result intact.
func (l *Loader) LoadAdmin(ctx context.Context) AdminData {
	out := AdminData{Cars: []models.Car{}, Businesses: []models.Business{}}
	now := l.now()

	var g errgroup.Group
	g.Go(func() error {
		ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), l.Log, "admin dashboard cars")
		defer cancel()

		cars, err := l.Cars.ListAll(ctx)
		if err != nil {
			l.Log.Error("admin dashboard: list cars failed", zap.Error(err))
			return nil
		}
		out.Cars = availability.Filter(cars, now)
		return nil
	})
	g.Go(func() error {
		ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), l.Log, "admin dashboard businesses")
		defer cancel()

		list, err := l.Businesses.ListAll(ctx)
		if err != nil {
			l.Log.Error("admin dashboard: list businesses failed", zap.Error(err))
			return nil
		}
		out.Businesses = list
		return nil
	})
	_ = g.Wait()

	return out
}

// BusinessData backs the business dashboard. Business is nil when the
// user has not registered one (or it could not be loaded).
type BusinessData struct {
	Business      *models.Business
	Name          string
	DeclineReason string
}

// LoadBusiness returns the business registered by userID.
func (l *Loader) LoadBusiness(ctx context.Context, userID primitive.ObjectID) BusinessData {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), l.Log, "business dashboard")
	defer cancel()

	b, err := l.Businesses.GetByUserID(ctx, userID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		l.Log.Info("business dashboard: no business registered",
			zap.String("user_id", userID.Hex()))
		return BusinessData{}
	case err != nil:
		l.Log.Error("business dashboard: load business failed",
			zap.String("user_id", userID.Hex()), zap.Error(err))
		return BusinessData{}
	}
	return BusinessData{Business: b, Name: b.Name, DeclineReason: b.DeclineReason}
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
