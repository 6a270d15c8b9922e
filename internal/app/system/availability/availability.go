// Package availability decides which listed cars can still be rented.
package availability

import (
	"time"

	"github.com/dalemusser/carrental/internal/domain/models"
)

// IsAvailable reports whether c is still listed at now. A car is listed
// through the whole AvailableUntil instant; a car with no end date was
// never given a valid window and is not listed.
func IsAvailable(c models.Car, now time.Time) bool {
	if c.AvailableUntil.IsZero() {
		return false
	}
	return !c.AvailableUntil.Before(now)
}

// Filter returns the cars available at now, in their original order.
// The input slice is not modified.
func Filter(cars []models.Car, now time.Time) []models.Car {
	out := make([]models.Car, 0, len(cars))
	for _, c := range cars {
		if IsAvailable(c, now) {
			out = append(out, c)
		}
	}
	return out
}
