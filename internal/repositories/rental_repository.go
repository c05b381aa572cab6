package repositories

import (
	"context"
	"time"

	"carrent/internal/models"
)

// RentalRepository defines the interface for reservation data access.
type RentalRepository interface {
	// FindContained returns a reservation of carID that lies entirely inside
	// [start, end], or ErrNotFound.
	FindContained(ctx context.Context, carID uint, start, end time.Time) (*models.UserCar, error)
	Create(ctx context.Context, rental *models.UserCar) error
}
