package repositories

import (
	"context"
	"time"

	"carrent/internal/models"
)

// CarFilter narrows a car listing. Zero values mean "no filter".
type CarFilter struct {
	Size        string
	AvailableAt *time.Time
	Offset      int
	Limit       int
}

// CarRepository defines the interface for car data access.
type CarRepository interface {
	// List returns one page of cars matching the filter and the total
	// number of matching cars.
	List(ctx context.Context, filter CarFilter) ([]models.Car, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Car, error)
	Create(ctx context.Context, car *models.Car) error
	Update(ctx context.Context, car *models.Car) error
	// Delete removes the car. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id uint) error
}
