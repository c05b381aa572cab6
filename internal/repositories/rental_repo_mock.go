package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"carrent/internal/models"
)

// MockRentalRepository is an in-memory implementation of RentalRepository.
type MockRentalRepository struct {
	rentals []models.UserCar
	nextID  uint
	mu      sync.RWMutex
}

// NewMockRentalRepository creates a new instance of MockRentalRepository.
func NewMockRentalRepository() *MockRentalRepository {
	return &MockRentalRepository{
		nextID: 1,
	}
}

// FindContained returns the first reservation of carID inside [start, end].
func (r *MockRentalRepository) FindContained(_ context.Context, carID uint, start, end time.Time) (*models.UserCar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rental := range r.rentals {
		if rental.CarID != carID {
			continue
		}
		if !rental.RentStartedAt.Before(start) && !rental.RentEndedAt.After(end) {
			found := rental
			return &found, nil
		}
	}
	return nil, fmt.Errorf("rental of car %d: %w", carID, ErrNotFound)
}

// Create adds a new reservation.
func (r *MockRentalRepository) Create(_ context.Context, rental *models.UserCar) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rental.ID == 0 {
		rental.ID = r.nextID
		r.nextID++
	}
	rental.CreatedAt = time.Now()
	rental.UpdatedAt = rental.CreatedAt
	r.rentals = append(r.rentals, *rental)
	return nil
}

// All returns a copy of every stored reservation.
func (r *MockRentalRepository) All() []models.UserCar {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.UserCar, len(r.rentals))
	copy(out, r.rentals)
	return out
}
