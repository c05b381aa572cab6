package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carrent/internal/models"

	"gorm.io/gorm"
)

// GORMRentalRepository is a GORM implementation of RentalRepository.
type GORMRentalRepository struct {
	db *gorm.DB
}

func NewGORMRentalRepository(db *gorm.DB) *GORMRentalRepository {
	return &GORMRentalRepository{db: db}
}

// FindContained looks for a reservation of the car that starts at or after
// start and ends at or before end.
func (r *GORMRentalRepository) FindContained(ctx context.Context, carID uint, start, end time.Time) (*models.UserCar, error) {
	var rental models.UserCar
	err := r.db.WithContext(ctx).
		Where("car_id = ? AND rent_started_at >= ? AND rent_ended_at <= ?", carID, start, end).
		First(&rental).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("rental of car %d: %w", carID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up rentals of car %d: %w", carID, err)
	}
	return &rental, nil
}

func (r *GORMRentalRepository) Create(ctx context.Context, rental *models.UserCar) error {
	if err := r.db.WithContext(ctx).Create(rental).Error; err != nil {
		return fmt.Errorf("failed to create rental: %w", err)
	}
	return nil
}
