package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carrent/internal/models"

	"gorm.io/gorm"
)

// GORMCarRepository is a GORM implementation of CarRepository.
type GORMCarRepository struct {
	db *gorm.DB
}

// NewGORMCarRepository creates a new instance of GORMCarRepository.
func NewGORMCarRepository(db *gorm.DB) *GORMCarRepository {
	return &GORMCarRepository{
		db: db,
	}
}

// filterScope applies the size and availability filters. Cars with a
// reservation covering AvailableAt are left out.
func (r *GORMCarRepository) filterScope(filter CarFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Size != "" {
			db = db.Where("UPPER(size) = ?", strings.ToUpper(filter.Size))
		}
		if filter.AvailableAt != nil {
			booked := r.db.Model(&models.UserCar{}).
				Select("1").
				Where("user_cars.car_id = cars.id AND user_cars.rent_started_at <= ? AND user_cars.rent_ended_at >= ?",
					*filter.AvailableAt, *filter.AvailableAt)
			db = db.Where("NOT EXISTS (?)", booked)
		}
		return db
	}
}

// List retrieves one page of cars and the total count of matching cars.
func (r *GORMCarRepository) List(ctx context.Context, filter CarFilter) ([]models.Car, int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Car{}).Scopes(r.filterScope(filter)).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count cars: %w", err)
	}

	cars := make([]models.Car, 0)
	q := r.db.WithContext(ctx).Model(&models.Car{}).Scopes(r.filterScope(filter)).Order("id")
	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := q.Find(&cars).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list cars: %w", err)
	}
	return cars, count, nil
}

// GetByID retrieves a single car by its ID from the database.
func (r *GORMCarRepository) GetByID(ctx context.Context, id uint) (*models.Car, error) {
	var car models.Car
	if err := r.db.WithContext(ctx).First(&car, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("car with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get car by ID %d: %w", id, err)
	}
	return &car, nil
}

// Create creates a new car in the database.
func (r *GORMCarRepository) Create(ctx context.Context, car *models.Car) error {
	if err := r.db.WithContext(ctx).Create(car).Error; err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}
	return nil
}

// Update overwrites the writable columns of an existing car, zero values
// included.
func (r *GORMCarRepository) Update(ctx context.Context, car *models.Car) error {
	res := r.db.WithContext(ctx).Model(car).
		Select("name", "price", "size", "image", "is_currently_rented", "updated_at").
		Updates(car)
	if res.Error != nil {
		return fmt.Errorf("failed to update car: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("car with ID %d: %w", car.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a car by its ID from the database.
func (r *GORMCarRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Car{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}
	return nil
}
