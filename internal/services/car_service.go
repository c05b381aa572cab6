package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrent/internal/apperror"
	"carrent/internal/models"
	"carrent/internal/repositories"
)

// Listing defaults.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// CarCache is an optional read-through cache for single cars.
type CarCache interface {
	Get(ctx context.Context, id uint) (*models.Car, bool)
	Set(ctx context.Context, car *models.Car)
	Invalidate(ctx context.Context, id uint)
}

// CarService handles business logic related to cars.
type CarService struct {
	repo  repositories.CarRepository
	cache CarCache
}

// NewCarService creates a new CarService. cache may be nil.
func NewCarService(repo repositories.CarRepository, cache CarCache) *CarService {
	return &CarService{
		repo:  repo,
		cache: cache,
	}
}

// ListCarsQuery holds the listing filters and the requested page.
type ListCarsQuery struct {
	Size        string
	AvailableAt *time.Time
	Page        int
	PageSize    int
}

type Pagination struct {
	Page      int   `json:"page"`
	PageCount int   `json:"pageCount"`
	PageSize  int   `json:"pageSize"`
	Count     int64 `json:"count"`
}

type CarListMeta struct {
	Pagination Pagination `json:"pagination"`
}

// CarList is the response body of a car listing.
type CarList struct {
	Cars []models.Car `json:"cars"`
	Meta CarListMeta  `json:"meta"`
}

// PageCount is ceil(count / pageSize).
func PageCount(count int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((count + size - 1) / size)
}

// ListCars returns one page of cars matching the query.
func (s *CarService) ListCars(ctx context.Context, q ListCarsQuery) (*CarList, error) {
	page := q.Page
	if page < 1 {
		page = DefaultPage
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	cars, count, err := s.repo.List(ctx, repositories.CarFilter{
		Size:        strings.ToUpper(q.Size),
		AvailableAt: q.AvailableAt,
		Offset:      (page - 1) * pageSize,
		Limit:       pageSize,
	})
	if err != nil {
		return nil, err
	}

	return &CarList{
		Cars: cars,
		Meta: CarListMeta{Pagination: Pagination{
			Page:      page,
			PageCount: PageCount(count, pageSize),
			PageSize:  pageSize,
			Count:     count,
		}},
	}, nil
}

// GetCar retrieves a single car by its ID.
func (s *CarService) GetCar(ctx context.Context, id uint) (*models.Car, error) {
	if s.cache != nil {
		if car, ok := s.cache.Get(ctx, id); ok {
			return car, nil
		}
	}

	car, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NewRecordNotFound("Car")
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, car)
	}
	return car, nil
}

// CreateCar stores a new car. New cars are never marked as rented.
func (s *CarService) CreateCar(ctx context.Context, car *models.Car) error {
	car.Size = strings.ToUpper(car.Size)
	car.IsCurrentlyRented = false
	if err := s.repo.Create(ctx, car); err != nil {
		return apperror.NewUnprocessable(err)
	}
	return nil
}

// CarUpdate holds the writable fields of a car.
type CarUpdate struct {
	Name              string
	Price             float64
	Size              string
	Image             string
	IsCurrentlyRented *bool
}

// UpdateCar overwrites the fields of an existing car. A missing car is
// reported as unprocessable, like any other failed write.
func (s *CarService) UpdateCar(ctx context.Context, id uint, upd CarUpdate) (*models.Car, error) {
	car, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NewUnprocessable(apperror.NewRecordNotFound("Car"))
		}
		return nil, fmt.Errorf("failed to load car %d: %w", id, err)
	}

	car.Name = upd.Name
	car.Price = upd.Price
	car.Size = strings.ToUpper(upd.Size)
	car.Image = upd.Image
	if upd.IsCurrentlyRented != nil {
		car.IsCurrentlyRented = *upd.IsCurrentlyRented
	}

	if err := s.repo.Update(ctx, car); err != nil {
		return nil, apperror.NewUnprocessable(err)
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return car, nil
}

// DeleteCar deletes a car by its ID. Unknown IDs are not an error.
func (s *CarService) DeleteCar(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return nil
}
