package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"carrent/internal/apperror"
	"carrent/internal/models"
	"carrent/internal/repositories"
	"carrent/pkg/rabbitmq"
)

// RentalEventPublisher announces stored reservations.
type RentalEventPublisher interface {
	PublishCarRented(event rabbitmq.CarRentedEvent) error
}

// RentalService checks availability and records reservations.
type RentalService struct {
	rentalRepo repositories.RentalRepository
	carRepo    repositories.CarRepository
	publisher  RentalEventPublisher
}

// NewRentalService creates a new RentalService. publisher may be nil.
func NewRentalService(rentalRepo repositories.RentalRepository, carRepo repositories.CarRepository, publisher RentalEventPublisher) *RentalService {
	return &RentalService{
		rentalRepo: rentalRepo,
		carRepo:    carRepo,
		publisher:  publisher,
	}
}

// RentInput describes a rental request. RentEndedAt defaults to one
// calendar day after RentStartedAt.
type RentInput struct {
	CarID         uint
	UserID        uint
	RentStartedAt time.Time
	RentEndedAt   *time.Time
}

// RentCar books the car for the requested window unless a reservation of the
// same car lies entirely inside that window.
//
// The lookup and the insert are not atomic: two concurrent requests for the
// same window can both pass the check.
func (s *RentalService) RentCar(ctx context.Context, in RentInput) (*models.UserCar, error) {
	start := in.RentStartedAt
	end := start.AddDate(0, 0, 1)
	if in.RentEndedAt != nil {
		end = *in.RentEndedAt
	}
	if end.Before(start) {
		return nil, apperror.NewValidation(map[string]string{
			"rentEndedAt": "rentEndedAt must not be before rentStartedAt",
		})
	}

	car, err := s.carRepo.GetByID(ctx, in.CarID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperror.NewRecordNotFound("Car")
		}
		return nil, fmt.Errorf("failed to load car %d: %w", in.CarID, err)
	}

	existing, err := s.rentalRepo.FindContained(ctx, car.ID, start, end)
	switch {
	case err == nil:
		log.Printf("Car %d already rented from %s to %s", car.ID,
			existing.RentStartedAt.Format(time.RFC3339), existing.RentEndedAt.Format(time.RFC3339))
		return nil, apperror.NewCarAlreadyRented(car.Name, car)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("failed to check rentals of car %d: %w", car.ID, err)
	}

	rental := &models.UserCar{
		UserID:        in.UserID,
		CarID:         car.ID,
		RentStartedAt: start,
		RentEndedAt:   end,
	}
	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		return nil, fmt.Errorf("failed to create rental: %w", err)
	}

	s.publishRented(rental, car)
	return rental, nil
}

func (s *RentalService) publishRented(rental *models.UserCar, car *models.Car) {
	if s.publisher == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}
	err := s.publisher.PublishCarRented(rabbitmq.CarRentedEvent{
		RentalID:      rental.ID,
		UserID:        rental.UserID,
		CarID:         car.ID,
		CarName:       car.Name,
		RentStartedAt: rental.RentStartedAt,
		RentEndedAt:   rental.RentEndedAt,
		RentedAt:      time.Now().UTC(),
	})
	if err != nil {
		log.Printf("Warning: Failed to publish car rented event for rental %d: %v", rental.ID, err)
	}
}
