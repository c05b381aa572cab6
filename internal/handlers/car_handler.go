package handlers

import (
	"log"
	"strconv"
	"strings"

	"carrent/internal/apperror"
	"carrent/internal/middleware"
	"carrent/internal/models"
	"carrent/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CarHandler handles HTTP requests for cars and their rental.
type CarHandler struct {
	carService    *services.CarService
	rentalService *services.RentalService
	authService   *services.AuthService
	validate      *validator.Validate
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(carService *services.CarService, rentalService *services.RentalService, authService *services.AuthService) *CarHandler {
	return &CarHandler{
		carService:    carService,
		rentalService: rentalService,
		authService:   authService,
		validate:      newValidator(),
	}
}

// RegisterRoutes registers the car routes with the Fiber app. Reads are
// public, writes need an ADMIN token and renting needs any valid token.
func (h *CarHandler) RegisterRoutes(router fiber.Router) {
	adminOnly := middleware.Authorize(h.authService, models.RoleAdmin)
	authenticated := middleware.Authorize(h.authService, "")

	carRoutes := router.Group("/cars")
	carRoutes.Get("/", h.HandleListCars)
	carRoutes.Get("/:id", h.HandleGetCar)
	carRoutes.Post("/", adminOnly, h.HandleCreateCar)
	carRoutes.Put("/:id", adminOnly, h.HandleUpdateCar)
	carRoutes.Delete("/:id", adminOnly, h.HandleDeleteCar)
	carRoutes.Post("/:id/rent", authenticated, h.HandleRentCar)
}

// CarRequest is the body of car creation and update. Size is matched
// case-insensitively.
type CarRequest struct {
	Name              string `json:"name" validate:"required,min=1,max=255"`
	Price             Price  `json:"price" validate:"required,gt=0"`
	Size              string `json:"size" validate:"required,oneof=SMALL MEDIUM LARGE"`
	Image             string `json:"image" validate:"omitempty,max=1000"`
	IsCurrentlyRented *bool  `json:"isCurrentlyRented"`
}

// RentRequest is the body of a rental. RentEndedAt is optional.
type RentRequest struct {
	RentStartedAt string `json:"rentStartedAt" validate:"required"`
	RentEndedAt   string `json:"rentEndedAt"`
}

func (h *CarHandler) parseCarRequest(c *fiber.Ctx) (*CarRequest, error) {
	var req CarRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperror.NewValidation(map[string]string{"body": err.Error()})
	}
	req.Size = strings.ToUpper(req.Size)
	if err := validateStruct(h.validate, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// carID reads the :id parameter. ok is false for anything but a positive integer.
func carID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// HandleListCars lists cars filtered by size and availableAt, one page at a time.
func (h *CarHandler) HandleListCars(c *fiber.Ctx) error {
	query := services.ListCarsQuery{
		Size:     c.Query("size"),
		Page:     c.QueryInt("page"),
		PageSize: c.QueryInt("pageSize"),
	}
	if raw := c.Query("availableAt"); raw != "" {
		availableAt, err := parseDate(raw)
		if err != nil {
			return apperror.NewValidation(map[string]string{"availableAt": err.Error()})
		}
		query.AvailableAt = &availableAt
	}

	list, err := h.carService.ListCars(c.UserContext(), query)
	if err != nil {
		log.Printf("Error listing cars: %v", err)
		return err
	}
	return c.JSON(list)
}

// HandleGetCar retrieves a single car by its ID.
func (h *CarHandler) HandleGetCar(c *fiber.Ctx) error {
	id, ok := carID(c)
	if !ok {
		return apperror.NewRecordNotFound("Car")
	}

	car, err := h.carService.GetCar(c.UserContext(), id)
	if err != nil {
		log.Printf("Error getting car by ID %d: %v", id, err)
		return err
	}
	return c.JSON(car)
}

// HandleCreateCar creates a new car.
func (h *CarHandler) HandleCreateCar(c *fiber.Ctx) error {
	req, err := h.parseCarRequest(c)
	if err != nil {
		return err
	}

	car := &models.Car{
		Name:  req.Name,
		Price: float64(req.Price),
		Size:  req.Size,
		Image: req.Image,
	}
	if err := h.carService.CreateCar(c.UserContext(), car); err != nil {
		log.Printf("Error creating car: %v", err)
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(car)
}

// HandleUpdateCar overwrites an existing car.
func (h *CarHandler) HandleUpdateCar(c *fiber.Ctx) error {
	id, ok := carID(c)
	if !ok {
		return apperror.NewUnprocessable(apperror.NewRecordNotFound("Car"))
	}
	req, err := h.parseCarRequest(c)
	if err != nil {
		return err
	}

	car, err := h.carService.UpdateCar(c.UserContext(), id, services.CarUpdate{
		Name:              req.Name,
		Price:             float64(req.Price),
		Size:              req.Size,
		Image:             req.Image,
		IsCurrentlyRented: req.IsCurrentlyRented,
	})
	if err != nil {
		log.Printf("Error updating car %d: %v", id, err)
		return err
	}
	return c.JSON(car)
}

// HandleDeleteCar deletes a car. Unknown IDs still answer 204.
func (h *CarHandler) HandleDeleteCar(c *fiber.Ctx) error {
	if id, ok := carID(c); ok {
		if err := h.carService.DeleteCar(c.UserContext(), id); err != nil {
			log.Printf("Error deleting car %d: %v", id, err)
			return err
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRentCar books the car for the authenticated user.
func (h *CarHandler) HandleRentCar(c *fiber.Ctx) error {
	id, ok := carID(c)
	if !ok {
		return apperror.NewRecordNotFound("Car")
	}

	var req RentRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	input := services.RentInput{CarID: id, UserID: middleware.CurrentClaims(c).ID}
	start, err := parseDate(req.RentStartedAt)
	if err != nil {
		return apperror.NewValidation(map[string]string{"rentStartedAt": err.Error()})
	}
	input.RentStartedAt = start
	if req.RentEndedAt != "" {
		end, err := parseDate(req.RentEndedAt)
		if err != nil {
			return apperror.NewValidation(map[string]string{"rentEndedAt": err.Error()})
		}
		input.RentEndedAt = &end
	}

	rental, err := h.rentalService.RentCar(c.UserContext(), input)
	if err != nil {
		log.Printf("Error renting car %d: %v", id, err)
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rental)
}
