package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"carrent/internal/config"
	"carrent/internal/database"
	"carrent/internal/handlers"
	"carrent/internal/middleware"
	"carrent/internal/repositories"
	"carrent/internal/services"
	"carrent/pkg/cache"
	"carrent/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// App is the HTTP API together with the connections it owns.
type App struct {
	Fiber       *fiber.App
	DB          *gorm.DB
	AuthService *services.AuthService

	mqClient    *rabbitmq.Client
	redisClient *redis.Client
}

// NewApp connects to the database, migrates and seeds it, and wires
// repositories, services and handlers into a Fiber app. RabbitMQ and Redis
// are optional: when they are not configured or not reachable the API runs
// without rental events or the car cache.
func NewApp(cfg config.Config) (*App, error) {
	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if err := database.Seed(context.Background(), db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return nil, err
	}

	a := &App{DB: db}

	// --- Optional RabbitMQ client ---
	var publisher services.RentalEventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			log.Printf("Warning: %v. Rental events will not be published.", err)
		} else {
			a.mqClient = mqClient
			publisher = mqClient
		}
	}

	// --- Optional Redis cache ---
	var carCache services.CarCache
	if a.redisClient = cache.NewRedisClient(cache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}); a.redisClient != nil {
		carCache = cache.NewCarCache(a.redisClient, cfg.CacheTTL)
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	roleRepo := repositories.NewGORMRoleRepository(db)
	carRepo := repositories.NewGORMCarRepository(db)
	rentalRepo := repositories.NewGORMRentalRepository(db)

	// --- Services ---
	a.AuthService = services.NewAuthService(userRepo, roleRepo, cfg.JWTSecret, cfg.JWTTTL)
	carService := services.NewCarService(carRepo, carCache)
	rentalService := services.NewRentalService(rentalRepo, carRepo, publisher)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(a.AuthService)
	carHandler := handlers.NewCarHandler(carService, rentalService, a.AuthService)

	app := fiber.New(fiber.Config{
		AppName:      "carrent",
		ErrorHandler: middleware.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New())

	app.Get("/health", a.handleHealth)
	handlers.RegisterDocsRoutes(app)

	apiV1 := app.Group("/v1")
	authHandler.RegisterRoutes(apiV1)
	carHandler.RegisterRoutes(apiV1)

	a.Fiber = app
	return a, nil
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"rabbitmq": connectionState(a.mqClient != nil),
		"redis":    connectionState(a.redisClient != nil),
	})
}

func connectionState(connected bool) string {
	if connected {
		return "connected"
	}
	return "disabled"
}

// StartConsumers starts the rental event consumer when RabbitMQ is connected.
func (a *App) StartConsumers() error {
	if a.mqClient == nil {
		return nil
	}
	log.Println("Starting RabbitMQ consumer for rental events...")
	return a.mqClient.ConsumeRentalEvents(rabbitmq.LogRentalMessage)
}

// Shutdown stops the HTTP server and closes every connection.
func (a *App) Shutdown() error {
	var errs []error
	if err := a.Fiber.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
	}
	if a.mqClient != nil {
		if err := a.mqClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
