// Package database opens the GORM connection, migrates the schema and seeds
// the reference data the API relies on.
package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"carrent/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// seedRoles are created with fixed IDs so that tokens issued before a
// reseed keep pointing at the same role.
var seedRoles = []models.Role{
	{ID: 1, Name: models.RoleCustomer},
	{ID: 2, Name: models.RoleAdmin},
}

// Open connects to the database behind dsn. MySQL DSNs need parseTime=true.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "", DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewLogger(os.Stdout)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}

// NewLogger logs slow queries and real failures. Lookups that match no row
// are expected (unknown email, free rental window) and stay quiet.
func NewLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Role{}, &models.User{}, &models.Car{}, &models.UserCar{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// Seed makes sure both roles exist. When adminEmail and adminPassword are
// set, an ADMIN user with that email is created unless it already exists.
func Seed(ctx context.Context, db *gorm.DB, adminEmail, adminPassword string) error {
	for _, role := range seedRoles {
		if err := db.WithContext(ctx).Where(models.Role{Name: role.Name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role.Name, err)
		}
	}

	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	email := strings.ToLower(adminEmail)
	var existing models.User
	err := db.WithContext(ctx).First(&existing, "email = ?", email).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up admin %s: %w", email, err)
	}

	var adminRole models.Role
	if err := db.WithContext(ctx).First(&adminRole, "name = ?", models.RoleAdmin).Error; err != nil {
		return fmt.Errorf("failed to load %s role: %w", models.RoleAdmin, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.User{
		Name:              "Admin",
		Email:             email,
		EncryptedPassword: string(hashedPassword),
		RoleID:            adminRole.ID,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin %s: %w", email, err)
	}
	log.Printf("Seeded admin user %s", email)
	return nil
}
