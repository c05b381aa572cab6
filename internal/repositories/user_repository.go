package repositories

import (
	"context"

	"carrent/internal/models"
)

// UserRepository defines the interface for user data access.
// Emails are compared lower-cased.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// FindByEmail loads the user together with its role.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
}
