package repositories

import (
	"context"

	"carrent/internal/models"
)

// RoleRepository gives read access to the role reference data.
type RoleRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
}
