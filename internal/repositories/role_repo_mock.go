package repositories

import (
	"context"
	"fmt"
	"sync"

	"carrent/internal/models"
)

// MockRoleRepository is an in-memory implementation of RoleRepository.
type MockRoleRepository struct {
	roles  map[uint]models.Role
	nextID uint
	mu     sync.RWMutex
}

// NewMockRoleRepository creates a new instance of MockRoleRepository seeded
// with the given role names. IDs are assigned from 1 in order.
func NewMockRoleRepository(names ...string) *MockRoleRepository {
	r := &MockRoleRepository{
		roles:  make(map[uint]models.Role),
		nextID: 1,
	}
	for _, name := range names {
		r.Add(name)
	}
	return r
}

// Add stores a role and returns it with its assigned ID.
func (r *MockRoleRepository) Add(name string) models.Role {
	r.mu.Lock()
	defer r.mu.Unlock()

	role := models.Role{ID: r.nextID, Name: name}
	r.roles[role.ID] = role
	r.nextID++
	return role
}

// FindByID returns a role by its ID.
func (r *MockRoleRepository) FindByID(_ context.Context, id uint) (*models.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[id]
	if !ok {
		return nil, fmt.Errorf("role with ID %d: %w", id, ErrNotFound)
	}
	return &role, nil
}

// FindByName returns a role by its name.
func (r *MockRoleRepository) FindByName(_ context.Context, name string) (*models.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, role := range r.roles {
		if role.Name == name {
			return &role, nil
		}
	}
	return nil, fmt.Errorf("role %s: %w", name, ErrNotFound)
}
