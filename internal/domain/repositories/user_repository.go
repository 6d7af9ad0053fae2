package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	// FindByID retrieves a user by id, nil when not found
	FindByID(ctx context.Context, id uuid.UUID) (*entities.User, error)

	// Create persists a new user
	Create(ctx context.Context, user *entities.User) error
}
