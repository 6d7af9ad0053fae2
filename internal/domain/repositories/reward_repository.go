package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
)

// RewardRepository defines reward account and streak data operations.
// The Update* methods run the mutate closure inside a transaction holding
// a row lock on the target row, so concurrent awards for the same user
// serialize instead of losing increments. A missing row is created with
// zero values before mutate runs.
type RewardRepository interface {
	// GetAccount retrieves a user's reward account, nil when absent
	GetAccount(ctx context.Context, userID uuid.UUID) (*entities.RewardAccount, error)

	// UpdateAccount applies mutate to the locked account row and persists it
	UpdateAccount(ctx context.Context, userID uuid.UUID, mutate func(*entities.RewardAccount) error) (*entities.RewardAccount, error)

	// ListStreaks retrieves all streaks for a user
	ListStreaks(ctx context.Context, userID uuid.UUID) ([]*entities.Streak, error)

	// UpdateStreak applies mutate to the locked (user, kind) streak row
	// and persists it
	UpdateStreak(ctx context.Context, userID uuid.UUID, kind entities.StreakKind, mutate func(*entities.Streak) error) (*entities.Streak, error)
}
