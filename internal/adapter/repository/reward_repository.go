package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
)

// RewardRepository handles reward account and streak data operations
type RewardRepository struct {
	db *gorm.DB
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// GetAccount retrieves a user's reward account
func (r *RewardRepository) GetAccount(ctx context.Context, userID uuid.UUID) (*entities.RewardAccount, error) {
	var account entities.RewardAccount
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// UpdateAccount runs mutate against the account row under a row lock.
// Concurrent awards for the same user serialize on the lock, so no
// increment is ever lost. The row is created on first use.
func (r *RewardRepository) UpdateAccount(ctx context.Context, userID uuid.UUID, mutate func(*entities.RewardAccount) error) (*entities.RewardAccount, error) {
	var account entities.RewardAccount
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			account = entities.RewardAccount{UserID: userID, XPTotal: 0, Level: 1}
			if err := tx.Create(&account).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := mutate(&account); err != nil {
			return err
		}
		return tx.Save(&account).Error
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListStreaks retrieves all streaks for a user
func (r *RewardRepository) ListStreaks(ctx context.Context, userID uuid.UUID) ([]*entities.Streak, error) {
	var streaks []*entities.Streak
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("kind ASC").
		Find(&streaks).Error; err != nil {
		return nil, err
	}
	return streaks, nil
}

// UpdateStreak runs mutate against the (user, kind) streak row under a
// row lock, creating it on first use
func (r *RewardRepository) UpdateStreak(ctx context.Context, userID uuid.UUID, kind entities.StreakKind, mutate func(*entities.Streak) error) (*entities.Streak, error) {
	var streak entities.Streak
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND kind = ?", userID, kind).
			First(&streak).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			streak = entities.Streak{UserID: userID, Kind: kind}
			if err := tx.Create(&streak).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if err := mutate(&streak); err != nil {
			return err
		}
		return tx.Save(&streak).Error
	})
	if err != nil {
		return nil, err
	}
	return &streak, nil
}
