package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/taskquest-dev/taskquest/errors"
	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
	"github.com/taskquest-dev/taskquest/internal/usecase/reward"
)

// CompletionResult is the outcome of completing a task, including the
// reward fan-out. RewardErr is set when a reward call failed after the
// completion itself committed.
type CompletionResult struct {
	Task      *entities.Task       `json:"task"`
	XP        *reward.AwardResult  `json:"xp,omitempty"`
	Streak    *reward.StreakResult `json:"streak,omitempty"`
	BonusXP   *reward.AwardResult  `json:"bonus_xp,omitempty"`
	RewardErr error                `json:"-"`
}

// CompletionService transitions tasks to completed exactly once and fans
// out to the XP ledger and streak engine
type CompletionService struct {
	taskRepo repositories.TaskRepository
	ledger   *reward.Ledger
	streaks  *reward.Engine
	tables   *reward.Tables
	logger   *zap.Logger
}

// NewCompletionService creates a new task completion service
func NewCompletionService(
	taskRepo repositories.TaskRepository,
	ledger *reward.Ledger,
	streaks *reward.Engine,
	tables *reward.Tables,
	logger *zap.Logger,
) *CompletionService {
	return &CompletionService{
		taskRepo: taskRepo,
		ledger:   ledger,
		streaks:  streaks,
		tables:   tables,
		logger:   logger,
	}
}

// CompleteTask marks the task completed and awards XP and streak credit.
// Completion is a one-way transition enforced by a conditional store
// update, so a concurrent duplicate request observes the guard and is
// rejected. Reward failures are reported on the result but never roll
// back the completion.
func (s *CompletionService) CompleteTask(ctx context.Context, taskID, userID uuid.UUID) (*CompletionResult, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	if task == nil || task.UserID != userID {
		return nil, apperrors.ErrTaskNotFound(taskID.String())
	}
	if task.IsCompleted() {
		return nil, apperrors.ErrTaskAlreadyCompleted(taskID.String())
	}

	now := time.Now()
	won, err := s.taskRepo.MarkCompleted(ctx, taskID, userID, now)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	if !won {
		// Lost the race against a concurrent completion.
		return nil, apperrors.ErrTaskAlreadyCompleted(taskID.String())
	}
	task.Complete(userID, now)

	result := &CompletionResult{Task: task}

	eventKey := reward.EventTaskComplete
	if task.Priority.IsHigh() {
		eventKey = reward.EventTaskCompleteHighPriority
	}

	xp, xpErr := s.ledger.AwardXP(ctx, userID, eventKey)
	if xpErr != nil {
		result.RewardErr = xpErr
		if s.logger != nil {
			s.logger.Error("xp award failed after completion",
				zap.String("task_id", taskID.String()),
				zap.Error(xpErr),
			)
		}
	} else {
		result.XP = xp
	}

	streak, streakErr := s.streaks.UpdateStreak(ctx, userID, entities.StreakKindDailyTasks, now)
	if streakErr != nil {
		if result.RewardErr == nil {
			result.RewardErr = streakErr
		}
		if s.logger != nil {
			s.logger.Error("streak update failed after completion",
				zap.String("task_id", taskID.String()),
				zap.Error(streakErr),
			)
		}
	} else {
		result.Streak = streak

		// Crossing a bonus tier earns one-time bonus XP through the
		// same ledger path.
		if streak.BonusTier != nil {
			if bonusKey, ok := s.tables.StreakBonusEvent(*streak.BonusTier); ok {
				bonus, bonusErr := s.ledger.AwardXP(ctx, userID, bonusKey)
				if bonusErr != nil {
					if result.RewardErr == nil {
						result.RewardErr = bonusErr
					}
				} else {
					result.BonusXP = bonus
				}
			}
		}
	}

	if s.logger != nil {
		s.logger.Info("task completed",
			zap.String("task_id", taskID.String()),
			zap.String("user_id", userID.String()),
			zap.String("event_key", string(eventKey)),
			zap.Bool("reward_failed", result.RewardErr != nil),
		)
	}

	return result, nil
}
