package reward

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/taskquest-dev/taskquest/errors"
	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
)

// StreakResult is the outcome of a single streak update
type StreakResult struct {
	Kind          entities.StreakKind `json:"kind"`
	CurrentLength int                 `json:"current_length"`
	LongestLength int                 `json:"longest_length"`
	Incremented   bool                `json:"incremented"`
	BonusTier     *int                `json:"bonus_tier,omitempty"`
}

// Engine maintains per-user daily streaks. A streak counts consecutive
// calendar days, in the engine's configured time zone, on which at least
// one qualifying activity occurred.
type Engine struct {
	rewardRepo repositories.RewardRepository
	tables     *Tables
	loc        *time.Location
	logger     *zap.Logger
}

// NewEngine creates a new streak engine. A nil location defaults to UTC.
func NewEngine(rewardRepo repositories.RewardRepository, tables *Tables, loc *time.Location, logger *zap.Logger) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		rewardRepo: rewardRepo,
		tables:     tables,
		loc:        loc,
		logger:     logger,
	}
}

// dateOnly normalizes a timestamp to its calendar day, expressed as a
// UTC midnight so day arithmetic is exact
func (e *Engine) dateOnly(t time.Time) time.Time {
	y, m, d := t.In(e.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UpdateStreak records a qualifying activity at the given time.
//   - same calendar day as the last activity: no change (idempotent)
//   - exactly one day later: streak extends by one
//   - more than one day later: streak resets to one
//   - earlier than the last activity: stale event, no change
//
// The mutation runs under the repository's row lock, so concurrent calls
// for the same (user, kind) serialize.
func (e *Engine) UpdateStreak(ctx context.Context, userID uuid.UUID, kind entities.StreakKind, at time.Time) (*StreakResult, error) {
	day := e.dateOnly(at)

	result := StreakResult{Kind: kind}

	streak, err := e.rewardRepo.UpdateStreak(ctx, userID, kind, func(s *entities.Streak) error {
		prev := s.CurrentLength

		switch {
		case s.CurrentLength == 0 || s.LastActivity().IsZero():
			// First qualifying activity for this kind.
			s.CurrentLength = 1
			s.LastActivityDate = datatypes.Date(day)
			result.Incremented = true

		default:
			// The stored date is already a normalized calendar day;
			// re-localizing it would shift the day for zones behind UTC.
			ly, lm, ld := s.LastActivity().Date()
			last := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
			gap := int(day.Sub(last).Hours() / 24)

			switch {
			case gap == 0:
				// Repeat activity on the same day does not inflate the streak.
				result.Incremented = false
			case gap == 1:
				s.CurrentLength++
				s.LastActivityDate = datatypes.Date(day)
				result.Incremented = true
			case gap > 1:
				s.CurrentLength = 1
				s.LastActivityDate = datatypes.Date(day)
				result.Incremented = true
			default:
				// Out-of-order event; never regress the streak.
				result.Incremented = false
			}
		}

		if s.CurrentLength > s.LongestLength {
			s.LongestLength = s.CurrentLength
		}

		if result.Incremented {
			if tier, ok := e.tables.StreakTierCrossed(prev, s.CurrentLength); ok {
				result.BonusTier = &tier
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.ErrRewardAccountFailed(err)
	}

	result.CurrentLength = streak.CurrentLength
	result.LongestLength = streak.LongestLength

	if e.logger != nil {
		e.logger.Info("streak updated",
			zap.String("user_id", userID.String()),
			zap.String("kind", string(kind)),
			zap.Int("current_length", streak.CurrentLength),
			zap.Int("longest_length", streak.LongestLength),
			zap.Bool("incremented", result.Incremented),
		)
	}

	return &result, nil
}
