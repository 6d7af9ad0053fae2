package reward

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/taskquest-dev/taskquest/errors"
	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
)

// AwardResult is the outcome of a single XP award
type AwardResult struct {
	EventKey  EventKey `json:"event_key"`
	XPAwarded int64    `json:"xp_awarded"`
	XPTotal   int64    `json:"xp_total"`
	Level     int      `json:"level"`
	LeveledUp bool     `json:"leveled_up"`
	NewLevel  *int     `json:"new_level,omitempty"`
}

// Ledger awards XP and detects level-ups. All arithmetic happens inside
// the repository's locked read-modify-write, so concurrent awards for the
// same user never lose an increment.
type Ledger struct {
	rewardRepo repositories.RewardRepository
	tables     *Tables
	logger     *zap.Logger
}

// NewLedger creates a new XP ledger
func NewLedger(rewardRepo repositories.RewardRepository, tables *Tables, logger *zap.Logger) *Ledger {
	return &Ledger{
		rewardRepo: rewardRepo,
		tables:     tables,
		logger:     logger,
	}
}

// AwardXP credits the XP configured for eventKey to the user's account
// and recomputes the level. Unknown event keys fail before any store
// mutation. XP and level never decrease.
func (l *Ledger) AwardXP(ctx context.Context, userID uuid.UUID, eventKey EventKey) (*AwardResult, error) {
	amount, ok := l.tables.XPFor(eventKey)
	if !ok {
		return nil, apperrors.ErrUnknownRewardEvent(string(eventKey))
	}

	// prevLevel is overwritten on every closure invocation, so a retried
	// mutate cannot leak state from a discarded attempt; everything else
	// derives from the committed row the repository returns.
	var prevLevel int
	account, err := l.rewardRepo.UpdateAccount(ctx, userID, func(a *entities.RewardAccount) error {
		prevLevel = a.Level
		a.XPTotal += amount

		newLevel := l.tables.LevelFor(a.XPTotal)
		if newLevel > a.Level {
			a.Level = newLevel
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.ErrRewardAccountFailed(err)
	}

	result := AwardResult{
		EventKey:  eventKey,
		XPAwarded: amount,
		XPTotal:   account.XPTotal,
		Level:     account.Level,
	}
	if account.Level > prevLevel {
		result.LeveledUp = true
		level := account.Level
		result.NewLevel = &level
	}

	if l.logger != nil {
		l.logger.Info("xp awarded",
			zap.String("user_id", userID.String()),
			zap.String("event_key", string(eventKey)),
			zap.Int64("xp_awarded", amount),
			zap.Int64("xp_total", account.XPTotal),
			zap.Int("level", account.Level),
			zap.Bool("leveled_up", result.LeveledUp),
		)
	}

	return &result, nil
}
