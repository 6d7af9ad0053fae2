package reward

import (
	"time"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	rewarduc "github.com/taskquest-dev/taskquest/internal/usecase/reward"
)

// AwardResponse represents a single XP award in responses
type AwardResponse struct {
	EventKey  string `json:"event_key"`
	XPAwarded int64  `json:"xp_awarded"`
	XPTotal   int64  `json:"xp_total"`
	Level     int    `json:"level"`
	LeveledUp bool   `json:"leveled_up"`
	NewLevel  *int   `json:"new_level,omitempty"`
}

// StreakResponse represents a streak in responses
type StreakResponse struct {
	Kind             string     `json:"kind"`
	CurrentLength    int        `json:"current_length"`
	LongestLength    int        `json:"longest_length"`
	Incremented      *bool      `json:"incremented,omitempty"`
	BonusTier        *int       `json:"bonus_tier,omitempty"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}

// AccountResponse represents a user's reward account with streaks
type AccountResponse struct {
	XPTotal            int64             `json:"xp_total"`
	Level              int               `json:"level"`
	NextLevelThreshold *int64            `json:"next_level_threshold,omitempty"`
	Streaks            []*StreakResponse `json:"streaks"`
}

// ToAwardResponse converts an award result to its response shape
func ToAwardResponse(r *rewarduc.AwardResult) *AwardResponse {
	if r == nil {
		return nil
	}
	return &AwardResponse{
		EventKey:  string(r.EventKey),
		XPAwarded: r.XPAwarded,
		XPTotal:   r.XPTotal,
		Level:     r.Level,
		LeveledUp: r.LeveledUp,
		NewLevel:  r.NewLevel,
	}
}

// ToStreakResponse converts a streak update result to its response shape
func ToStreakResponse(r *rewarduc.StreakResult) *StreakResponse {
	if r == nil {
		return nil
	}
	incremented := r.Incremented
	return &StreakResponse{
		Kind:          string(r.Kind),
		CurrentLength: r.CurrentLength,
		LongestLength: r.LongestLength,
		Incremented:   &incremented,
		BonusTier:     r.BonusTier,
	}
}

// ToStreakEntityResponse converts a stored streak row to its response shape
func ToStreakEntityResponse(s *entities.Streak) *StreakResponse {
	if s == nil {
		return nil
	}
	resp := &StreakResponse{
		Kind:          string(s.Kind),
		CurrentLength: s.CurrentLength,
		LongestLength: s.LongestLength,
	}
	if last := s.LastActivity(); !last.IsZero() {
		resp.LastActivityDate = &last
	}
	return resp
}
