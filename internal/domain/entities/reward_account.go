package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// StreakKind identifies a daily streak category
type StreakKind string

const (
	StreakKindDailyTasks StreakKind = "daily_tasks"
)

// RewardAccount holds a user's cumulative XP and derived level.
// XPTotal and Level never decrease.
type RewardAccount struct {
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primary_key"`
	XPTotal   int64     `json:"xp_total" gorm:"not null;default:0"`
	Level     int       `json:"level" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (RewardAccount) TableName() string {
	return "reward_accounts"
}

// Streak counts consecutive calendar days with at least one qualifying
// activity of a kind. One row per (user, kind).
type Streak struct {
	UserID           uuid.UUID      `json:"user_id" gorm:"type:uuid;primary_key"`
	Kind             StreakKind     `json:"kind" gorm:"type:varchar(50);primary_key"`
	CurrentLength    int            `json:"current_length" gorm:"not null;default:0"`
	LongestLength    int            `json:"longest_length" gorm:"not null;default:0"`
	LastActivityDate datatypes.Date `json:"last_activity_date"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Streak) TableName() string {
	return "streaks"
}

// LastActivity returns the last activity date as a time.Time (midnight)
func (s *Streak) LastActivity() time.Time {
	return time.Time(s.LastActivityDate)
}
