package entities

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// ActionItem is a normalized, source-agnostic task candidate extracted
// from an email or a meeting transcript. It has no identity of its own;
// identity comes from the source it was extracted from.
type ActionItem struct {
	Title                string       `json:"title" validate:"required"`
	Description          string       `json:"description,omitempty"`
	Priority             TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	DueDate              *time.Time   `json:"due_date,omitempty"`
	EstimatedTimeMinutes *int         `json:"estimated_time_minutes,omitempty"`
}

// HasTitle reports whether the item carries a non-blank title
func (a ActionItem) HasTitle() bool {
	return strings.TrimSpace(a.Title) != ""
}

// EffectivePriority returns the item priority, defaulting to medium
func (a ActionItem) EffectivePriority() TaskPriority {
	if a.Priority.IsValid() {
		return a.Priority
	}
	return TaskPriorityMedium
}

// ActionItemList is the jsonb payload of extracted action items stored
// on a processed meeting
type ActionItemList []ActionItem

// Scan implements sql.Scanner interface for GORM
func (l *ActionItemList) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Value implements driver.Valuer interface for GORM
func (l ActionItemList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal(ActionItemList{})
	}
	return json.Marshal(l)
}
