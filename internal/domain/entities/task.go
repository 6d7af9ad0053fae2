package entities

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// IsValid checks whether the priority is one of the known values
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// IsHigh reports whether the priority qualifies for the high-priority reward
func (p TaskPriority) IsHigh() bool {
	return p == TaskPriorityHigh || p == TaskPriorityUrgent
}

// TaskSource identifies where a task originated from
type TaskSource string

const (
	TaskSourceManual  TaskSource = "manual"
	TaskSourceEmail   TaskSource = "email"
	TaskSourceMeeting TaskSource = "meeting"
)

// Task represents a durable task owned by a user.
// The composite unique index on (user_id, source_type, source_id, title)
// prevents the same extracted action item from being materialized twice.
// Postgres treats NULL source_id rows as distinct, so manual tasks are
// not constrained by it.
type Task struct {
	ID                       uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID                   uuid.UUID    `json:"user_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_tasks_source_dedupe"`
	Title                    string       `json:"title" gorm:"type:varchar(500);not null;uniqueIndex:idx_tasks_source_dedupe"`
	Description              *string      `json:"description,omitempty" gorm:"type:text"`
	Priority                 TaskPriority `json:"priority" gorm:"type:varchar(20);not null;default:'medium'"`
	Status                   TaskStatus   `json:"status" gorm:"type:varchar(20);not null;default:'todo';index"`
	SourceType               TaskSource   `json:"source_type" gorm:"type:varchar(20);not null;default:'manual';uniqueIndex:idx_tasks_source_dedupe"`
	SourceID                 *uuid.UUID   `json:"source_id,omitempty" gorm:"type:uuid;index;uniqueIndex:idx_tasks_source_dedupe"`
	LocationID               *uuid.UUID   `json:"location_id,omitempty" gorm:"type:uuid"`
	DueDate                  *time.Time   `json:"due_date,omitempty"`
	DueTime                  *string      `json:"due_time,omitempty" gorm:"type:varchar(5)"`
	EstimatedDurationMinutes *int         `json:"estimated_duration_minutes,omitempty"`
	CompletedAt              *time.Time   `json:"completed_at,omitempty"`
	CompletedBy              *uuid.UUID   `json:"completed_by,omitempty" gorm:"type:uuid"`
	CreatedAt                time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt                time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Task) TableName() string {
	return "tasks"
}

// IsCompleted checks if the task has been completed
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// Complete marks the task as completed by the given user.
// Completion is a one-way transition; callers must enforce the
// not-already-completed guard atomically at the store level.
func (t *Task) Complete(by uuid.UUID, at time.Time) {
	t.Status = TaskStatusCompleted
	t.CompletedAt = &at
	t.CompletedBy = &by
	t.UpdatedAt = at
}
