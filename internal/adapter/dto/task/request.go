package task

import (
	"time"
)

// ActionItemRequest is a normalized action item submitted for ingestion
type ActionItemRequest struct {
	Title                string     `json:"title" validate:"required,min=1,max=500"`
	Description          string     `json:"description,omitempty"`
	Priority             string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	DueDate              *time.Time `json:"due_date,omitempty"`
	EstimatedTimeMinutes *int       `json:"estimated_time_minutes,omitempty" validate:"omitempty,min=1"`
}

// CreateTaskRequest represents the request to create a manual task
type CreateTaskRequest struct {
	Title                string     `json:"title" validate:"required,min=1,max=500"`
	Description          *string    `json:"description,omitempty"`
	Priority             string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	DueDate              *time.Time `json:"due_date,omitempty"`
	DueTime              *string    `json:"due_time,omitempty" validate:"omitempty,len=5"`
	EstimatedTimeMinutes *int       `json:"estimated_time_minutes,omitempty" validate:"omitempty,min=1"`
}

// IngestEmailRequest represents a batch of action items extracted from
// an email
type IngestEmailRequest struct {
	EmailID string              `json:"email_id" validate:"required,uuid"`
	Subject string              `json:"subject,omitempty" validate:"max=998"`
	Items   []ActionItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ListTasksRequest represents query parameters for listing tasks
type ListTasksRequest struct {
	Status   *string `query:"status" validate:"omitempty,oneof=todo in_progress completed"`
	Priority *string `query:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Source   *string `query:"source" validate:"omitempty,oneof=manual email meeting"`
	Page     int     `query:"page" validate:"min=0"`
	PageSize int     `query:"page_size" validate:"min=0,max=100"`
}
