package task

import (
	"time"

	"github.com/taskquest-dev/taskquest/internal/adapter/dto/reward"
	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	taskuc "github.com/taskquest-dev/taskquest/internal/usecase/task"
)

// TaskResponse represents a task in responses
type TaskResponse struct {
	ID                       string     `json:"id"`
	Title                    string     `json:"title"`
	Description              *string    `json:"description,omitempty"`
	Priority                 string     `json:"priority"`
	Status                   string     `json:"status"`
	SourceType               string     `json:"source_type"`
	SourceID                 *string    `json:"source_id,omitempty"`
	DueDate                  *time.Time `json:"due_date,omitempty"`
	DueTime                  *string    `json:"due_time,omitempty"`
	EstimatedDurationMinutes *int       `json:"estimated_duration_minutes,omitempty"`
	CompletedAt              *time.Time `json:"completed_at,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
	UpdatedAt                time.Time  `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []*TaskResponse `json:"tasks"`
	TotalItems int64           `json:"total_items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// IngestResponse reports the outcome of an ingestion batch
type IngestResponse struct {
	TasksCreated int             `json:"tasks_created"`
	Tasks        []*TaskResponse `json:"tasks"`
}

// CompleteTaskResponse represents the outcome of completing a task,
// including reward results. RewardError is set when the completion
// committed but a reward call failed.
type CompleteTaskResponse struct {
	Task        *TaskResponse          `json:"task"`
	XP          *reward.AwardResponse  `json:"xp,omitempty"`
	Streak      *reward.StreakResponse `json:"streak,omitempty"`
	BonusXP     *reward.AwardResponse  `json:"bonus_xp,omitempty"`
	RewardError *string                `json:"reward_error,omitempty"`
}

// ToTaskResponse converts a task entity to its response shape
func ToTaskResponse(t *entities.Task) *TaskResponse {
	if t == nil {
		return nil
	}

	resp := &TaskResponse{
		ID:                       t.ID.String(),
		Title:                    t.Title,
		Description:              t.Description,
		Priority:                 string(t.Priority),
		Status:                   string(t.Status),
		SourceType:               string(t.SourceType),
		DueDate:                  t.DueDate,
		DueTime:                  t.DueTime,
		EstimatedDurationMinutes: t.EstimatedDurationMinutes,
		CompletedAt:              t.CompletedAt,
		CreatedAt:                t.CreatedAt,
		UpdatedAt:                t.UpdatedAt,
	}
	if t.SourceID != nil {
		id := t.SourceID.String()
		resp.SourceID = &id
	}
	return resp
}

// ToTaskResponses converts a slice of task entities
func ToTaskResponses(tasks []*entities.Task) []*TaskResponse {
	out := make([]*TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToTaskResponse(t))
	}
	return out
}

// ToCompleteTaskResponse converts a completion result to its response shape
func ToCompleteTaskResponse(result *taskuc.CompletionResult) *CompleteTaskResponse {
	resp := &CompleteTaskResponse{
		Task:    ToTaskResponse(result.Task),
		XP:      reward.ToAwardResponse(result.XP),
		Streak:  reward.ToStreakResponse(result.Streak),
		BonusXP: reward.ToAwardResponse(result.BonusXP),
	}
	if result.RewardErr != nil {
		msg := result.RewardErr.Error()
		resp.RewardError = &msg
	}
	return resp
}

// ToActionItems converts request items to their domain shape
func ToActionItems(items []ActionItemRequest) []entities.ActionItem {
	out := make([]entities.ActionItem, 0, len(items))
	for _, item := range items {
		out = append(out, entities.ActionItem{
			Title:                item.Title,
			Description:          item.Description,
			Priority:             entities.TaskPriority(item.Priority),
			DueDate:              item.DueDate,
			EstimatedTimeMinutes: item.EstimatedTimeMinutes,
		})
	}
	return out
}
