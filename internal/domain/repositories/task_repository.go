package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
)

// TaskFilters holds optional filters for listing tasks
type TaskFilters struct {
	Status     *entities.TaskStatus
	Priority   *entities.TaskPriority
	SourceType *entities.TaskSource
	Limit      int
	Offset     int
}

// TaskRepository defines task data operations
type TaskRepository interface {
	// Create persists a single task
	Create(ctx context.Context, task *entities.Task) error

	// CreateBatch persists tasks in one transaction. If any insert fails
	// the whole batch is rolled back.
	CreateBatch(ctx context.Context, tasks []*entities.Task) error

	// FindByID retrieves a task by id, nil when not found
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error)

	// FindBySource retrieves all tasks a user already has for an
	// originating email or meeting
	FindBySource(ctx context.Context, userID uuid.UUID, sourceType entities.TaskSource, sourceID uuid.UUID) ([]*entities.Task, error)

	// List retrieves a user's tasks with filters
	List(ctx context.Context, userID uuid.UUID, filters TaskFilters) ([]*entities.Task, int64, error)

	// MarkCompleted performs the one-way completion transition. The
	// update is conditioned on status != completed; it returns false
	// when the guard failed (already completed or not owned).
	MarkCompleted(ctx context.Context, taskID, userID uuid.UUID, at time.Time) (bool, error)
}
