package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
)

// TaskRepository handles task data operations
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create persists a single task
func (r *TaskRepository) Create(ctx context.Context, task *entities.Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}
	return r.db.WithContext(ctx).Create(task).Error
}

// CreateBatch persists tasks in one transaction; any failure rolls back
// the whole batch
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []*entities.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, task := range tasks {
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID retrieves a task by ID
func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Task, error) {
	var task entities.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// FindBySource retrieves all tasks a user already has for an originating
// email or meeting
func (r *TaskRepository) FindBySource(ctx context.Context, userID uuid.UUID, sourceType entities.TaskSource, sourceID uuid.UUID) ([]*entities.Task, error) {
	var tasks []*entities.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND source_type = ? AND source_id = ?", userID, sourceType, sourceID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// List retrieves a user's tasks with filters
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID, filters repositories.TaskFilters) ([]*entities.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Task{}).Where("user_id = ?", userID)

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Priority != nil {
		query = query.Where("priority = ?", *filters.Priority)
	}
	if filters.SourceType != nil {
		query = query.Where("source_type = ?", *filters.SourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filters.Limit
	if limit == 0 {
		limit = 50
	}

	var tasks []*entities.Task
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(filters.Offset).
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// MarkCompleted performs the one-way completion transition. The update is
// conditioned on ownership and status != completed so two concurrent
// completion requests cannot both win.
func (r *TaskRepository) MarkCompleted(ctx context.Context, taskID, userID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Task{}).
		Where("id = ? AND user_id = ? AND status <> ?", taskID, userID, entities.TaskStatusCompleted).
		Updates(map[string]interface{}{
			"status":       entities.TaskStatusCompleted,
			"completed_at": at,
			"completed_by": userID,
			"updated_at":   at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
