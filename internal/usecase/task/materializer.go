package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/taskquest-dev/taskquest/errors"
	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
)

// MaterializeInput carries a batch of extracted action items plus the
// source they were extracted from
type MaterializeInput struct {
	UserID     uuid.UUID
	SourceType entities.TaskSource
	SourceID   *uuid.UUID
	// EmailSubject seeds the default description for email-sourced items.
	// Supplied by the caller; the engine never fetches emails itself.
	EmailSubject string
	Items        []entities.ActionItem
}

// Materializer converts normalized action items into durable tasks,
// enforcing dedupe-by-source semantics
type Materializer struct {
	taskRepo repositories.TaskRepository
	logger   *zap.Logger
}

// NewMaterializer creates a new task materializer
func NewMaterializer(taskRepo repositories.TaskRepository, logger *zap.Logger) *Materializer {
	return &Materializer{
		taskRepo: taskRepo,
		logger:   logger,
	}
}

// Materialize validates the batch, drops items the user already has from
// the same source, and persists the remainder all-or-nothing. It returns
// the tasks created by this invocation.
func (m *Materializer) Materialize(ctx context.Context, input MaterializeInput) ([]*entities.Task, error) {
	// Validate the whole batch before touching the store.
	for i, item := range input.Items {
		if !item.HasTitle() {
			return nil, apperrors.ErrEmptyTitle(i)
		}
	}

	// Dedupe against tasks already materialized from this source. The
	// unique index on (user_id, source_type, source_id, title) backs this
	// up at the store level for concurrent invocations.
	existing := map[string]bool{}
	if input.SourceID != nil {
		prior, err := m.taskRepo.FindBySource(ctx, input.UserID, input.SourceType, *input.SourceID)
		if err != nil {
			return nil, apperrors.ErrDBQueryFailed(err)
		}
		for _, t := range prior {
			existing[t.Title] = true
		}
	}

	now := time.Now()
	tasks := make([]*entities.Task, 0, len(input.Items))
	for _, item := range input.Items {
		title := strings.TrimSpace(item.Title)
		if existing[title] {
			continue
		}
		existing[title] = true

		task := &entities.Task{
			ID:         uuid.New(),
			UserID:     input.UserID,
			Title:      title,
			Priority:   item.EffectivePriority(),
			Status:     entities.TaskStatusTodo,
			SourceType: input.SourceType,
			SourceID:   input.SourceID,
			DueDate:    item.DueDate,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		description := item.Description
		if description == "" && input.SourceType == entities.TaskSourceEmail && input.EmailSubject != "" {
			description = fmt.Sprintf("From email: %s", input.EmailSubject)
		}
		if description != "" {
			task.Description = &description
		}

		if item.EstimatedTimeMinutes != nil {
			minutes := *item.EstimatedTimeMinutes
			task.EstimatedDurationMinutes = &minutes
		}

		tasks = append(tasks, task)
	}

	if len(tasks) > 0 {
		if err := m.taskRepo.CreateBatch(ctx, tasks); err != nil {
			return nil, apperrors.ErrDBTransactionFailed(err)
		}
	}

	if m.logger != nil {
		m.logger.Info("action items materialized",
			zap.String("user_id", input.UserID.String()),
			zap.String("source_type", string(input.SourceType)),
			zap.Int("items_received", len(input.Items)),
			zap.Int("tasks_created", len(tasks)),
		)
	}

	return tasks, nil
}
