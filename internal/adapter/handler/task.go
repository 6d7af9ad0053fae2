package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/taskquest-dev/taskquest/errors"
	taskdto "github.com/taskquest-dev/taskquest/internal/adapter/dto/task"
	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
	"github.com/taskquest-dev/taskquest/internal/infrastructure/cache"
	taskuc "github.com/taskquest-dev/taskquest/internal/usecase/task"
)

// Task handles task-related HTTP requests
type Task struct {
	taskRepo     repositories.TaskRepository
	materializer *taskuc.Materializer
	completion   *taskuc.CompletionService
	cache        cache.Store
	logger       *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(
	taskRepo repositories.TaskRepository,
	materializer *taskuc.Materializer,
	completion *taskuc.CompletionService,
	cacheStore cache.Store,
	logger *zap.Logger,
) *Task {
	return &Task{
		taskRepo:     taskRepo,
		materializer: materializer,
		completion:   completion,
		cache:        cacheStore,
		logger:       logger,
	}
}

// CreateTask handles POST /v1/tasks
func (h *Task) CreateTask(c echo.Context) error {
	var req taskdto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err.Error()))
	}

	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	priority := entities.TaskPriority(req.Priority)
	if !priority.IsValid() {
		priority = entities.TaskPriorityMedium
	}

	task := &entities.Task{
		ID:                       uuid.New(),
		UserID:                   userID,
		Title:                    req.Title,
		Description:              req.Description,
		Priority:                 priority,
		Status:                   entities.TaskStatusTodo,
		SourceType:               entities.TaskSourceManual,
		DueDate:                  req.DueDate,
		DueTime:                  req.DueTime,
		EstimatedDurationMinutes: req.EstimatedTimeMinutes,
	}

	if err := h.taskRepo.Create(c.Request().Context(), task); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed(err))
	}

	return HandleCreated(h.logger, c, taskdto.ToTaskResponse(task))
}

// ListTasks handles GET /v1/tasks
func (h *Task) ListTasks(c echo.Context) error {
	var req taskdto.ListTasksRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("Invalid query parameters"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err.Error()))
	}

	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	filters := repositories.TaskFilters{
		Limit:  req.PageSize,
		Offset: (req.Page - 1) * req.PageSize,
	}
	if req.Status != nil {
		status := entities.TaskStatus(*req.Status)
		filters.Status = &status
	}
	if req.Priority != nil {
		priority := entities.TaskPriority(*req.Priority)
		filters.Priority = &priority
	}
	if req.Source != nil {
		source := entities.TaskSource(*req.Source)
		filters.SourceType = &source
	}

	tasks, total, err := h.taskRepo.List(c.Request().Context(), userID, filters)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed(err))
	}

	return HandleSuccess(h.logger, c, &taskdto.TaskListResponse{
		Tasks:      taskdto.ToTaskResponses(tasks),
		TotalItems: total,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
}

// GetTask handles GET /v1/tasks/:id
func (h *Task) GetTask(c echo.Context) error {
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	task, err := h.taskRepo.FindByID(c.Request().Context(), taskID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed(err))
	}
	if task == nil || task.UserID != userID {
		return HandleError(h.logger, c, apperrors.ErrTaskNotFound(taskID.String()))
	}

	return HandleSuccess(h.logger, c, taskdto.ToTaskResponse(task))
}

// CompleteTask handles POST /v1/tasks/:id/complete.
// A reward failure after the completion committed still returns 200;
// the response carries reward_error so the client can surface it.
func (h *Task) CompleteTask(c echo.Context) error {
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.completion.CompleteTask(c.Request().Context(), taskID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	invalidateRewardAccount(c.Request().Context(), h.cache, h.logger, userID)

	return HandleSuccess(h.logger, c, taskdto.ToCompleteTaskResponse(result))
}

// IngestEmail handles POST /v1/tasks/ingest/email
func (h *Task) IngestEmail(c echo.Context) error {
	var req taskdto.IngestEmailRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation(err.Error()))
	}

	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	emailID, err := uuid.Parse(req.EmailID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("Invalid email_id"))
	}

	created, err := h.materializer.Materialize(c.Request().Context(), taskuc.MaterializeInput{
		UserID:       userID,
		SourceType:   entities.TaskSourceEmail,
		SourceID:     &emailID,
		EmailSubject: req.Subject,
		Items:        taskdto.ToActionItems(req.Items),
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, &taskdto.IngestResponse{
		TasksCreated: len(created),
		Tasks:        taskdto.ToTaskResponses(created),
	})
}
