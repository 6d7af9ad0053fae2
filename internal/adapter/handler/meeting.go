package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/taskquest-dev/taskquest/errors"
	meetingdto "github.com/taskquest-dev/taskquest/internal/adapter/dto/meeting"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
	"github.com/taskquest-dev/taskquest/internal/infrastructure/cache"
	meetinguc "github.com/taskquest-dev/taskquest/internal/usecase/meeting"
)

// Meeting handles meeting-related HTTP requests
type Meeting struct {
	meetingRepo    repositories.MeetingRepository
	meetingService *meetinguc.Service
	cache          cache.Store
	logger         *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(
	meetingRepo repositories.MeetingRepository,
	meetingService *meetinguc.Service,
	cacheStore cache.Store,
	logger *zap.Logger,
) *Meeting {
	return &Meeting{
		meetingRepo:    meetingRepo,
		meetingService: meetingService,
		cache:          cacheStore,
		logger:         logger,
	}
}

// CreateMeeting handles POST /v1/meetings
func (h *Meeting) CreateMeeting(c echo.Context) error {
	var req meetingdto.CreateMeetingRequest
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

	meeting, err := h.meetingService.CreateMeeting(c.Request().Context(), userID, req.Title)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, meetingdto.ToMeetingResponse(meeting))
}

// ListMeetings handles GET /v1/meetings
func (h *Meeting) ListMeetings(c echo.Context) error {
	var req meetingdto.ListMeetingsRequest
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

	meetings, total, err := h.meetingRepo.List(c.Request().Context(), userID, req.PageSize, (req.Page-1)*req.PageSize)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed(err))
	}

	return HandleSuccess(h.logger, c, &meetingdto.MeetingListResponse{
		Meetings:   meetingdto.ToMeetingResponses(meetings),
		TotalItems: total,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
}

// GetMeeting handles GET /v1/meetings/:id
func (h *Meeting) GetMeeting(c echo.Context) error {
	meetingID, err := parseIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.meetingService.GetMeeting(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, meetingdto.ToMeetingResponse(meeting))
}

// StartTranscription handles POST /v1/meetings/:id/transcription/start
func (h *Meeting) StartTranscription(c echo.Context) error {
	meetingID, err := parseIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.meetingService.StartTranscription(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, meetingdto.ToMeetingResponse(meeting))
}

// StopTranscription handles POST /v1/meetings/:id/transcription/stop
func (h *Meeting) StopTranscription(c echo.Context) error {
	meetingID, err := parseIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.meetingService.StopTranscription(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, meetingdto.ToMeetingResponse(meeting))
}

// Process handles POST /v1/meetings/:id/process
func (h *Meeting) Process(c echo.Context) error {
	meetingID, err := parseIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.meetingService.Process(c.Request().Context(), meetingID, userID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if !result.AlreadyProcessed {
		invalidateRewardAccount(c.Request().Context(), h.cache, h.logger, userID)
	}

	return HandleSuccess(h.logger, c, meetingdto.ToProcessResponse(result))
}
