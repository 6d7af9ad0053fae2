package handler

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/taskquest-dev/taskquest/errors"
	meetingdto "github.com/taskquest-dev/taskquest/internal/adapter/dto/meeting"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
	"github.com/taskquest-dev/taskquest/internal/infrastructure/storage"
	meetinguc "github.com/taskquest-dev/taskquest/internal/usecase/meeting"
)

// maxAudioSize caps meeting audio uploads at 200 MB
const maxAudioSize = 200 << 20

// Storage handles meeting audio upload and download endpoints
type Storage struct {
	minioClient    *storage.MinIOClient
	meetingRepo    repositories.MeetingRepository
	meetingService *meetinguc.Service
	logger         *zap.Logger
}

// NewStorageHandler creates a new storage handler
func NewStorageHandler(
	minioClient *storage.MinIOClient,
	meetingRepo repositories.MeetingRepository,
	meetingService *meetinguc.Service,
	logger *zap.Logger,
) *Storage {
	return &Storage{
		minioClient:    minioClient,
		meetingRepo:    meetingRepo,
		meetingService: meetingService,
		logger:         logger,
	}
}

// UploadAudio handles POST /v1/meetings/:id/audio. The uploaded object
// is what the transcription collaborator later transcribes.
func (h *Storage) UploadAudio(c echo.Context) error {
	meetingID, err := parseIDParam(c, "id")
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	// Ownership check before touching storage.
	if _, err := h.meetingService.GetMeeting(c.Request().Context(), meetingID, userID); err != nil {
		return HandleError(h.logger, c, err)
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrValidation("Missing audio file"))
	}
	if file.Size > maxAudioSize {
		return HandleError(h.logger, c, apperrors.ErrValidation("Audio file too large"))
	}

	src, err := file.Open()
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrStorageFailed("open upload", err))
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".webm"
	}
	objectKey := fmt.Sprintf("meetings/%s/audio%s", meetingID, ext)

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx := c.Request().Context()
	if err := h.minioClient.UploadFile(ctx, objectKey, src, file.Size, contentType); err != nil {
		return HandleError(h.logger, c, apperrors.ErrStorageFailed("upload audio", err))
	}

	if err := h.meetingRepo.SetAudioObjectKey(ctx, meetingID, objectKey); err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed(err))
	}

	if h.logger != nil {
		h.logger.Info("meeting audio uploaded",
			zap.String("meeting_id", meetingID.String()),
			zap.String("object_key", objectKey),
			zap.Int64("size", file.Size),
		)
	}

	return HandleCreated(h.logger, c, &meetingdto.UploadAudioResponse{
		ObjectKey: objectKey,
		Size:      file.Size,
	})
}

// AudioURL handles GET /v1/meetings/:id/audio-url
func (h *Storage) AudioURL(c echo.Context) error {
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
	if meeting.AudioObjectKey == nil || *meeting.AudioObjectKey == "" {
		return HandleError(h.logger, c, apperrors.ErrNotFound("Meeting audio"))
	}

	url, err := h.minioClient.GetFileURL(c.Request().Context(), *meeting.AudioObjectKey, 1*time.Hour)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrStorageFailed("presign audio", err))
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"url":        url,
		"expires_in": "1 hour",
	})
}
