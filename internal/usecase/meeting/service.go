package meeting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/taskquest-dev/taskquest/errors"
	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
	"github.com/taskquest-dev/taskquest/internal/usecase/reward"
	"github.com/taskquest-dev/taskquest/internal/usecase/task"
)

// CaptureResult is what the transcription collaborator reports on stop
type CaptureResult struct {
	Transcript      string
	DurationSeconds int
}

// TranscriptCapture is the external transcription collaborator. The
// service only guards the status transitions around it.
type TranscriptCapture interface {
	Start(ctx context.Context, meeting *entities.Meeting) error
	Stop(ctx context.Context, meeting *entities.Meeting) (*CaptureResult, error)
}

// ExtractionResult is what the extraction collaborator produces from a
// transcript
type ExtractionResult struct {
	Summary string
	Items   []entities.ActionItem
}

// ActionExtractor is the external collaborator that turns a transcript
// into a summary and action items
type ActionExtractor interface {
	Extract(ctx context.Context, transcript string) (*ExtractionResult, error)
}

// ProcessResult is the outcome of processing a meeting transcript
type ProcessResult struct {
	Summary          string                  `json:"summary"`
	ActionItems      entities.ActionItemList `json:"action_items"`
	TasksCreated     int                     `json:"tasks_created"`
	AlreadyProcessed bool                    `json:"already_processed"`
	XP               *reward.AwardResult     `json:"xp,omitempty"`
}

// Service drives a meeting's transcript-processing lifecycle
type Service struct {
	meetingRepo  repositories.MeetingRepository
	materializer *task.Materializer
	ledger       *reward.Ledger
	capture      TranscriptCapture
	extractor    ActionExtractor
	logger       *zap.Logger
}

// NewService creates a new meeting service
func NewService(
	meetingRepo repositories.MeetingRepository,
	materializer *task.Materializer,
	ledger *reward.Ledger,
	capture TranscriptCapture,
	extractor ActionExtractor,
	logger *zap.Logger,
) *Service {
	return &Service{
		meetingRepo:  meetingRepo,
		materializer: materializer,
		ledger:       ledger,
		capture:      capture,
		extractor:    extractor,
		logger:       logger,
	}
}

// CreateMeeting creates a meeting in the idle state
func (s *Service) CreateMeeting(ctx context.Context, userID uuid.UUID, title string) (*entities.Meeting, error) {
	meeting := &entities.Meeting{
		ID:     uuid.New(),
		UserID: userID,
		Title:  title,
		Status: entities.MeetingStatusIdle,
	}
	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	return meeting, nil
}

// GetMeeting retrieves a meeting owned by the user
func (s *Service) GetMeeting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	if meeting == nil || meeting.UserID != userID {
		return nil, apperrors.ErrMeetingNotFound(meetingID.String())
	}
	return meeting, nil
}

// StartTranscription transitions the meeting to recording and tells the
// capture collaborator to begin
func (s *Service) StartTranscription(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.GetMeeting(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}

	if meeting.IsRecording() {
		return nil, apperrors.ErrTranscriptionInProgress(meetingID.String())
	}
	// A processed meeting is terminal; re-recording would overwrite the
	// transcript behind the stored processing result.
	if meeting.Processed {
		return nil, apperrors.ErrInvalidTransition(meetingID.String(), string(meeting.Status), string(entities.MeetingStatusRecording))
	}
	if !meeting.Status.CanTransitionTo(entities.MeetingStatusRecording) {
		return nil, apperrors.ErrInvalidTransition(meetingID.String(), string(meeting.Status), string(entities.MeetingStatusRecording))
	}

	now := time.Now()
	won, err := s.meetingRepo.MarkRecording(ctx, meetingID, meeting.Status, now)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	if !won {
		// Someone else changed the status first.
		return nil, apperrors.ErrTranscriptionInProgress(meetingID.String())
	}

	if err := s.capture.Start(ctx, meeting); err != nil {
		// Roll the transition back so the meeting stays startable.
		if _, revertErr := s.meetingRepo.UpdateStatusIf(ctx, meetingID, entities.MeetingStatusRecording, meeting.Status); revertErr != nil && s.logger != nil {
			s.logger.Error("failed to revert meeting after capture start failure",
				zap.String("meeting_id", meetingID.String()),
				zap.Error(revertErr),
			)
		}
		return nil, apperrors.ErrTranscriptionFailed(err)
	}

	meeting.Status = entities.MeetingStatusRecording
	meeting.RecordingStartedAt = &now
	return meeting, nil
}

// StopTranscription stops the capture collaborator and stores the
// transcript and duration it reports
func (s *Service) StopTranscription(ctx context.Context, meetingID, userID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.GetMeeting(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}

	if !meeting.IsRecording() {
		return nil, apperrors.ErrNoActiveTranscription(meetingID.String())
	}

	capture, err := s.capture.Stop(ctx, meeting)
	if err != nil {
		// Status stays recording so the stop can be retried.
		return nil, apperrors.ErrTranscriptionFailed(err)
	}

	won, err := s.meetingRepo.SetTranscript(ctx, meetingID, capture.Transcript, capture.DurationSeconds)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	if !won {
		return nil, apperrors.ErrNoActiveTranscription(meetingID.String())
	}

	meeting.Status = entities.MeetingStatusCompleted
	meeting.Transcript = &capture.Transcript
	meeting.DurationSeconds = &capture.DurationSeconds
	return meeting, nil
}

// Process extracts action items from the meeting transcript and
// materializes them into tasks. A processed meeting is terminal: the
// stored result is returned without re-running extraction. The
// completed -> processing transition is a conditional update, so two
// concurrent calls cannot both proceed; extraction failure reverts the
// meeting to completed with processed=false, keeping it retryable.
func (s *Service) Process(ctx context.Context, meetingID, userID uuid.UUID) (*ProcessResult, error) {
	meeting, err := s.GetMeeting(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}

	if meeting.Processed {
		summary := ""
		if meeting.Summary != nil {
			summary = *meeting.Summary
		}
		return &ProcessResult{
			Summary:          summary,
			ActionItems:      meeting.ActionItems,
			AlreadyProcessed: true,
		}, nil
	}

	if !meeting.HasTranscript() {
		return nil, apperrors.ErrNoTranscript(meetingID.String())
	}

	if meeting.Status == entities.MeetingStatusProcessing {
		return nil, apperrors.ErrProcessingInProgress(meetingID.String())
	}
	if meeting.Status != entities.MeetingStatusCompleted {
		return nil, apperrors.ErrInvalidTransition(meetingID.String(), string(meeting.Status), string(entities.MeetingStatusProcessing))
	}

	won, err := s.meetingRepo.UpdateStatusIf(ctx, meetingID, entities.MeetingStatusCompleted, entities.MeetingStatusProcessing)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}
	if !won {
		return nil, apperrors.ErrProcessingInProgress(meetingID.String())
	}

	extraction, err := s.extractor.Extract(ctx, *meeting.Transcript)
	if err != nil {
		s.revertProcessing(ctx, meetingID)
		return nil, apperrors.ErrExtractionFailed(err)
	}

	created, err := s.materializer.Materialize(ctx, task.MaterializeInput{
		UserID:     userID,
		SourceType: entities.TaskSourceMeeting,
		SourceID:   &meetingID,
		Items:      extraction.Items,
	})
	if err != nil {
		// The task batch rolled back; leave the meeting retryable.
		s.revertProcessing(ctx, meetingID)
		return nil, err
	}

	items := entities.ActionItemList(extraction.Items)
	if err := s.meetingRepo.SaveProcessingResult(ctx, meetingID, extraction.Summary, items); err != nil {
		// Tasks already exist but dedupe makes a retry safe.
		s.revertProcessing(ctx, meetingID)
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	result := &ProcessResult{
		Summary:      extraction.Summary,
		ActionItems:  items,
		TasksCreated: len(created),
	}

	// Processing reward is best-effort relative to the stored result.
	if xp, xpErr := s.ledger.AwardXP(ctx, userID, reward.EventMeetingProcessed); xpErr != nil {
		if s.logger != nil {
			s.logger.Error("processing reward failed",
				zap.String("meeting_id", meetingID.String()),
				zap.Error(xpErr),
			)
		}
	} else {
		result.XP = xp
	}

	if s.logger != nil {
		s.logger.Info("meeting processed",
			zap.String("meeting_id", meetingID.String()),
			zap.String("user_id", userID.String()),
			zap.Int("action_items", len(items)),
			zap.Int("tasks_created", result.TasksCreated),
		)
	}

	return result, nil
}

// revertProcessing returns a meeting from processing to completed so the
// operation stays retryable
func (s *Service) revertProcessing(ctx context.Context, meetingID uuid.UUID) {
	if _, err := s.meetingRepo.UpdateStatusIf(ctx, meetingID, entities.MeetingStatusProcessing, entities.MeetingStatusCompleted); err != nil && s.logger != nil {
		s.logger.Error("failed to revert meeting to completed",
			zap.String("meeting_id", meetingID.String()),
			zap.Error(err),
		)
	}
}
