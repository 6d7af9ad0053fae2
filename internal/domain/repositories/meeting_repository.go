package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
)

// MeetingRepository defines meeting data operations
type MeetingRepository interface {
	// Create persists a new meeting
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID retrieves a meeting by id, nil when not found
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// List retrieves a user's meetings, newest first
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Meeting, int64, error)

	// UpdateStatusIf transitions status from an expected current value.
	// Returns false when the row was not in the expected status, which
	// signals a lost race to the caller.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to entities.MeetingStatus) (bool, error)

	// MarkRecording transitions to recording and stamps the start time,
	// conditioned on the observed status
	MarkRecording(ctx context.Context, id uuid.UUID, from entities.MeetingStatus, at time.Time) (bool, error)

	// SetTranscript stores the captured transcript and duration and
	// transitions recording -> completed
	SetTranscript(ctx context.Context, id uuid.UUID, transcript string, durationSeconds int) (bool, error)

	// SaveProcessingResult stores summary and extracted action items,
	// sets processed=true and returns status to completed
	SaveProcessingResult(ctx context.Context, id uuid.UUID, summary string, items entities.ActionItemList) error

	// SetAudioObjectKey records where the meeting audio lives in object storage
	SetAudioObjectKey(ctx context.Context, id uuid.UUID, objectKey string) error
}
