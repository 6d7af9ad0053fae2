package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
)

// MeetingRepository handles meeting data operations
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create persists a new meeting
func (r *MeetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	if meeting == nil {
		return errors.New("meeting cannot be nil")
	}
	return r.db.WithContext(ctx).Create(meeting).Error
}

// FindByID retrieves a meeting by ID
func (r *MeetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &meeting, nil
}

// List retrieves a user's meetings, newest first
func (r *MeetingRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Meeting, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.Meeting{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit == 0 {
		limit = 50
	}

	var meetings []*entities.Meeting
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&meetings).Error; err != nil {
		return nil, 0, err
	}
	return meetings, total, nil
}

// UpdateStatusIf transitions status from an expected current value.
// RowsAffected = 0 means the row was not in the expected status and the
// caller lost the race.
func (r *MeetingRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from, to entities.MeetingStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkRecording transitions to recording and stamps the start time
func (r *MeetingRepository) MarkRecording(ctx context.Context, id uuid.UUID, from entities.MeetingStatus, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":               entities.MeetingStatusRecording,
			"recording_started_at": at,
			"updated_at":           at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetTranscript stores the captured transcript and duration and moves the
// meeting from recording to completed
func (r *MeetingRepository) SetTranscript(ctx context.Context, id uuid.UUID, transcript string, durationSeconds int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND status = ?", id, entities.MeetingStatusRecording).
		Updates(map[string]interface{}{
			"status":           entities.MeetingStatusCompleted,
			"transcript":       transcript,
			"duration_seconds": durationSeconds,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SaveProcessingResult stores summary and extracted action items, marks the
// meeting processed and returns status to completed
func (r *MeetingRepository) SaveProcessingResult(ctx context.Context, id uuid.UUID, summary string, items entities.ActionItemList) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entities.MeetingStatusCompleted,
			"processed":    true,
			"summary":      summary,
			"action_items": items,
			"updated_at":   time.Now(),
		}).Error
}

// SetAudioObjectKey records where the meeting audio lives in object storage
func (r *MeetingRepository) SetAudioObjectKey(ctx context.Context, id uuid.UUID, objectKey string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"audio_object_key": objectKey,
			"updated_at":       time.Now(),
		}).Error
}
