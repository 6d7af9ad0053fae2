package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MeetingStatus represents the transcript-processing state of a meeting
type MeetingStatus string

const (
	MeetingStatusIdle       MeetingStatus = "idle"
	MeetingStatusRecording  MeetingStatus = "recording"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusProcessing MeetingStatus = "processing"
)

// meetingTransitions is the closed set of allowed status transitions.
// Anything not listed here is rejected.
var meetingTransitions = map[MeetingStatus][]MeetingStatus{
	MeetingStatusIdle:       {MeetingStatusRecording},
	MeetingStatusRecording:  {MeetingStatusCompleted},
	MeetingStatusCompleted:  {MeetingStatusRecording, MeetingStatusProcessing},
	MeetingStatusProcessing: {MeetingStatusCompleted},
}

// CanTransitionTo checks the transition table
func (s MeetingStatus) CanTransitionTo(next MeetingStatus) bool {
	for _, allowed := range meetingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Meeting represents a meeting whose transcript can be processed into tasks.
// The processed flag is tracked separately from status: a processing failure
// reverts status to completed with processed=false so the meeting stays
// retryable, while processed=true is terminal for this pipeline.
type Meeting struct {
	ID                 uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID             uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Title              string         `json:"title" gorm:"type:varchar(500);not null"`
	Status             MeetingStatus  `json:"status" gorm:"type:varchar(20);not null;default:'idle';index"`
	Transcript         *string        `json:"transcript,omitempty" gorm:"type:text"`
	Summary            *string        `json:"summary,omitempty" gorm:"type:text"`
	ActionItems        ActionItemList `json:"action_items,omitempty" gorm:"type:jsonb;serializer:json"`
	Processed          bool           `json:"processed" gorm:"not null;default:false"`
	DurationSeconds    *int           `json:"duration_seconds,omitempty"`
	AudioObjectKey     *string        `json:"audio_object_key,omitempty" gorm:"type:text"`
	RecordingStartedAt *time.Time     `json:"recording_started_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// HasTranscript reports whether a non-blank transcript is stored
func (m *Meeting) HasTranscript() bool {
	return m.Transcript != nil && strings.TrimSpace(*m.Transcript) != ""
}

// IsRecording checks if a transcription is currently active
func (m *Meeting) IsRecording() bool {
	return m.Status == MeetingStatusRecording
}
