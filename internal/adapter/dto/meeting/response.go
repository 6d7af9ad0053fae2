package meeting

import (
	"time"

	"github.com/taskquest-dev/taskquest/internal/adapter/dto/reward"
	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	meetinguc "github.com/taskquest-dev/taskquest/internal/usecase/meeting"
)

// MeetingResponse represents a meeting in responses
type MeetingResponse struct {
	ID                 string                  `json:"id"`
	Title              string                  `json:"title"`
	Status             string                  `json:"status"`
	Transcript         *string                 `json:"transcript,omitempty"`
	Summary            *string                 `json:"summary,omitempty"`
	ActionItems        entities.ActionItemList `json:"action_items,omitempty"`
	Processed          bool                    `json:"processed"`
	DurationSeconds    *int                    `json:"duration_seconds,omitempty"`
	AudioObjectKey     *string                 `json:"audio_object_key,omitempty"`
	RecordingStartedAt *time.Time              `json:"recording_started_at,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

// MeetingListResponse represents a paginated list of meetings
type MeetingListResponse struct {
	Meetings   []*MeetingResponse `json:"meetings"`
	TotalItems int64              `json:"total_items"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}

// ProcessResponse reports the outcome of processing a meeting transcript
type ProcessResponse struct {
	Summary          string                  `json:"summary"`
	ActionItems      entities.ActionItemList `json:"action_items"`
	TasksCreated     int                     `json:"tasks_created"`
	AlreadyProcessed bool                    `json:"already_processed"`
	XP               *reward.AwardResponse   `json:"xp,omitempty"`
}

// UploadAudioResponse reports where the uploaded meeting audio lives
type UploadAudioResponse struct {
	ObjectKey string `json:"object_key"`
	Size      int64  `json:"size"`
}

// ToMeetingResponse converts a meeting entity to its response shape
func ToMeetingResponse(m *entities.Meeting) *MeetingResponse {
	if m == nil {
		return nil
	}
	return &MeetingResponse{
		ID:                 m.ID.String(),
		Title:              m.Title,
		Status:             string(m.Status),
		Transcript:         m.Transcript,
		Summary:            m.Summary,
		ActionItems:        m.ActionItems,
		Processed:          m.Processed,
		DurationSeconds:    m.DurationSeconds,
		AudioObjectKey:     m.AudioObjectKey,
		RecordingStartedAt: m.RecordingStartedAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// ToMeetingResponses converts a slice of meeting entities
func ToMeetingResponses(meetings []*entities.Meeting) []*MeetingResponse {
	out := make([]*MeetingResponse, 0, len(meetings))
	for _, m := range meetings {
		out = append(out, ToMeetingResponse(m))
	}
	return out
}

// ToProcessResponse converts a process result to its response shape
func ToProcessResponse(result *meetinguc.ProcessResult) *ProcessResponse {
	return &ProcessResponse{
		Summary:          result.Summary,
		ActionItems:      result.ActionItems,
		TasksCreated:     result.TasksCreated,
		AlreadyProcessed: result.AlreadyProcessed,
		XP:               reward.ToAwardResponse(result.XP),
	}
}
