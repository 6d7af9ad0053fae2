package errors

// ErrorCode identifies the stable machine-readable error code returned to clients
type ErrorCode int32

const (
	ErrorCode_INTERNAL ErrorCode = iota
	ErrorCode_VALIDATION
	ErrorCode_NOT_FOUND
	ErrorCode_CONFLICT
	ErrorCode_UNAUTHENTICATED
	ErrorCode_AUTH_INVALID_TOKEN

	ErrorCode_TASK_NOT_FOUND
	ErrorCode_TASK_ALREADY_COMPLETED

	ErrorCode_MEETING_NOT_FOUND
	ErrorCode_TRANSCRIPTION_IN_PROGRESS
	ErrorCode_NO_ACTIVE_TRANSCRIPTION
	ErrorCode_NO_TRANSCRIPT
	ErrorCode_PROCESSING_IN_PROGRESS
	ErrorCode_INVALID_TRANSITION

	ErrorCode_UNKNOWN_REWARD_EVENT
	ErrorCode_REWARD_UPDATE_FAILED

	ErrorCode_COLLABORATOR_TRANSCRIPTION
	ErrorCode_COLLABORATOR_EXTRACTION
	ErrorCode_COLLABORATOR_STORAGE

	ErrorCode_DB_QUERY_FAILED
	ErrorCode_DB_TRANSACTION_FAILED

	ErrorCode_HTTP_OK
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_INTERNAL:                  "INTERNAL",
	ErrorCode_VALIDATION:                "VALIDATION",
	ErrorCode_NOT_FOUND:                 "NOT_FOUND",
	ErrorCode_CONFLICT:                  "CONFLICT",
	ErrorCode_UNAUTHENTICATED:           "UNAUTHENTICATED",
	ErrorCode_AUTH_INVALID_TOKEN:        "AUTH_INVALID_TOKEN",
	ErrorCode_TASK_NOT_FOUND:            "TASK_NOT_FOUND",
	ErrorCode_TASK_ALREADY_COMPLETED:    "TASK_ALREADY_COMPLETED",
	ErrorCode_MEETING_NOT_FOUND:         "MEETING_NOT_FOUND",
	ErrorCode_TRANSCRIPTION_IN_PROGRESS: "TRANSCRIPTION_IN_PROGRESS",
	ErrorCode_NO_ACTIVE_TRANSCRIPTION:   "NO_ACTIVE_TRANSCRIPTION",
	ErrorCode_NO_TRANSCRIPT:             "NO_TRANSCRIPT",
	ErrorCode_PROCESSING_IN_PROGRESS:    "PROCESSING_IN_PROGRESS",
	ErrorCode_INVALID_TRANSITION:        "INVALID_TRANSITION",
	ErrorCode_UNKNOWN_REWARD_EVENT:      "UNKNOWN_REWARD_EVENT",
	ErrorCode_REWARD_UPDATE_FAILED:      "REWARD_UPDATE_FAILED",
	ErrorCode_COLLABORATOR_TRANSCRIPTION: "COLLABORATOR_TRANSCRIPTION",
	ErrorCode_COLLABORATOR_EXTRACTION:    "COLLABORATOR_EXTRACTION",
	ErrorCode_COLLABORATOR_STORAGE:       "COLLABORATOR_STORAGE",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
	ErrorCode_DB_TRANSACTION_FAILED:      "DB_TRANSACTION_FAILED",
	ErrorCode_HTTP_OK:                    "OK",
}

// String returns the stable name for the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
