package entity

import "github.com/google/uuid"

// SessionStatusEvent is published to the status exchange when a session
// reaches a terminal state.
type SessionStatusEvent struct {
	SessionID    uuid.UUID     `json:"session_id"`
	Status       SessionStatus `json:"status"`
	OriginalName string        `json:"original_name"`
	ProcessedKey string        `json:"processed_key,omitempty"`
	FrameCount   int           `json:"frame_count,omitempty"`
	Duration     float64       `json:"duration_seconds,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}
