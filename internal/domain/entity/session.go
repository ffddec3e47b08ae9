package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "PENDING"
	SessionStatusProcessing SessionStatus = "PROCESSING"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusFailed     SessionStatus = "FAILED"
)

// AnalysisSession tracks one upload through the analyze pipeline.
type AnalysisSession struct {
	ID            uuid.UUID
	OriginalName  string
	VideoKey      string
	ProcessedKey  string
	Status        SessionStatus
	Prompt        string
	FrameRate     float64
	FrameCount    int
	FileSize      int64
	VideoDuration float64
	Stats         *SessionStats
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

func NewAnalysisSession(originalName string, fileSize int64, prompt string, frameRate float64) *AnalysisSession {
	now := time.Now().UTC()
	return &AnalysisSession{
		ID:           uuid.New(),
		OriginalName: originalName,
		FileSize:     fileSize,
		Prompt:       prompt,
		FrameRate:    frameRate,
		Status:       SessionStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *AnalysisSession) MarkProcessing() {
	s.Status = SessionStatusProcessing
	s.UpdatedAt = time.Now().UTC()
}

func (s *AnalysisSession) MarkCompleted(processedKey string, frameCount int, duration float64, stats *SessionStats) {
	now := time.Now().UTC()
	s.Status = SessionStatusCompleted
	s.ProcessedKey = processedKey
	s.FrameCount = frameCount
	s.VideoDuration = duration
	s.Stats = stats
	s.UpdatedAt = now
	s.CompletedAt = &now
}

func (s *AnalysisSession) MarkFailed(errMsg string) {
	s.Status = SessionStatusFailed
	s.ErrorMessage = errMsg
	s.UpdatedAt = time.Now().UTC()
}
