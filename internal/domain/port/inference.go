package port

import (
	"context"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/entity"
)

type FrameFeedback struct {
	Text string
	Shot *entity.ShotRecord
}

// VisionClient produces coaching feedback for a single frame image.
type VisionClient interface {
	AnalyzeFrame(ctx context.Context, frame []byte, prompt string) (*FrameFeedback, error)
}
