package port

import (
	"context"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/entity"
)

// OverlayCompositor burns timed feedback text into a copy of the video.
type OverlayCompositor interface {
	Compose(ctx context.Context, videoPath string, outputPath string, analyses []entity.FrameAnalysis, window float64) error
}
