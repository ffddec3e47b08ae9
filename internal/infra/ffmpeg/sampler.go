package ffmpeg

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/port"
	"go.uber.org/zap"
)

// jpegQuality of 2 is near-lossless and keeps frames small enough to send
// to the vision API inline.
const jpegQuality = 2

type Sampler struct {
	maxFrames int
	logger    *zap.Logger
}

func NewSampler(maxFrames int, logger *zap.Logger) *Sampler {
	return &Sampler{maxFrames: maxFrames, logger: logger}
}

func (s *Sampler) SampleFrames(ctx context.Context, videoPath string, outputDir string, frameRate float64) (*port.FrameSampleResult, error) {
	if frameRate <= 0 {
		return nil, fmt.Errorf("frame rate must be positive, got %f", frameRate)
	}

	duration, err := s.probeDuration(ctx, videoPath)
	if err != nil {
		s.logger.Warn("could not probe video duration", zap.Error(err))
	}

	planned := PlanFrameCount(duration, frameRate, s.maxFrames)

	framePattern := filepath.Join(outputDir, "frame_%04d.jpg")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%g", frameRate),
		"-q:v", strconv.Itoa(jpegQuality),
		"-frames:v", strconv.Itoa(s.maxFrames),
		"-y",
		framePattern,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	paths, err := filepath.Glob(filepath.Join(outputDir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("glob frames: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no frames extracted from video")
	}
	sort.Strings(paths)

	frames := make([]port.SampledFrame, 0, len(paths))
	for i, p := range paths {
		frames = append(frames, port.SampledFrame{
			Path:      p,
			Timestamp: float64(i) / frameRate,
		})
	}

	s.logger.Info("frames sampled",
		zap.Int("count", len(frames)),
		zap.Int("planned", planned),
		zap.Float64("frame_rate", frameRate),
		zap.Float64("video_duration", duration),
	)

	return &port.FrameSampleResult{
		Frames:        frames,
		VideoDuration: duration,
	}, nil
}

// PlanFrameCount is the number of frames extraction should yield for a
// video of the given duration at rate r, bounded by the cap.
func PlanFrameCount(duration, frameRate float64, maxFrames int) int {
	if duration <= 0 || frameRate <= 0 {
		return 0
	}
	n := int(math.Ceil(duration * frameRate))
	if n > maxFrames {
		return maxFrames
	}
	return n
}

func (s *Sampler) probeDuration(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	return duration, nil
}
