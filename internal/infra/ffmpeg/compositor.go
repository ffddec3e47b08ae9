package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/entity"
	"go.uber.org/zap"
)

const (
	defaultVideoCodec = "libx264"
	defaultCRF        = 23
	defaultPreset     = "veryfast"

	// maxOverlayLineLen wraps feedback so drawtext lines stay readable on
	// 720p output.
	maxOverlayLineLen = 60
)

type Compositor struct {
	fontSize int
	logger   *zap.Logger
}

func NewCompositor(fontSize int, logger *zap.Logger) *Compositor {
	return &Compositor{fontSize: fontSize, logger: logger}
}

// Compose re-encodes videoPath into outputPath with one time-gated drawtext
// clause per non-empty feedback entry. Each clause is visible for window
// seconds starting at the frame's timestamp. Container metadata is stripped
// from the copy.
func (c *Compositor) Compose(ctx context.Context, videoPath string, outputPath string, analyses []entity.FrameAnalysis, window float64) error {
	clauses := c.buildDrawtextClauses(analyses, window)

	args := []string{"-i", videoPath}
	if len(clauses) > 0 {
		args = append(args, "-vf", strings.Join(clauses, ","))
	}
	args = append(args,
		"-map_metadata", "-1",
		"-c:v", defaultVideoCodec,
		"-crf", strconv.Itoa(defaultCRF),
		"-preset", defaultPreset,
		"-c:a", "copy",
		"-y",
		outputPath,
	)

	c.logger.Info("composing overlay",
		zap.Int("clauses", len(clauses)),
		zap.String("output", outputPath),
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg overlay encode: %w, output: %s", err, string(output))
	}
	return nil
}

func (c *Compositor) buildDrawtextClauses(analyses []entity.FrameAnalysis, window float64) []string {
	clauses := make([]string, 0, len(analyses))
	for _, a := range analyses {
		if a.Feedback == "" {
			continue
		}
		start, err := strconv.ParseFloat(a.Timestamp, 64)
		if err != nil {
			continue
		}
		text := EscapeDrawtext(WrapOverlayText(a.Feedback, maxOverlayLineLen))
		clauses = append(clauses, fmt.Sprintf(
			"drawtext=text='%s':fontcolor=white:fontsize=%d:box=1:boxcolor=black@0.6:boxborderw=8:x=(w-text_w)/2:y=h-text_h-40:enable='between(t,%.2f,%.2f)'",
			text, c.fontSize, start, start+window,
		))
	}
	return clauses
}

// EscapeDrawtext escapes the characters the drawtext filter grammar treats
// specially inside a quoted text value.
func EscapeDrawtext(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`,`, `\,`,
		`%`, `\%`,
	)
	return r.Replace(s)
}

// WrapOverlayText breaks text into lines of at most width characters on
// word boundaries. drawtext renders the newlines literally.
func WrapOverlayText(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	lineLen := 0
	for i, w := range words {
		if i > 0 {
			if lineLen+1+len(w) > width {
				b.WriteByte('\n')
				lineLen = 0
			} else {
				b.WriteByte(' ')
				lineLen++
			}
		}
		b.WriteString(w)
		lineLen += len(w)
	}
	return b.String()
}
