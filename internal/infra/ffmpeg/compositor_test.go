package ffmpeg

import (
	"strings"
	"testing"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEscapeDrawtext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain feedback", "plain feedback"},
		{"elbow in, follow through", `elbow in\, follow through`},
		{"ratio 50:50", `ratio 50\:50`},
		{"it's good", `it\'s good`},
		{`back\slash`, `back\\slash`},
		{"90% makes", `90\% makes`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeDrawtext(tt.in))
	}
}

func TestWrapOverlayText(t *testing.T) {
	t.Run("short text untouched", func(t *testing.T) {
		assert.Equal(t, "keep it up", WrapOverlayText("keep it up", 60))
	})

	t.Run("wraps on word boundaries", func(t *testing.T) {
		got := WrapOverlayText("one two three four five", 9)
		for _, line := range strings.Split(got, "\n") {
			assert.LessOrEqual(t, len(line), 9)
		}
		assert.Equal(t, "one two three four five", strings.ReplaceAll(got, "\n", " "))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", WrapOverlayText("   ", 10))
	})
}

func TestBuildDrawtextClauses(t *testing.T) {
	c := NewCompositor(24, zap.NewNop())

	analyses := []entity.FrameAnalysis{
		{Frame: "frame_0001.jpg", Timestamp: "0.00", Feedback: ""},
		{Frame: "frame_0002.jpg", Timestamp: "2.00", Feedback: "bend your knees"},
		{Frame: "frame_0003.jpg", Timestamp: "4.00", Feedback: "nice release"},
	}

	clauses := c.buildDrawtextClauses(analyses, 2.0)
	require.Len(t, clauses, 2, "empty feedback produces no clause")

	assert.Contains(t, clauses[0], "drawtext=text='bend your knees'")
	assert.Contains(t, clauses[0], "enable='between(t,2.00,4.00)'")
	assert.Contains(t, clauses[1], "enable='between(t,4.00,6.00)'")
	assert.Contains(t, clauses[0], "fontsize=24")
}

func TestBuildDrawtextClausesSkipsBadTimestamps(t *testing.T) {
	c := NewCompositor(24, zap.NewNop())
	clauses := c.buildDrawtextClauses([]entity.FrameAnalysis{
		{Frame: "frame_0001.jpg", Timestamp: "not-a-number", Feedback: "x"},
	}, 2.0)
	assert.Empty(t, clauses)
}
