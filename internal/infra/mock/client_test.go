package mock

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClientRunningTotals(t *testing.T) {
	c := NewClient()
	ctx := context.Background()

	prevAttempts := 0
	for i := 0; i < 6; i++ {
		fb, err := c.AnalyzeFrame(ctx, []byte(fmt.Sprintf("frame-%d", i)), "prompt")
		require.NoError(t, err)
		require.NotNil(t, fb.Shot)
		assert.NotEmpty(t, fb.Text)
		assert.Equal(t, fb.Text, fb.Shot.Feedback)
		assert.Contains(t, []string{"made", "missed"}, fb.Shot.Result)

		attempts := fb.Shot.TotalMakes + fb.Shot.TotalMisses
		assert.Equal(t, prevAttempts+1, attempts, "every frame records exactly one shot")
		prevAttempts = attempts
	}
}

func TestMockClientDeterministic(t *testing.T) {
	ctx := context.Background()
	frame := []byte("same frame")

	a, err := NewClient().AnalyzeFrame(ctx, frame, "p")
	require.NoError(t, err)
	b, err := NewClient().AnalyzeFrame(ctx, frame, "p")
	require.NoError(t, err)

	assert.Equal(t, a.Text, b.Text)
	assert.Equal(t, a.Shot.Result, b.Shot.Result)
}

func TestMockClientHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient().AnalyzeFrame(ctx, []byte("frame"), "p")
	require.Error(t, err)
}
