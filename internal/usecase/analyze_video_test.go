package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/entity"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/port"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/cache"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSampler struct {
	frames []port.SampledFrame
	err    error
}

func (f *fakeSampler) SampleFrames(_ context.Context, _ string, _ string, _ float64) (*port.FrameSampleResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &port.FrameSampleResult{Frames: f.frames, VideoDuration: 10}, nil
}

type fakeVision struct {
	calls    atomic.Int64
	response string
	err      error
	block    bool
}

func (f *fakeVision) AnalyzeFrame(ctx context.Context, _ []byte, _ string) (*port.FrameFeedback, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &port.FrameFeedback{Text: f.response}, nil
}

type fakeCompositor struct {
	calls    int
	analyses []entity.FrameAnalysis
	err      error
}

func (f *fakeCompositor) Compose(_ context.Context, _ string, _ string, analyses []entity.FrameAnalysis, _ float64) error {
	f.calls++
	f.analyses = analyses
	return f.err
}

func writeTestFrames(t *testing.T, n int) []port.SampledFrame {
	t.Helper()
	dir := t.TempDir()
	frames := make([]port.SampledFrame, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.jpg", i+1))
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("frame-bytes-%d", i)), 0644))
		frames = append(frames, port.SampledFrame{Path: path, Timestamp: float64(i) * 2})
	}
	return frames
}

func newTestUseCase(t *testing.T, sampler port.FrameSampler, vision port.VisionClient, comp port.OverlayCompositor) *AnalyzeVideoUseCase {
	t.Helper()
	respCache, err := cache.NewFileCache(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	return NewAnalyzeVideoUseCase(
		sampler, vision, mock.NewClient(), comp, respCache,
		nil, nil, nil, nil,
		zap.NewNop(),
		AnalyzeVideoConfig{
			TempDir:       t.TempDir(),
			ProcessedDir:  t.TempDir(),
			DefaultPrompt: "coach me",
			FrameTimeout:  200 * time.Millisecond,
		},
	)
}

func testInput(frames float64) AnalyzeInput {
	session := entity.NewAnalysisSession("clip.mp4", 1024, "", frames)
	return AnalyzeInput{
		Session:   session,
		VideoPath: "/nonexistent/clip.mp4",
		FrameRate: frames,
	}
}

func TestExecuteFirstFrameEmptyFeedback(t *testing.T) {
	vision := &fakeVision{response: "bend your knees"}
	uc := newTestUseCase(t, &fakeSampler{frames: writeTestFrames(t, 3)}, vision, &fakeCompositor{})

	result, err := uc.Execute(context.Background(), testInput(0.5))
	require.NoError(t, err)
	require.Len(t, result.Analyses, 3)

	assert.Empty(t, result.Analyses[0].Feedback, "first frame always carries empty feedback")
	assert.Equal(t, "bend your knees", result.Analyses[1].Feedback)
	assert.Equal(t, "bend your knees", result.Analyses[2].Feedback)
	assert.EqualValues(t, 2, vision.calls.Load(), "first frame must not cost an inference call")
}

func TestExecuteFrameFailureSubstitutesPlaceholder(t *testing.T) {
	vision := &fakeVision{err: errors.New("api down")}
	uc := newTestUseCase(t, &fakeSampler{frames: writeTestFrames(t, 3)}, vision, &fakeCompositor{})

	in := testInput(0.5)
	result, err := uc.Execute(context.Background(), in)
	require.NoError(t, err, "frame-level failures never fail the pipeline")

	assert.Equal(t, FramePlaceholder, result.Analyses[1].Feedback)
	assert.Equal(t, FramePlaceholder, result.Analyses[2].Feedback)
	assert.Equal(t, entity.SessionStatusCompleted, in.Session.Status)
}

func TestExecuteFrameTimeoutSubstitutesPlaceholder(t *testing.T) {
	vision := &fakeVision{block: true}
	uc := newTestUseCase(t, &fakeSampler{frames: writeTestFrames(t, 2)}, vision, &fakeCompositor{})

	result, err := uc.Execute(context.Background(), testInput(0.5))
	require.NoError(t, err)

	assert.Equal(t, FramePlaceholder, result.Analyses[1].Feedback)
}

func TestExecuteCacheHitSkipsOutboundCall(t *testing.T) {
	frames := writeTestFrames(t, 3)
	vision := &fakeVision{response: "good arc"}

	respCache, err := cache.NewFileCache(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	uc := NewAnalyzeVideoUseCase(
		&fakeSampler{frames: frames}, vision, mock.NewClient(), &fakeCompositor{}, respCache,
		nil, nil, nil, nil,
		zap.NewNop(),
		AnalyzeVideoConfig{
			TempDir:       t.TempDir(),
			ProcessedDir:  t.TempDir(),
			DefaultPrompt: "coach me",
			FrameTimeout:  time.Second,
		},
	)

	_, err = uc.Execute(context.Background(), testInput(0.5))
	require.NoError(t, err)
	require.EqualValues(t, 2, vision.calls.Load())

	// Same frames, same prompt: everything comes from the cache.
	result, err := uc.Execute(context.Background(), testInput(0.5))
	require.NoError(t, err)
	assert.EqualValues(t, 2, vision.calls.Load(), "cache hits must not issue outbound calls")
	assert.Equal(t, "good arc", result.Analyses[1].Feedback)
}

func TestExecuteTestModeUsesMock(t *testing.T) {
	vision := &fakeVision{response: "live feedback"}
	uc := newTestUseCase(t, &fakeSampler{frames: writeTestFrames(t, 3)}, vision, &fakeCompositor{})

	in := testInput(0.5)
	in.TestMode = true
	result, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)

	assert.Zero(t, vision.calls.Load(), "test mode must not touch the live client")
	assert.NotNil(t, result.Analyses[1].Shot, "mock mode produces structured shot records")
	assert.NotNil(t, result.Stats)
}

func TestExecuteSamplerFailureFailsSession(t *testing.T) {
	uc := newTestUseCase(t, &fakeSampler{err: errors.New("no frames extracted from video")}, &fakeVision{}, &fakeCompositor{})

	in := testInput(0.5)
	_, err := uc.Execute(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sample_frames")
	assert.Equal(t, entity.SessionStatusFailed, in.Session.Status)
}

func TestExecuteCompositorFailureFailsSession(t *testing.T) {
	comp := &fakeCompositor{err: errors.New("encode blew up")}
	uc := newTestUseCase(t, &fakeSampler{frames: writeTestFrames(t, 2)}, &fakeVision{response: "ok"}, comp)

	in := testInput(0.5)
	_, err := uc.Execute(context.Background(), in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compose_overlay")
	assert.Equal(t, entity.SessionStatusFailed, in.Session.Status)
}
