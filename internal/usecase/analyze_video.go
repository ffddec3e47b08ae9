package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/entity"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/port"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// FramePlaceholder replaces feedback for frames whose inference call failed
// or timed out. The pipeline never fails on a single frame.
const FramePlaceholder = "Analysis unavailable for this frame."

type AnalyzeVideoUseCase struct {
	sampler    port.FrameSampler
	vision     port.VisionClient
	mockVision port.VisionClient
	compositor port.OverlayCompositor
	cache      port.ResponseCache
	repo       port.SessionRepository
	archive    port.VideoArchive
	publisher  port.StatusPublisher
	notifier   port.FailureNotifier
	logger     *zap.Logger
	cfg        AnalyzeVideoConfig
}

type AnalyzeVideoConfig struct {
	TempDir       string
	ProcessedDir  string
	DefaultPrompt string
	FrameTimeout  time.Duration
	DevMode       bool
}

// Optional collaborators (repo, archive, publisher, notifier) may be nil;
// the pipeline treats their absence and their failures the same way, by
// logging and moving on.
func NewAnalyzeVideoUseCase(
	sampler port.FrameSampler,
	vision port.VisionClient,
	mockVision port.VisionClient,
	compositor port.OverlayCompositor,
	cache port.ResponseCache,
	repo port.SessionRepository,
	archive port.VideoArchive,
	publisher port.StatusPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg AnalyzeVideoConfig,
) *AnalyzeVideoUseCase {
	return &AnalyzeVideoUseCase{
		sampler:    sampler,
		vision:     vision,
		mockVision: mockVision,
		compositor: compositor,
		cache:      cache,
		repo:       repo,
		archive:    archive,
		publisher:  publisher,
		notifier:   notifier,
		logger:     logger,
		cfg:        cfg,
	}
}

type AnalyzeInput struct {
	Session   *entity.AnalysisSession
	VideoPath string
	Prompt    string
	FrameRate float64
	TestMode  bool
	Email     string
}

type AnalyzeResult struct {
	ProcessedKey string
	Analyses     []entity.FrameAnalysis
	Stats        *entity.SessionStats
	Duration     float64
}

func (uc *AnalyzeVideoUseCase) Execute(ctx context.Context, in AnalyzeInput) (*AnalyzeResult, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "AnalyzeVideoUseCase.Execute")
	defer span.End()

	session := in.Session
	span.SetAttributes(
		attribute.String("session.id", session.ID.String()),
		attribute.String("session.video", session.OriginalName),
	)

	log := uc.logger.With(zap.String("session_id", session.ID.String()))

	totalTimer := time.Now()
	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	session.MarkProcessing()
	uc.persist(ctx, session, log)

	result, err := uc.runPipeline(ctx, in, log)
	if err != nil {
		session.MarkFailed(err.Error())
		uc.persist(ctx, session, log)
		uc.publishStatus(ctx, session, log)
		metrics.SessionsProcessedTotal.WithLabelValues("failed").Inc()
		if in.Email != "" && uc.notifier != nil {
			_ = uc.notifier.NotifyFailure(ctx, in.Email, session.ID.String(), session.OriginalName, err.Error())
		}
		return nil, err
	}

	session.MarkCompleted(result.ProcessedKey, len(result.Analyses), result.Duration, result.Stats)
	uc.persist(ctx, session, log)
	uc.publishStatus(ctx, session, log)

	metrics.SessionsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.PipelineStageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	log.Info("session completed",
		zap.Int("frame_count", len(result.Analyses)),
		zap.Float64("duration_secs", result.Duration),
		zap.String("processed_key", result.ProcessedKey),
	)

	return result, nil
}

func (uc *AnalyzeVideoUseCase) runPipeline(ctx context.Context, in AnalyzeInput, log *zap.Logger) (*AnalyzeResult, error) {
	tracer := otel.Tracer("usecase")
	session := in.Session

	workDir := filepath.Join(uc.cfg.TempDir, session.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Sample frames
	sampleStart := time.Now()
	ctxSample, spanSample := tracer.Start(ctx, "sample_frames")
	framesDir := filepath.Join(workDir, "frames")
	if err := os.MkdirAll(framesDir, 0755); err != nil {
		spanSample.End()
		return nil, fmt.Errorf("create frames dir: %w", err)
	}
	sampled, err := uc.sampler.SampleFrames(ctxSample, in.VideoPath, framesDir, in.FrameRate)
	spanSample.End()
	if err != nil {
		log.Error("frame sampling failed", zap.Error(err))
		return nil, fmt.Errorf("sample_frames: %w", err)
	}
	metrics.PipelineStageDuration.WithLabelValues("sample").Observe(time.Since(sampleStart).Seconds())
	metrics.FramesSampledTotal.Add(float64(len(sampled.Frames)))

	// Per-frame inference
	inferStart := time.Now()
	ctxInfer, spanInfer := tracer.Start(ctx, "analyze_frames")
	analyses := uc.analyzeFrames(ctxInfer, sampled.Frames, in, log)
	spanInfer.End()
	metrics.PipelineStageDuration.WithLabelValues("inference").Observe(time.Since(inferStart).Seconds())

	// Aggregate
	stats := AggregateStats(analyses)

	// Overlay burn-in
	composeStart := time.Now()
	ctxCompose, spanCompose := tracer.Start(ctx, "compose_overlay")
	processedKey := session.ID.String() + ".mp4"
	outputPath := filepath.Join(uc.cfg.ProcessedDir, processedKey)
	window := 1.0 / in.FrameRate
	err = uc.compositor.Compose(ctxCompose, in.VideoPath, outputPath, analyses, window)
	spanCompose.End()
	if err != nil {
		log.Error("overlay composition failed", zap.Error(err))
		return nil, fmt.Errorf("compose_overlay: %w", err)
	}
	metrics.PipelineStageDuration.WithLabelValues("compose").Observe(time.Since(composeStart).Seconds())

	uc.archiveProcessed(ctx, processedKey, outputPath, log)

	return &AnalyzeResult{
		ProcessedKey: processedKey,
		Analyses:     analyses,
		Stats:        stats,
		Duration:     sampled.VideoDuration,
	}, nil
}

// analyzeFrames walks the sampled frames in order. The first frame always
// carries empty feedback and costs no call; any later frame that fails or
// times out gets the placeholder and the loop continues.
func (uc *AnalyzeVideoUseCase) analyzeFrames(ctx context.Context, frames []port.SampledFrame, in AnalyzeInput, log *zap.Logger) []entity.FrameAnalysis {
	client := uc.vision
	if in.TestMode || uc.cfg.DevMode {
		client = uc.mockVision
	}

	prompt := in.Prompt
	if prompt == "" {
		prompt = uc.cfg.DefaultPrompt
	}

	analyses := make([]entity.FrameAnalysis, 0, len(frames))
	for i, frame := range frames {
		fa := entity.FrameAnalysis{
			Frame:     filepath.Base(frame.Path),
			Timestamp: fmt.Sprintf("%.2f", frame.Timestamp),
		}

		if i == 0 {
			analyses = append(analyses, fa)
			continue
		}

		data, err := os.ReadFile(frame.Path)
		if err != nil {
			log.Warn("could not read frame, substituting placeholder",
				zap.String("frame", fa.Frame), zap.Error(err))
			fa.Feedback = FramePlaceholder
			metrics.FrameInferenceTotal.WithLabelValues("read_error").Inc()
			analyses = append(analyses, fa)
			continue
		}

		if cached, ok := uc.cache.Get(ctx, data, prompt); ok {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			fa.Feedback = cached
			if shot := decodeShotRecord(cached); shot != nil {
				fa.Shot = shot
				fa.Feedback = shot.Feedback
			}
			analyses = append(analyses, fa)
			continue
		}
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

		frameCtx, cancel := context.WithTimeout(ctx, uc.cfg.FrameTimeout)
		feedback, err := client.AnalyzeFrame(frameCtx, data, prompt)
		cancel()
		if err != nil {
			log.Warn("frame inference failed, substituting placeholder",
				zap.String("frame", fa.Frame), zap.Error(err))
			fa.Feedback = FramePlaceholder
			metrics.FrameInferenceTotal.WithLabelValues("error").Inc()
			analyses = append(analyses, fa)
			continue
		}
		metrics.FrameInferenceTotal.WithLabelValues("ok").Inc()

		fa.Feedback = feedback.Text
		fa.Shot = feedback.Shot

		if err := uc.cache.Put(ctx, data, prompt, encodeForCache(feedback)); err != nil {
			log.Warn("cache write failed", zap.Error(err))
		}

		analyses = append(analyses, fa)
	}

	return analyses
}

// Cached entries carry the structured shot record piggybacked as JSON so a
// mock-mode hit reproduces the full feedback, not just the text.
func encodeForCache(fb *port.FrameFeedback) string {
	if fb.Shot == nil {
		return fb.Text
	}
	data, err := json.Marshal(fb.Shot)
	if err != nil {
		return fb.Text
	}
	return string(data)
}

func decodeShotRecord(cached string) *entity.ShotRecord {
	if len(cached) == 0 || cached[0] != '{' {
		return nil
	}
	var shot entity.ShotRecord
	if err := json.Unmarshal([]byte(cached), &shot); err != nil {
		return nil
	}
	if shot.Result == "" {
		return nil
	}
	return &shot
}

func (uc *AnalyzeVideoUseCase) persist(ctx context.Context, session *entity.AnalysisSession, log *zap.Logger) {
	if uc.repo == nil {
		return
	}
	var err error
	switch session.Status {
	case entity.SessionStatusProcessing:
		if _, findErr := uc.repo.FindByID(ctx, session.ID); findErr != nil {
			err = uc.repo.Create(ctx, session)
		} else {
			err = uc.repo.Update(ctx, session)
		}
	default:
		err = uc.repo.Update(ctx, session)
	}
	if err != nil {
		log.Warn("session persistence failed", zap.Error(err))
	}
}

func (uc *AnalyzeVideoUseCase) publishStatus(ctx context.Context, session *entity.AnalysisSession, log *zap.Logger) {
	if uc.publisher == nil {
		return
	}
	event := entity.SessionStatusEvent{
		SessionID:    session.ID,
		Status:       session.Status,
		OriginalName: session.OriginalName,
		ProcessedKey: session.ProcessedKey,
		FrameCount:   session.FrameCount,
		Duration:     session.VideoDuration,
		ErrorMessage: session.ErrorMessage,
	}
	data, _ := json.Marshal(event)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Warn("failed to publish status event", zap.Error(err))
	}
}

func (uc *AnalyzeVideoUseCase) archiveProcessed(ctx context.Context, key, path string, log *zap.Logger) {
	if uc.archive == nil {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		log.Warn("archive open failed", zap.Error(err))
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		log.Warn("archive stat failed", zap.Error(err))
		return
	}
	if err := uc.archive.ArchiveProcessed(ctx, key, f, stat.Size()); err != nil {
		log.Warn("archive upload failed", zap.Error(err))
	}
}
