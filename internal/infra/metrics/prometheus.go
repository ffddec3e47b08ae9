package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analyzer_sessions_processed_total",
		Help: "Total number of analysis sessions processed, by status",
	}, []string{"status"})

	PipelineStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analyzer_pipeline_stage_duration_seconds",
		Help:    "Duration of each video analysis pipeline stage",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"stage"})

	FramesSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analyzer_frames_sampled_total",
		Help: "Total number of frames sampled across all sessions",
	})

	FrameInferenceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analyzer_frame_inference_total",
		Help: "Per-frame inference outcomes",
	}, []string{"outcome"})

	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analyzer_cache_lookups_total",
		Help: "Inference cache lookups, by result",
	}, []string{"result"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "analyzer_active_sessions",
		Help: "Number of sessions currently in the pipeline",
	})
)
