package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/domain/port"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/cache"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/config"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/email"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/ffmpeg"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/httpapi"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/metrics"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/mock"
	miniostorage "github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/minio"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/openai"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/postgres"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/rabbitmq"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/infra/tracing"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/internal/usecase"
	"github.com/HelloAndrewNgo/sports-analyzer-backend/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const defaultPrompt = "You are a basketball shooting coach. Describe what the player is doing in this frame and give one concrete piece of coaching feedback on their form."

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting sports-analyzer-backend")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, dir := range []string{cfg.UploadDir, cfg.ProcessedDir} {
		fatalOnErr(os.MkdirAll(dir, 0755), "create data dir")
	}

	// Tracing (non-fatal if collector unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database (optional: the service answers requests without it)
	var repo port.SessionRepository
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err == nil {
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err = pool.Ping(pingCtx)
		pingCancel()
	}
	if err != nil {
		log.Warn("postgres unavailable, session persistence disabled", zap.Error(err))
		if pool != nil {
			pool.Close()
		}
	} else {
		defer pool.Close()
		if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
			log.Warn("migration warning", zap.Error(err))
		}
		repo = postgres.NewSessionRepository(pool)
	}

	// Object storage archive (optional)
	var archive port.VideoArchive
	if cfg.ArchiveEnabled {
		a, err := miniostorage.NewArchive(miniostorage.ArchiveConfig{
			Endpoint:  cfg.ArchiveEndpoint,
			AccessKey: cfg.ArchiveAccess,
			SecretKey: cfg.ArchiveSecret,
			UseSSL:    cfg.ArchiveUseSSL,
			Bucket:    cfg.ArchiveBucket,
		})
		fatalOnErr(err, "create archive storage")
		fatalOnErr(a.EnsureBucket(ctx), "ensure archive bucket")
		archive = a
	}

	// Status events (optional)
	var publisher port.StatusPublisher
	if cfg.EventsEnabled {
		rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
		fatalOnErr(err, "connect to rabbitmq")
		defer rmqConn.Close()

		pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
		fatalOnErr(err, "create rabbitmq publisher")
		publisher = rabbitmq.NewStatusPublisher(pub)
	}

	// Inference clients
	frameTimeout := time.Duration(cfg.FrameTimeoutS) * time.Second
	mockClient := mock.NewClient()
	var visionClient port.VisionClient = mockClient
	if !cfg.DevMode {
		client, err := openai.NewClient(openai.ClientConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: frameTimeout,
		}, log)
		fatalOnErr(err, "create vision client")
		visionClient = client
	}

	respCache, err := cache.NewFileCache(cfg.CacheDir, log)
	fatalOnErr(err, "create response cache")

	sampler := ffmpeg.NewSampler(cfg.MaxFrames, log)
	compositor := ffmpeg.NewCompositor(cfg.OverlayFontSize, log)
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)

	uc := usecase.NewAnalyzeVideoUseCase(
		sampler, visionClient, mockClient, compositor, respCache,
		repo, archive, publisher, notifier,
		log,
		usecase.AnalyzeVideoConfig{
			TempDir:       cfg.UploadDir,
			ProcessedDir:  cfg.ProcessedDir,
			DefaultPrompt: defaultPrompt,
			FrameTimeout:  frameTimeout,
			DevMode:       cfg.DevMode,
		},
	)

	handler := httpapi.NewUploadHandler(uc, httpapi.UploadHandlerConfig{
		UploadDir:     cfg.UploadDir,
		MaxUploadMB:   cfg.MaxUploadMB,
		FrameRate:     cfg.FrameRate,
		RequestBudget: time.Duration(cfg.RequestBudgetS) * time.Second,
	}, log)

	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)
	apiSrv := httpapi.NewServer(cfg.Port, handler, cfg.ProcessedDir, log)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	go func() {
		log.Info("api server starting", zap.Int("port", cfg.Port))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("api server error", zap.Error(err))
			cancel()
		}
	}()

	log.Info("sports-analyzer-backend started")
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	apiSrv.Shutdown(shutdownCtx)
	metricsSrv.Shutdown(shutdownCtx)

	log.Info("sports-analyzer-backend stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
