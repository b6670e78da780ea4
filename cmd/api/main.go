package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/user/phishguard/internal/adapter/chromedp_renderer"
	"github.com/user/phishguard/internal/adapter/github"
	"github.com/user/phishguard/internal/adapter/memory"
	"github.com/user/phishguard/internal/adapter/postgres"
	redis_adapter "github.com/user/phishguard/internal/adapter/redis"
	"github.com/user/phishguard/internal/classifier"
	"github.com/user/phishguard/internal/delivery/http/handler"
	"github.com/user/phishguard/internal/delivery/http/middleware"
	"github.com/user/phishguard/internal/delivery/http/router"
	"github.com/user/phishguard/internal/extractor/behavioral"
	"github.com/user/phishguard/internal/extractor/lexical"
	"github.com/user/phishguard/internal/extractor/reputation"
	"github.com/user/phishguard/internal/repository"
	"github.com/user/phishguard/internal/usecase"
	"github.com/user/phishguard/pkg/config"
	"github.com/user/phishguard/pkg/logger"
	"go.uber.org/zap"
)

type stores struct {
	pending  repository.PendingQueue
	registry repository.RegistryRepository
	stats    repository.StatsRepository
	apiKeys  repository.APIKeyRepository
	close    func()
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic("could not build logger: " + err.Error())
	}
	defer log.Sync()
	log.Info("logger initialized", zap.String("level", cfg.LogLevel))

	ctx := context.Background()

	// --- Storage ---
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.Error(err))
	}
	defer st.close()

	// --- Classifier ---
	scorer, err := loadClassifier(cfg, log)
	if err != nil {
		log.Fatal("failed to load classifier", zap.Error(err))
	}

	// --- Extraction stages ---
	var behavioralStage usecase.StageExtractor
	if cfg.Stage3Enabled {
		renderer, err := chromedp_renderer.NewChromedpRenderer(cfg.RenderTimeout(), log)
		if err != nil {
			log.Warn("behavioral stage disabled, no browser available", zap.Error(err))
		} else {
			defer renderer.Close()
			behavioralStage = behavioral.New(renderer, cfg.RenderRetries, cfg.RenderWorkers, log)
		}
	}
	reputationAPI := reputation.NewAPIClient(cfg.ReputationAPIURL, 10*time.Second)
	orchestrator := usecase.NewStageOrchestrator(
		lexical.New(),
		reputation.New(reputationAPI, cfg.ReputationWorkers, log),
		behavioralStage,
		log,
	)

	// --- Use Cases ---
	var publisher repository.BlocklistPublisher
	if !cfg.PublishSkip && cfg.GithubToken != "" {
		publisher = github.NewPublisher(cfg.GithubToken, cfg.GithubRepo, cfg.GithubPath, cfg.GithubBranch, log)
	} else if !cfg.PublishSkip {
		log.Warn("GITHUB_TOKEN not set, block-list will not be published")
	}

	cycles := usecase.NewCycleUseCase(
		st.pending, st.registry, st.stats, publisher,
		orchestrator, usecase.NewFeatureAligner(log), scorer,
		usecase.CycleConfig{
			Threshold:   cfg.ClassifierThreshold,
			Timeout:     cfg.CycleTimeout(),
			PublishSkip: cfg.PublishSkip,
		},
		log,
	)
	submissions := usecase.NewSubmissionUseCase(
		st.pending, st.registry, st.stats, st.apiKeys, cfg.APIKeyTTL(), cfg.ModelVersion, log)

	// --- Scheduler ---
	scheduler, err := usecase.NewScheduler(usecase.CycleRunnerFunc(func(ctx context.Context) error {
		_, err := cycles.RunCycle(ctx)
		return err
	}), cfg.ScheduleTime, cfg.ScheduleTimezone, log)
	if err != nil {
		log.Fatal("invalid schedule", zap.Error(err))
	}
	schedCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	go scheduler.Start(schedCtx)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(submissions, cycles, cfg.APIKeyTTL(), log)
	httpRouter := router.New(apiHandler, submissions, middleware.NewRateLimiter(cfg.RateLimitPerMinute), log)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("could not start server", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	if cfg.UsesMemoryStorage() {
		log.Warn("using in-memory storage, state is lost on restart")
		return &stores{
			pending:  memory.NewPendingRepo(),
			registry: memory.NewRegistryRepo(),
			stats:    memory.NewStatsRepo(),
			apiKeys:  memory.NewAPIKeyRepo(cfg.APIKeyTTL()),
			close:    func() {},
		}, nil
	}

	dbpool, err := postgres.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
		dbpool.Close()
		return nil, err
	}
	log.Info("PostgreSQL connection pool established")

	rdb, err := redis_adapter.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		dbpool.Close()
		return nil, err
	}
	log.Info("Redis connection established")

	closeAll := func() {
		_ = rdb.Close()
		dbpool.Close()
	}
	return &stores{
		pending:  redis_adapter.NewPendingRepo(rdb),
		registry: postgres.NewRegistryRepo(dbpool),
		stats:    redis_adapter.NewStatsRepo(rdb),
		apiKeys:  redis_adapter.NewAPIKeyRepo(rdb),
		close:    closeAll,
	}, nil
}

func loadClassifier(cfg *config.Config, log *zap.Logger) (*classifier.Adapter, error) {
	if cfg.ClassifierURL != "" {
		manifest, err := classifier.LoadManifest(cfg.ManifestPath, nil)
		if err != nil {
			return nil, err
		}
		client := classifier.NewRemoteClient(cfg.ClassifierURL, cfg.ClassifierAPIKey, 60*time.Second)
		return classifier.NewAdapter(client, manifest, cfg.ModelVersion, log)
	}

	model, err := classifier.LoadLogisticModel(cfg.ModelPath)
	if err != nil {
		return nil, err
	}
	manifest, err := classifier.LoadManifest(cfg.ManifestPath, model.FeatureNames())
	if err != nil {
		return nil, err
	}
	return classifier.NewAdapter(model, manifest, cfg.ModelVersion, log)
}
