package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tickerpulse/internal/adapters/config"
	"tickerpulse/internal/adapters/errors/noop"
	"tickerpulse/internal/adapters/errors/sentry"
	pgadapter "tickerpulse/internal/adapters/postgres"
	"tickerpulse/internal/aggregation"
	"tickerpulse/internal/api"
	"tickerpulse/internal/api/health"
	"tickerpulse/internal/ingest"
	"tickerpulse/internal/nlp"
	"tickerpulse/internal/pipeline"
	pgrepo "tickerpulse/internal/repository/postgres"
	"tickerpulse/internal/symbols"
	"tickerpulse/internal/workers"
	"tickerpulse/pkg/errors"
	"tickerpulse/pkg/logger"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Database
	pgClient, err := pgadapter.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pgClient.Close()

	if err := pgadapter.EnsureSchema(context.Background(), pgClient.DB()); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}
	log.Info("Database initialized")

	// Repositories
	postRepo := pgrepo.NewPostRepository(pgClient.DB())
	bucketRepo := pgrepo.NewBucketRepository(pgClient.DB())

	// NLP components
	registry := symbols.Default()
	detector := nlp.NewDetector(registry)
	scorer, err := nlp.NewScorer(cfg.Ingest.ScoreCacheSize)
	if err != nil {
		log.Fatalf("failed to create sentiment scorer: %v", err)
	}
	log.Infow("NLP initialized", "tracked_symbols", registry.Len())

	// Source adapters. Reddit fails loudly when unconfigured but must not
	// prevent the other sources from running; Threads degrades to zero-yield.
	var adapters []ingest.Adapter
	if reddit, err := ingest.NewRedditAdapter(cfg.Reddit); err != nil {
		log.Warnw("reddit adapter unavailable", "error", err)
	} else {
		adapters = append(adapters, reddit)
	}
	adapters = append(adapters, ingest.NewThreadsAdapter(cfg.Threads))

	// Pipeline and aggregation
	pipe := pipeline.New(detector, scorer, postRepo)
	engine := aggregation.NewEngine(postRepo, bucketRepo)
	cycle := pipeline.NewCycle(adapters, pipe, engine, cfg.Ingest.CircuitBreakerThreshold)

	// Workers
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewIngestWorker(cycle, cfg.Ingest.Interval, true))
	scheduler.RegisterWorker(workers.NewRetentionWorker(postRepo, cfg.Ingest.RetentionDays, cfg.Ingest.RetentionInterval, true))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("failed to start workers: %v", err)
	}

	// HTTP query surface
	apiHandler := api.NewHandler(postRepo, bucketRepo, registry)
	healthHandler := health.New(log, pgClient.DB(), cfg.App.Name, version)
	server := api.NewServer(api.ServerConfig{
		Port:        cfg.API.Port,
		ServiceName: cfg.App.Name,
		Version:     version,
	}, apiHandler, healthHandler, log)
	server.Start()

	log.Info("System initialized successfully")

	waitForShutdown(cancel, scheduler, server, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown blocks until SIGINT/SIGTERM, then stops components in order
func waitForShutdown(cancel context.CancelFunc, scheduler *workers.Scheduler, server *api.Server, tracker errors.Tracker, log *logger.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Infow("shutdown signal received", "signal", sig.String())

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnw("HTTP server shutdown failed", "error", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Warnw("worker shutdown incomplete", "error", err)
	}
	_ = tracker.Flush(shutdownCtx)

	log.Info("Shutdown complete")
}
