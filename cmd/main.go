package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"videoab/internal/adapter/http"
	"videoab/internal/adapter/memory"
	"videoab/internal/adapter/postgres"
	"videoab/internal/adapter/redis"
	"videoab/internal/adapter/s3"
	"videoab/internal/adapter/textgen"
	"videoab/internal/adapter/usecase"
	"videoab/internal/config"
	"videoab/internal/core/domain"
	"videoab/internal/core/port"
	"videoab/internal/db"
	"videoab/internal/metrics"
)

// main is the entry point of the experiment service. It loads
// configuration, wires the store and the optional cache, storage and text
// generator adapters, starts the status sweeper and the HTTP server. On
// receiving a termination signal it gracefully shuts down the server.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return
	}
	logger := cfg.Log.NewLogger(os.Stdout).With(slog.String("env", cfg.Env))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		experiments port.ExperimentRepository
		events      port.EventRepository
	)
	switch cfg.Store.Driver {
	case "postgres":
		if cfg.Psql.RunMigrations {
			if err = db.Migrate(cfg.Psql.Addr.String(), logger); err != nil {
				logger.Error("migration error", slog.Any("error", err))
				return
			}
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			logger.Error("database connection error", slog.Any("error", err))
			return
		}
		defer pool.Close()
		if cfg.Psql.Seed {
			if err = db.Seed(ctx, pool); err != nil {
				logger.Error("seed error", slog.Any("error", err))
				return
			}
			logger.Info("demo data seeded")
		}
		experiments = postgres.NewExperimentRepository(pool)
		events = postgres.NewEventRepository(pool)
	default:
		logger.Warn("using in-memory store, data is lost on restart")
		experiments = memory.NewExperimentRepository()
		events = memory.NewEventRepository()
	}

	var cache port.AnalysisCache
	if cfg.Redis.Addr != "" {
		client, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Error("redis connection error", slog.Any("error", err))
			return
		}
		defer client.Close()
		cache = redis.NewAnalysisCache(client)
	}

	var signer port.UploadSigner
	if cfg.Storage.Bucket != "" {
		s, err := s3.NewUploadSigner(ctx, cfg.Storage)
		if err != nil {
			logger.Error("object storage config error", slog.Any("error", err))
			return
		}
		signer = s
	} else {
		logger.Warn("no media bucket configured, upload requests will fail")
	}

	var generator port.TextGenerator
	switch gen, err := textgen.New(cfg.TextGen, logger); {
	case errors.Is(err, textgen.ErrNotConfigured):
		logger.Warn("no text generator configured, analyses will carry no prose")
	case err != nil:
		logger.Error("text generator config error", slog.Any("error", err))
		return
	default:
		generator = gen
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	policy := usecase.Policy{
		Variants:            domain.VariantPolicy{Min: cfg.Experiment.VariantsMin, Max: cfg.Experiment.VariantsMax},
		AllowScheduledEdits: cfg.Experiment.AllowScheduledEdits,
		GracePeriod:         cfg.Experiment.GracePeriod,
		MinSampleViews:      cfg.Experiment.MinSampleViews,
		MaxBuckets:          cfg.Experiment.MaxBuckets,
		MaxBatch:            cfg.Experiment.MaxBatch,
		AnalysisTimeout:     cfg.Experiment.AnalysisTimeout,
		AnalysisCacheTTL:    cfg.Experiment.AnalysisCacheTTL,
		UploadKeyPrefix:     cfg.Storage.KeyPrefix,
		UploadURLTTL:        cfg.Storage.URLTTL,
	}
	opts := []usecase.Option{usecase.WithLogger(logger), usecase.WithMetrics(m)}

	lifecycle := usecase.NewExperimentUseCase(experiments, policy, opts...)
	if cfg.Experiment.SweepInterval > 0 {
		go lifecycle.RunSweeper(ctx, cfg.Experiment.SweepInterval)
	}

	handler := httpadapter.NewHandler(httpadapter.Services{
		Experiments: lifecycle,
		Events:      usecase.NewEventUseCase(experiments, events, policy, opts...),
		Analytics:   usecase.NewAnalyticsUseCase(experiments, events, generator, cache, policy, opts...),
		Uploads:     usecase.NewUploadUseCase(signer, policy, opts...),
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}, logger, cfg.HTTP.RequestTimeout)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler.Router(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		exitCode = 0
	case err = <-serverErr:
		logger.Error("server error", slog.Any("error", err))
		return
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer stop()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		exitCode = 1
	} else {
		logger.Info("server gracefully stopped")
	}
}
