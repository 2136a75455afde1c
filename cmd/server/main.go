package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/clipqa/annotation-service/internal/api"
	"github.com/clipqa/annotation-service/internal/auth"
	"github.com/clipqa/annotation-service/internal/catalog"
	"github.com/clipqa/annotation-service/internal/config"
	"github.com/clipqa/annotation-service/internal/db"
	"github.com/clipqa/annotation-service/internal/form"
	"github.com/clipqa/annotation-service/internal/metrics"
	"github.com/clipqa/annotation-service/internal/ratelimiter"
	"github.com/clipqa/annotation-service/internal/repository"
	"github.com/clipqa/annotation-service/internal/service"
	"github.com/clipqa/annotation-service/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	schema, err := form.Lookup(cfg.SchemaVersion)
	if err != nil {
		logger.Fatal("unknown annotation schema",
			zap.String("schema", cfg.SchemaVersion),
			zap.Strings("available", form.Versions()),
		)
	}

	// ---- dataset catalog (parsed once, shared read-only) ----
	cat := catalog.New(cfg.MediaBaseURL,
		catalog.Source{Variant: catalog.VariantValidation, Path: cfg.ValidationDatasetPath},
		catalog.Source{Variant: catalog.VariantComplete, Path: cfg.CompleteDatasetPath},
	)
	if err := cat.Load(); err != nil {
		logger.Fatal("failed to load dataset catalog", zap.Error(err))
	}
	logger.Info("dataset catalog loaded",
		zap.Int("validation", cat.Len(catalog.VariantValidation)),
		zap.Int("complete", cat.Len(catalog.VariantComplete)),
	)

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	assignments := repository.NewPgAssignmentRepository(pool)
	users := repository.NewPgUserRepository(pool)
	limiter := ratelimiter.New(cfg.SubmitRatePerSec, cfg.SubmitBurst)
	svc := service.NewAnnotationService(assignments, cat, schema, limiter, logger, m.ServiceHooks())
	authn := auth.NewAuthenticator(users)

	// ---- background workers ----
	// Cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	var wg sync.WaitGroup
	if cfg.StatsInterval > 0 {
		statsW := worker.NewStatsWorker(svc, m.SetAssignmentCounts, cfg.StatsInterval, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			statsW.Run(workerCtx)
		}()
	}

	// ---- HTTP server ----
	router := api.NewRouter(svc, cat, authn, pool, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("schema", schema.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests and drain in-flight ones.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the gauge refresher.
	cancelWorkers()
	wg.Wait()

	logger.Info("server stopped cleanly")
}
