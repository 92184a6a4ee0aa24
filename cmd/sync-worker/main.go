package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/isirwatch/backend/api"
	"github.com/isirwatch/backend/internal/cron"
	"github.com/isirwatch/backend/internal/reconcile"
	"github.com/isirwatch/backend/internal/registry"
	isirsync "github.com/isirwatch/backend/internal/sync"
	"github.com/isirwatch/backend/internal/tracker"
	"github.com/isirwatch/backend/pkg/config"
	"github.com/isirwatch/backend/pkg/db"
	"github.com/isirwatch/backend/pkg/instance"
	"github.com/isirwatch/backend/pkg/logger"
	"github.com/isirwatch/backend/pkg/metrics"
	"github.com/isirwatch/backend/pkg/migrate"
	"github.com/isirwatch/backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "sync-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "sync-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registryClient, err := registry.NewClient(cfg.Registry)
	if err != nil {
		logg.Error(context.Background(), "failed to create registry client", err)
		os.Exit(1)
	}

	reconciler, err := reconcile.NewReconciler(reconcile.ReconcilerParams{
		Store: reconcile.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciler", err)
		os.Exit(1)
	}

	changeTracker, err := tracker.NewTracker(tracker.TrackerParams{
		Store: tracker.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create change tracker", err)
		os.Exit(1)
	}

	cycle, err := isirsync.NewCycle(isirsync.CycleParams{
		Logger:   logg,
		Registry: registryClient,
		Store:    isirsync.NewRepository(dbClient.DB()),
		Applier:  reconciler,
		Tracker:  changeTracker,
		Metrics:  metrics.NewSyncMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sync cycle", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redis.LockKey("sync-worker", cfg.App.Env), cfg.Sync.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync lock", err)
		os.Exit(1)
	}

	jobRegistry := cron.NewRegistry()
	jobRegistry.Register(cycle)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobRegistry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Sync.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})

	opsServer := &http.Server{
		Addr:    ":" + cfg.App.OpsPort,
		Handler: api.NewOpsHandler(cfg, logg),
	}
	go func() {
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "ops server stopped unexpectedly", err)
		}
	}()
	defer opsServer.Close()

	logg.Info(ctx, "starting sync worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "sync worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "sync worker shutting down gracefully")
}
