package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/isirwatch/backend/api"
	"github.com/isirwatch/backend/internal/notices"
	"github.com/isirwatch/backend/pkg/config"
	"github.com/isirwatch/backend/pkg/db"
	"github.com/isirwatch/backend/pkg/instance"
	"github.com/isirwatch/backend/pkg/logger"
	"github.com/isirwatch/backend/pkg/migrate"
	"github.com/isirwatch/backend/pkg/pubsub"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "digest-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "digest-worker",
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

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	repo := notices.NewRepository(dbClient.DB())
	service, err := notices.NewService(notices.ServiceParams{Store: repo})
	if err != nil {
		logg.Error(context.Background(), "failed to create notices service", err)
		os.Exit(1)
	}

	publisher, err := notices.NewPublisher(pubsubClient.DigestPublisher())
	if err != nil {
		logg.Error(context.Background(), "failed to create digest publisher", err)
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

	logg.Info(ctx, "starting digest worker")

	ticker := time.NewTicker(cfg.Sync.DigestInterval)
	defer ticker.Stop()

	for {
		runDigests(ctx, logg, repo, service, publisher)

		select {
		case <-ctx.Done():
			logg.Info(ctx, "digest worker shutting down gracefully")
			return
		case <-ticker.C:
		}
	}
}

// runDigests drains pending changes into one digest per user. Rendering
// consumes the rows, so a digest that fails to publish is not retried.
func runDigests(ctx context.Context, logg *logger.Logger, repo *notices.Repository, service *notices.Service, publisher *notices.Publisher) {
	userIDs, err := repo.UserIDsWithPending(ctx)
	if err != nil {
		logg.Error(ctx, "failed to list users with pending changes", err)
		return
	}

	for _, userID := range userIDs {
		userCtx := logg.WithField(ctx, "user_id", userID.String())

		body, err := service.DigestForUser(userCtx, userID)
		if err != nil {
			logg.Error(userCtx, "failed to build digest", err)
			continue
		}
		if body == "" {
			continue
		}
		if err := publisher.PublishDigest(userCtx, userID, body); err != nil {
			logg.Error(userCtx, "failed to publish digest", err)
			continue
		}
		logg.Info(userCtx, "digest published")
	}
}
