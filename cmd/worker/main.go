package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/nikhilbhutani/fluencycoach/internal/config"
	"github.com/nikhilbhutani/fluencycoach/internal/database"
	"github.com/nikhilbhutani/fluencycoach/internal/queue"
	"github.com/nikhilbhutani/fluencycoach/internal/queue/workers"
	"github.com/nikhilbhutani/fluencycoach/internal/usage"
)

const concurrency = 4

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPool(context.Background(), cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default":      3,
				queue.QueueLow: 1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	// Register workers
	usageWorker := workers.NewUsageWorker(usage.NewService(db))
	registry.Register(queue.TypeUsageRecord, usageWorker.ProcessTask)

	slog.Info("starting worker", "concurrency", concurrency)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
