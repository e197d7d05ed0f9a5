// Package main is the entry point for the depot background worker. It relays
// outbox events to a Redis stream and expires idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"depot/internal/infrastructure/eventbus"
	"depot/internal/infrastructure/storage/postgres"
	"depot/pkg/logger"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	log.Info("starting depot worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	client, err := eventbus.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatalw("failed to connect to redis", "error", err)
	}
	defer func() { _ = client.Close() }()

	txm := postgres.NewTxManager(pool)
	publisher := eventbus.NewStreamPublisher(client, cfg.Stream, cfg.StreamMaxLen)

	worker := NewWorker(
		postgres.NewOutboxRelay(pool.Unwrap(), cfg.BatchSize, publisher),
		postgres.NewIdempotencyStore(txm, cfg.IdempotencyTTL),
		Intervals{
			Poll:    cfg.PollInterval,
			DLQ:     cfg.DLQInterval,
			Cleanup: cfg.CleanupInterval,
		},
		log,
	)

	if err := worker.Run(ctx); err != nil {
		log.Fatalw("worker failed", "error", err)
	}
	log.Info("worker stopped")
}
