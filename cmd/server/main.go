// Package main is the entry point for the depot API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"depot/internal/app"
	"depot/internal/domain/registers/stock"
	v1 "depot/internal/infrastructure/http/v1"
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

	if err := run(ctx, cfg, log); err != nil {
		log.Fatalw("server failed", "error", err)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *Config, log *logger.Logger) error {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()
	log.Infow("storage ready", "storage", backend.Name)

	svc := backend.Service(stock.WithRetry(cfg.RetryAttempts, cfg.RetryBackoff))
	if cfg.Demo {
		if err := app.LoadDemo(ctx, backend.Catalog, svc); err != nil {
			return fmt.Errorf("load demo data: %w", err)
		}
	}

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := v1.NewRouter(v1.RouterConfig{
		Service:     svc,
		Idempotency: backend.Idempotency,
		Pinger:      backend.Pinger,
		Storage:     backend.Name,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if backend.Pool != nil && cfg.PoolStatsInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(cfg.PoolStatsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					postgres.LogPoolStats(gctx, backend.Pool.Unwrap())
				}
			}
		})
	}

	return g.Wait()
}

func openBackend(ctx context.Context, cfg *Config) (*app.Backend, error) {
	if cfg.Storage == app.StorageMemory {
		return app.NewMemoryBackend(), nil
	}
	return app.NewPostgresBackend(ctx, app.PostgresConfig{
		DSN:            cfg.DatabaseURL,
		MaxConns:       cfg.MaxConns,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})
}
