// Package main applies the schema and loads demo data into postgres.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"

	"depot/db/migrations"
	"depot/internal/app"
	"depot/internal/infrastructure/storage/postgres"
	"depot/pkg/logger"
)

// Config holds seeder configuration.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	SkipSchema  bool   `envconfig:"SEED_SKIP_SCHEMA" default:"false"`
	DemoData    bool   `envconfig:"SEED_DEMO_DATA" default:"true"`
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	var cfg Config
	if err := envconfig.Process("depot", &cfg); err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)

	backend, err := app.NewPostgresBackend(ctx, app.PostgresConfig{DSN: cfg.DatabaseURL})
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer backend.Close()
	log.Info("connected to database")

	if !cfg.SkipSchema {
		if err := applySchema(ctx, backend.Pool); err != nil {
			log.Fatalw("failed to apply schema", "error", err)
		}
	}

	if cfg.DemoData {
		if err := app.LoadDemo(ctx, backend.Catalog, backend.Service()); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func applySchema(ctx context.Context, pool *postgres.Pool) error {
	scripts, err := migrations.UpScripts()
	if err != nil {
		return err
	}
	for i, script := range scripts {
		if _, err := pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	logger.Info(ctx, "schema applied", "scripts", len(scripts))
	return nil
}
