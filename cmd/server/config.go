package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"depot/internal/app"
)

// Config holds runtime configuration for the API server.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"DEVELOPMENT" default:"false"`

	Storage        string        `envconfig:"STORAGE" default:"postgres"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	MaxConns       int32         `envconfig:"DB_MAX_CONNS" default:"25"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBackoff  time.Duration `envconfig:"RETRY_BACKOFF" default:"25ms"`

	// Demo loads the sample catalog on startup; mostly useful with memory storage.
	Demo bool `envconfig:"DEMO" default:"false"`

	PoolStatsInterval time.Duration `envconfig:"POOL_STATS_INTERVAL" default:"5m"`
}

// LoadConfig reads DEPOT_* environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("depot", &cfg); err != nil {
		return nil, err
	}
	switch cfg.Storage {
	case app.StorageMemory:
	case app.StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DEPOT_DATABASE_URL is required for postgres storage")
		}
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
	return &cfg, nil
}
