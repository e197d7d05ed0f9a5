package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the outbox worker.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	Stream       string `envconfig:"EVENT_STREAM" default:"depot:events"`
	StreamMaxLen int64  `envconfig:"EVENT_STREAM_MAXLEN" default:"100000"`

	BatchSize       int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	PollInterval    time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"500ms"`
	DLQInterval     time.Duration `envconfig:"OUTBOX_DLQ_INTERVAL" default:"1m"`
	CleanupInterval time.Duration `envconfig:"IDEMPOTENCY_CLEANUP_INTERVAL" default:"1h"`
	IdempotencyTTL  time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"DEVELOPMENT" default:"false"`
}

// LoadConfig reads DEPOT_* environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("depot", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
