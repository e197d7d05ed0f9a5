package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DEPOT_STORAGE", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, 25*time.Millisecond, cfg.RetryBackoff)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}

func TestLoadConfig_PostgresNeedsURL(t *testing.T) {
	t.Setenv("DEPOT_STORAGE", "postgres")
	t.Setenv("DEPOT_DATABASE_URL", "")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("DEPOT_DATABASE_URL", "postgres://depot@localhost/depot")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Storage)
}

func TestLoadConfig_UnknownStorage(t *testing.T) {
	t.Setenv("DEPOT_STORAGE", "sqlite")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "unknown storage")
}
