// Package app assembles the storage backends and the stock service that the
// binaries share.
package app

import (
	"context"
	"fmt"
	"time"

	"depot/internal/core/events"
	"depot/internal/core/idempotency"
	"depot/internal/core/numerator"
	"depot/internal/core/tx"
	"depot/internal/domain/catalogs/packaging"
	"depot/internal/domain/catalogs/unit"
	"depot/internal/domain/registers/stock"
	infranumerator "depot/internal/infrastructure/numerator"
	"depot/internal/infrastructure/storage/memory"
	"depot/internal/infrastructure/storage/postgres"
	"depot/internal/infrastructure/storage/postgres/catalog_repo"
	"depot/internal/infrastructure/storage/postgres/register_repo"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// CatalogWriter stores catalog entries.
type CatalogWriter interface {
	PutUnit(ctx context.Context, u unit.BaseUnit) error
	PutPackagingType(ctx context.Context, p packaging.PackagingType) error
}

// Backend is one wired storage implementation.
type Backend struct {
	Name        string
	Repos       stock.Repositories
	Tx          tx.Manager
	Events      events.Publisher
	Numerator   numerator.Generator
	Idempotency idempotency.Store
	Catalog     CatalogWriter
	Pinger      interface {
		Ping(ctx context.Context) error
	}

	// Pool is nil for the memory backend.
	Pool *postgres.Pool
}

// Service creates the stock service over the backend.
func (b *Backend) Service(opts ...stock.Option) *stock.Service {
	return stock.NewService(b.Repos, b.Tx, b.Events, b.Numerator, opts...)
}

// Close releases the backend's connections.
func (b *Backend) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
}

// NewMemoryBackend creates a process-local backend.
func NewMemoryBackend() *Backend {
	store := memory.New()
	return &Backend{
		Name: StorageMemory,
		Repos: stock.Repositories{
			Units:     store.Units(),
			Packaging: store.Packaging(),
			Lots:      store.Lots(),
			Transfers: store.Transfers(),
			Settings:  store.Settings(),
			Journal:   store.Journal(),
		},
		Tx:          store,
		Events:      store,
		Numerator:   store.Numerator(),
		Idempotency: store.Idempotency(),
		Catalog:     store,
		Pinger:      store,
	}
}

// PostgresConfig configures the postgres backend.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	IdempotencyTTL time.Duration
}

// NewPostgresBackend connects to postgres and wires the repositories.
func NewPostgresBackend(ctx context.Context, cfg PostgresConfig) (*Backend, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.DSN)
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	txm := postgres.NewTxManager(pool)
	journal, err := postgres.NewLotJournal(txm)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("lot journal: %w", err)
	}

	units := catalog_repo.NewUnitRepo(txm)
	types := catalog_repo.NewPackagingRepo(txm)
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Backend{
		Name: StoragePostgres,
		Repos: stock.Repositories{
			Units:     units,
			Packaging: types,
			Lots:      register_repo.NewLotRepo(txm, journal),
			Transfers: register_repo.NewTransferRepo(txm),
			Settings:  register_repo.NewSettingsRepo(txm),
			Journal:   journal,
		},
		Tx:          txm,
		Events:      postgres.NewOutboxPublisher(txm),
		Numerator:   infranumerator.New(txm),
		Idempotency: postgres.NewIdempotencyStore(txm, ttl),
		Catalog:     catalogWriter{units: units, types: types},
		Pinger:      txm,
		Pool:        pool,
	}, nil
}

type catalogWriter struct {
	units *catalog_repo.UnitRepo
	types *catalog_repo.PackagingRepo
}

func (w catalogWriter) PutUnit(ctx context.Context, u unit.BaseUnit) error {
	if err := u.Validate(ctx); err != nil {
		return err
	}
	return w.units.Create(ctx, &u)
}

func (w catalogWriter) PutPackagingType(ctx context.Context, p packaging.PackagingType) error {
	return w.types.Create(ctx, &p)
}
