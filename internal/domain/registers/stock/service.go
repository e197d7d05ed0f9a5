// Package stock is the application service over the conversion engine. It
// loads catalogs and lots, runs the pure domain operations and applies their
// results through the repositories inside one transaction.
package stock

import (
	"context"
	"time"

	"depot/internal/core/apperror"
	"depot/internal/core/events"
	"depot/internal/core/id"
	"depot/internal/core/numerator"
	"depot/internal/core/tx"
	"depot/internal/domain/catalogs/packaging"
	"depot/internal/domain/catalogs/unit"
	"depot/internal/domain/inventory"
	"depot/internal/domain/settings"
	"depot/internal/domain/transfer"
	"depot/pkg/logger"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 25 * time.Millisecond
)

// Repositories groups the stores the service reads and writes.
type Repositories struct {
	Units     unit.Repository
	Packaging packaging.Repository
	Lots      inventory.Repository
	Transfers transfer.Repository
	Settings  settings.Repository

	// Journal is optional; without it History returns nothing.
	Journal inventory.Journal
}

// Service runs stock operations.
type Service struct {
	repos     Repositories
	txManager tx.Manager
	events    events.Publisher
	numerator numerator.Generator

	retryAttempts int
	retryBackoff  time.Duration
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRetry sets how many times a commit is attempted when it loses an
// optimistic lock race, and the base delay between attempts.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(s *Service) {
		if attempts > 0 {
			s.retryAttempts = attempts
		}
		if backoff >= 0 {
			s.retryBackoff = backoff
		}
	}
}

// WithClock overrides the time source used for transfer timestamps and numbers.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a stock service.
func NewService(
	repos Repositories,
	txManager tx.Manager,
	publisher events.Publisher,
	generator numerator.Generator,
	opts ...Option,
) *Service {
	s := &Service{
		repos:         repos,
		txManager:     txManager,
		events:        publisher,
		numerator:     generator,
		retryAttempts: defaultRetryAttempts,
		retryBackoff:  defaultRetryBackoff,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog loads the current packaging catalog.
func (s *Service) Catalog(ctx context.Context) (*packaging.Catalog, error) {
	return packaging.LoadCatalog(ctx, s.repos.Units, s.repos.Packaging)
}

// Units lists base units ordered by name.
func (s *Service) Units(ctx context.Context) ([]unit.BaseUnit, error) {
	c, err := unit.LoadCatalog(ctx, s.repos.Units)
	if err != nil {
		return nil, err
	}
	return c.List(), nil
}

// PackagingTypes lists packaging types ordered by name.
func (s *Service) PackagingTypes(ctx context.Context) ([]packaging.PackagingType, error) {
	c, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return c.List(), nil
}

// inTx runs fn in a transaction and repeats the whole unit of work when it
// fails with CONCURRENT_MODIFICATION.
func (s *Service) inTx(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		err = s.txManager.RunInTransaction(ctx, fn)
		if err == nil || !apperror.IsConcurrentModification(err) {
			return err
		}
		if attempt == s.retryAttempts {
			break
		}

		logger.Warn(ctx, "stock operation lost a concurrent update, retrying",
			"operation", op,
			"attempt", attempt,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryBackoff * time.Duration(attempt)):
		}
	}
	return err
}

// observe logs catalog data faults. They point at broken reference data
// rather than at the request.
func observe(ctx context.Context, err error) error {
	if apperror.HasCode(err, apperror.CodeInvalidConversionFactor) {
		appErr, _ := apperror.AsAppError(err)
		logger.Warn(ctx, "packaging type has an invalid conversion factor",
			"packaging_type_id", appErr.Details["packaging_type_id"],
			"factor", appErr.Details["factor"],
		)
	}
	return err
}

func (s *Service) publish(ctx context.Context, aggregateType string, aggregateID id.ID, eventType string, payload any) error {
	if s.events == nil {
		return nil
	}
	return s.events.Publish(ctx, events.DomainEvent{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
	})
}
