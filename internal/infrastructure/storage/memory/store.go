// Package memory is an in-process implementation of every repository the
// stock service needs. Transactions are serialized by one mutex and rolled
// back by restoring a snapshot, so the store keeps the same atomicity and
// version-check guarantees as the postgres backend. Used for tests, demos and
// DEPOT_STORAGE=memory.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"depot/internal/core/events"
	"depot/internal/core/id"
	"depot/internal/domain/catalogs/packaging"
	"depot/internal/domain/catalogs/unit"
	"depot/internal/domain/inventory"
	"depot/internal/domain/transfer"
)

type txKey struct{}

type state struct {
	units       map[id.ID]unit.BaseUnit
	packaging   map[id.ID]packaging.PackagingType
	lots        map[id.ID]inventory.Lot
	lotOrder    []id.ID
	journal     []inventory.JournalEntry
	transfers   map[id.ID]transfer.Transfer
	settings    map[string]map[string]string
	sequences   map[string]int64
	outbox      []Event
	idempotency map[string]idempotencyRecord
}

// Event is a published domain event as recorded by the store.
type Event struct {
	events.DomainEvent
	ID        id.ID
	CreatedAt time.Time
}

// Store holds all data in memory.
type Store struct {
	mu sync.Mutex
	st state
}

// New creates an empty store.
func New() *Store {
	return &Store{st: state{
		units:       map[id.ID]unit.BaseUnit{},
		packaging:   map[id.ID]packaging.PackagingType{},
		lots:        map[id.ID]inventory.Lot{},
		transfers:   map[id.ID]transfer.Transfer{},
		settings:    map[string]map[string]string{},
		sequences:   map[string]int64{},
		idempotency: map[string]idempotencyRecord{},
	}}
}

// RunInTransaction implements tx.Manager. Nested calls join the outer
// transaction; a failed outermost call discards every write made inside it.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// Ping implements the readiness check.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// do runs fn under the store lock unless ctx already holds it.
func (s *Store) do(ctx context.Context, fn func() error) error {
	if s.inTx(ctx) {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (st state) clone() state {
	out := state{
		units:       maps.Clone(st.units),
		packaging:   maps.Clone(st.packaging),
		lots:        maps.Clone(st.lots),
		lotOrder:    append([]id.ID(nil), st.lotOrder...),
		journal:     append([]inventory.JournalEntry(nil), st.journal...),
		transfers:   make(map[id.ID]transfer.Transfer, len(st.transfers)),
		settings:    make(map[string]map[string]string, len(st.settings)),
		sequences:   maps.Clone(st.sequences),
		outbox:      append([]Event(nil), st.outbox...),
		idempotency: maps.Clone(st.idempotency),
	}
	for k, t := range st.transfers {
		t.Lines = append([]transfer.Line(nil), t.Lines...)
		out.transfers[k] = t
	}
	for k, m := range st.settings {
		out.settings[k] = maps.Clone(m)
	}
	return out
}
