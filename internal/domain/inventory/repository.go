package inventory

import (
	"context"
	"time"

	"depot/internal/core/id"
)

// LotFilter narrows lot queries. Empty fields do not filter.
type LotFilter struct {
	IDs             []id.ID
	VariantIDs      []id.ID
	WarehouseID     *id.ID
	PackagingTypeID *id.ID
}

// Repository defines lot persistence.
//
// Find methods return live lots only, in creation order, so that the
// largest-first policy breaks ties deterministically.
type Repository interface {
	// GetByID retrieves a lot by ID, removed or not.
	GetByID(ctx context.Context, id id.ID) (*Lot, error)

	// Find returns live lots matching the filter.
	Find(ctx context.Context, filter LotFilter) ([]Lot, error)

	// FindForUpdate is Find with row locks held until the transaction ends.
	FindForUpdate(ctx context.Context, filter LotFilter) ([]Lot, error)

	// Create inserts a new lot.
	Create(ctx context.Context, lot *Lot) error

	// Remove soft-deletes a lot if it is still at the given version.
	Remove(ctx context.Context, id id.ID, version int) error

	// ApplyLotChanges writes quantity updates with version compare-and-swap and
	// inserts new lots. A version mismatch yields CONCURRENT_MODIFICATION and
	// nothing is applied. A negative quantity is rejected.
	ApplyLotChanges(ctx context.Context, changes []LotChange, newLots []Lot) error
}

// JournalEntry is one applied change set: the touched lots before and after,
// with newly created lots only in After.
type JournalEntry struct {
	ID        id.ID     `json:"id"`
	Before    []Lot     `json:"before"`
	After     []Lot     `json:"after"`
	CreatedAt time.Time `json:"createdAt"`
}

// Journal reads the history of applied lot changes.
type Journal interface {
	// History returns the newest entries touching a lot, newest first.
	History(ctx context.Context, inventoryID id.ID, limit int) ([]JournalEntry, error)
}
