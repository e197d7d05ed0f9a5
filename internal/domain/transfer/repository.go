package transfer

import (
	"context"

	"depot/internal/core/id"
)

// Repository defines transfer persistence. Lines are stored with the header.
type Repository interface {
	// Create inserts the header and its lines.
	Create(ctx context.Context, t *Transfer) error

	// GetByID loads a transfer with its lines.
	GetByID(ctx context.Context, id id.ID) (*Transfer, error)

	// GetForUpdate is GetByID with the header row locked until the transaction ends.
	GetForUpdate(ctx context.Context, id id.ID) (*Transfer, error)

	// UpdateStatus persists status, timestamps and version if the stored row
	// is still at expectedVersion; otherwise CONCURRENT_MODIFICATION.
	UpdateStatus(ctx context.Context, t *Transfer, expectedVersion int) error
}
