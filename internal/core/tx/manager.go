// Package tx lets domain services run a unit of work atomically without
// knowing which store backs it.
package tx

import (
	"context"
)

// Manager runs fn as one atomic unit of work.
//
// Repack and transfer commits go through it: either every lot update,
// journal row and outbox event lands, or none does. The postgres manager
// opens a serializable transaction; the memory store holds its write lock and
// restores a snapshot when fn fails.
// A call made while a unit of work is already in ctx joins it.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
