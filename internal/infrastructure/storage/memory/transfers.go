package memory

import (
	"context"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
	"depot/internal/domain/transfer"
)

// Transfers returns the transfer repository.
func (s *Store) Transfers() transfer.Repository { return transferRepo{s} }

type transferRepo struct{ s *Store }

func (r transferRepo) Create(ctx context.Context, t *transfer.Transfer) error {
	return r.s.do(ctx, func() error {
		if _, exists := r.s.st.transfers[t.ID]; exists {
			return apperror.NewDuplicate("transfer", "id", t.ID.String())
		}
		for _, other := range r.s.st.transfers {
			if t.Number != "" && other.Number == t.Number {
				return apperror.NewDuplicate("transfer", "number", t.Number)
			}
		}
		r.s.st.transfers[t.ID] = copyTransfer(*t)
		return nil
	})
}

func (r transferRepo) GetByID(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	var out *transfer.Transfer
	err := r.s.do(ctx, func() error {
		t, ok := r.s.st.transfers[transferID]
		if !ok {
			return apperror.NewNotFound("transfer", transferID)
		}
		cp := copyTransfer(t)
		out = &cp
		return nil
	})
	return out, err
}

func (r transferRepo) GetForUpdate(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return r.GetByID(ctx, transferID)
}

func (r transferRepo) UpdateStatus(ctx context.Context, t *transfer.Transfer, expectedVersion int) error {
	return r.s.do(ctx, func() error {
		stored, ok := r.s.st.transfers[t.ID]
		if !ok {
			return apperror.NewNotFound("transfer", t.ID)
		}
		if stored.Version != expectedVersion {
			return apperror.NewConcurrentModification("transfer", t.ID)
		}
		stored.Status = t.Status
		stored.ShippedAt = t.ShippedAt
		stored.CompletedAt = t.CompletedAt
		stored.CancelledAt = t.CancelledAt
		stored.Version = t.Version
		stored.UpdatedAt = t.UpdatedAt
		r.s.st.transfers[t.ID] = stored
		return nil
	})
}

func copyTransfer(t transfer.Transfer) transfer.Transfer {
	t.Lines = append([]transfer.Line(nil), t.Lines...)
	return t
}
