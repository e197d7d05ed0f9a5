package memory

import (
	"context"
	"slices"
	"time"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
	"depot/internal/domain/inventory"
)

// Lots returns the lot repository.
func (s *Store) Lots() inventory.Repository { return lotRepo{s} }

// Journal returns the lot change journal.
func (s *Store) Journal() inventory.Journal { return lotRepo{s} }

type lotRepo struct{ s *Store }

func (r lotRepo) GetByID(ctx context.Context, lotID id.ID) (*inventory.Lot, error) {
	var out *inventory.Lot
	err := r.s.do(ctx, func() error {
		l, ok := r.s.st.lots[lotID]
		if !ok {
			return apperror.NewNotFound("inventory lot", lotID)
		}
		out = &l
		return nil
	})
	return out, err
}

func (r lotRepo) Find(ctx context.Context, filter inventory.LotFilter) ([]inventory.Lot, error) {
	var out []inventory.Lot
	err := r.s.do(ctx, func() error {
		for _, lotID := range r.s.st.lotOrder {
			l := r.s.st.lots[lotID]
			if l.IsLive() && matches(l, filter) {
				out = append(out, l)
			}
		}
		return nil
	})
	return out, err
}

// FindForUpdate needs no extra locking: a transaction holds the store lock.
func (r lotRepo) FindForUpdate(ctx context.Context, filter inventory.LotFilter) ([]inventory.Lot, error) {
	return r.Find(ctx, filter)
}

func (r lotRepo) Create(ctx context.Context, lot *inventory.Lot) error {
	if err := lot.Validate(ctx); err != nil {
		return err
	}
	return r.s.do(ctx, func() error {
		return r.s.insertLot(*lot)
	})
}

func (r lotRepo) Remove(ctx context.Context, lotID id.ID, version int) error {
	return r.s.do(ctx, func() error {
		l, ok := r.s.st.lots[lotID]
		if !ok {
			return apperror.NewNotFound("inventory lot", lotID)
		}
		if l.Version != version {
			return apperror.NewConcurrentModification("inventory lot", lotID)
		}
		l.Remove()
		r.s.st.lots[lotID] = l
		return nil
	})
}

func (r lotRepo) ApplyLotChanges(ctx context.Context, changes []inventory.LotChange, newLots []inventory.Lot) error {
	return r.s.do(ctx, func() error {
		for _, c := range changes {
			l, ok := r.s.st.lots[c.InventoryID]
			if !ok {
				return apperror.NewNotFound("inventory lot", c.InventoryID)
			}
			if l.Version != c.ExpectedVersion || !l.IsLive() {
				return apperror.NewConcurrentModification("inventory lot", c.InventoryID)
			}
			if c.NewQuantity.IsNegative() {
				return apperror.NewInvalidQuantity(c.NewQuantity.String()).
					WithDetail("inventory_id", c.InventoryID)
			}
		}
		entry := inventory.JournalEntry{ID: id.New(), CreatedAt: time.Now().UTC()}
		for _, c := range changes {
			l := r.s.st.lots[c.InventoryID]
			entry.Before = append(entry.Before, l)
			l.Quantity = c.NewQuantity
			l.Touch()
			r.s.st.lots[c.InventoryID] = l
			entry.After = append(entry.After, l)
		}
		for _, l := range newLots {
			if err := r.s.insertLot(l); err != nil {
				return err
			}
			entry.After = append(entry.After, r.s.st.lots[l.ID])
		}
		r.s.st.journal = append(r.s.st.journal, entry)
		return nil
	})
}

func (s *Store) insertLot(l inventory.Lot) error {
	if _, exists := s.st.lots[l.ID]; exists {
		return apperror.NewDuplicate("inventory lot", "id", l.ID.String())
	}
	if l.Quantity.IsNegative() {
		return apperror.NewInvalidQuantity(l.Quantity.String())
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
		l.UpdatedAt = l.CreatedAt
	}
	s.st.lots[l.ID] = l
	s.st.lotOrder = append(s.st.lotOrder, l.ID)
	return nil
}

func matches(l inventory.Lot, f inventory.LotFilter) bool {
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, l.ID) {
		return false
	}
	if len(f.VariantIDs) > 0 && !slices.Contains(f.VariantIDs, l.VariantID) {
		return false
	}
	if f.WarehouseID != nil && l.WarehouseID != *f.WarehouseID {
		return false
	}
	if f.PackagingTypeID != nil && l.PackagingTypeID != *f.PackagingTypeID {
		return false
	}
	return true
}

func (r lotRepo) History(ctx context.Context, inventoryID id.ID, limit int) ([]inventory.JournalEntry, error) {
	var out []inventory.JournalEntry
	err := r.s.do(ctx, func() error {
		for i := len(r.s.st.journal) - 1; i >= 0; i-- {
			entry := r.s.st.journal[i]
			if !slices.ContainsFunc(entry.After, func(l inventory.Lot) bool { return l.ID == inventoryID }) {
				continue
			}
			out = append(out, entry)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}
