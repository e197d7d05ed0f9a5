package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
)

// LotChange sets a lot's quantity. ExpectedVersion is the version the change
// was computed from; persistence rejects the change if the row moved on.
type LotChange struct {
	InventoryID     id.ID           `json:"inventoryId"`
	NewQuantity     decimal.Decimal `json:"newQuantity"`
	ExpectedVersion int             `json:"expectedVersion"`
}

// LotChanges is everything a committed operation asks the store to apply.
type LotChanges struct {
	Changes []LotChange `json:"changes"`
	NewLots []Lot       `json:"newLots"`
}

// IsEmpty reports whether there is nothing to apply.
func (c LotChanges) IsEmpty() bool {
	return len(c.Changes) == 0 && len(c.NewLots) == 0
}

// Ledger is a working copy of a lot set. Operations debit and credit it, then
// read back the resulting LotChanges. Quantities never go negative.
type Ledger struct {
	lots    map[id.ID]*Lot
	order   []id.ID
	touched map[id.ID]bool
	created []id.ID
}

// NewLedger copies lots into a ledger. Input order is kept for tie-breaks.
func NewLedger(lots []Lot) *Ledger {
	l := &Ledger{
		lots:    make(map[id.ID]*Lot, len(lots)),
		touched: map[id.ID]bool{},
	}
	for _, lot := range lots {
		if _, dup := l.lots[lot.ID]; dup {
			continue
		}
		cp := lot
		l.lots[lot.ID] = &cp
		l.order = append(l.order, lot.ID)
	}
	return l
}

// Get returns the current working state of a lot.
func (l *Ledger) Get(inventoryID id.ID) (Lot, bool) {
	lot, ok := l.lots[inventoryID]
	if !ok {
		return Lot{}, false
	}
	return *lot, true
}

// Debit takes quantity out of a live lot.
func (l *Ledger) Debit(inventoryID id.ID, quantity decimal.Decimal) (Lot, error) {
	lot, ok := l.lots[inventoryID]
	if !ok || !lot.IsLive() {
		return Lot{}, apperror.NewNotFound("inventory lot", inventoryID)
	}
	if !quantity.IsPositive() {
		return Lot{}, apperror.NewInvalidQuantity(quantity.String())
	}
	if quantity.GreaterThan(lot.Quantity) {
		return Lot{}, apperror.NewInsufficientQuantity(inventoryID, quantity.String(), lot.Quantity.String())
	}
	lot.Quantity = lot.Quantity.Sub(quantity)
	l.touched[inventoryID] = true
	return *lot, nil
}

// Credit adds quantity to the largest live lot matching the merge key, or
// creates a new lot when none matches. The template supplies product identity.
func (l *Ledger) Credit(template Lot, warehouseID, packagingTypeID id.ID, productionDate *time.Time, quantity decimal.Decimal) (Lot, bool, error) {
	if !quantity.IsPositive() {
		return Lot{}, false, apperror.NewInvalidQuantity(quantity.String())
	}

	if target := l.mergeTarget(template.VariantID, warehouseID, packagingTypeID, productionDate); target != nil {
		target.Quantity = target.Quantity.Add(quantity)
		if !l.isCreated(target.ID) {
			l.touched[target.ID] = true
		}
		return *target, false, nil
	}

	lot := NewLot(template.VariantID, template.ProductID, warehouseID, packagingTypeID, quantity, productionDate)
	l.lots[lot.ID] = lot
	l.order = append(l.order, lot.ID)
	l.created = append(l.created, lot.ID)
	return *lot, true, nil
}

// Changes returns the updates for touched existing lots (in input order) and
// the lots created along the way.
func (l *Ledger) Changes() LotChanges {
	var out LotChanges
	for _, lotID := range l.order {
		if !l.touched[lotID] {
			continue
		}
		lot := l.lots[lotID]
		out.Changes = append(out.Changes, LotChange{
			InventoryID:     lot.ID,
			NewQuantity:     lot.Quantity,
			ExpectedVersion: lot.Version,
		})
	}
	for _, lotID := range l.created {
		out.NewLots = append(out.NewLots, *l.lots[lotID])
	}
	return out
}

func (l *Ledger) mergeTarget(variantID, warehouseID, packagingTypeID id.ID, productionDate *time.Time) *Lot {
	var candidates []Lot
	for _, lotID := range l.order {
		lot := l.lots[lotID]
		if lot.IsLive() && lot.SameBatch(variantID, warehouseID, packagingTypeID, productionDate) {
			candidates = append(candidates, *lot)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	SortLargestFirst(candidates)
	return l.lots[candidates[0].ID]
}

func (l *Ledger) isCreated(lotID id.ID) bool {
	for _, c := range l.created {
		if c == lotID {
			return true
		}
	}
	return false
}
