// Package inventory models stock lots and the selection policies applied to
// them. Everything here is pure data manipulation; persistence is reached
// through Repository.
package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"depot/internal/core/apperror"
	"depot/internal/core/entity"
	"depot/internal/core/id"
)

// Lot is one stock batch: a quantity of a variant, in one packaging type, at
// one warehouse, tied to an optional production date.
//
// Several lots may share all four dimensions; they are distinct batches.
// Removed lots keep their row (DeletionMark set, production date cleared) and
// never count as available.
type Lot struct {
	entity.BaseRecord

	VariantID       id.ID           `db:"variant_id" json:"variantId"`
	ProductID       id.ID           `db:"product_id" json:"productId"`
	WarehouseID     id.ID           `db:"warehouse_id" json:"warehouseId"`
	PackagingTypeID id.ID           `db:"packaging_type_id" json:"packagingTypeId"`
	Quantity        decimal.Decimal `db:"quantity" json:"quantity"`
	ProductionDate  *time.Time      `db:"production_date" json:"productionDate,omitempty"`
}

// NewLot creates a lot with a fresh ID. A zero variantID means the product
// has no variants; the product ID then stands in as the implicit variant.
func NewLot(variantID, productID, warehouseID, packagingTypeID id.ID, quantity decimal.Decimal, productionDate *time.Time) *Lot {
	return &Lot{
		BaseRecord:      entity.NewBaseRecord(),
		VariantID:       EffectiveVariantID(variantID, productID),
		ProductID:       productID,
		WarehouseID:     warehouseID,
		PackagingTypeID: packagingTypeID,
		Quantity:        quantity,
		ProductionDate:  NormalizeDate(productionDate),
	}
}

// EffectiveVariantID returns productID when variantID is nil.
func EffectiveVariantID(variantID, productID id.ID) id.ID {
	if id.IsNil(variantID) {
		return productID
	}
	return variantID
}

// NormalizeDate truncates a production date to a UTC calendar day.
func NormalizeDate(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// SameDate reports whether two production dates denote the same batch day.
// Two missing dates are equal.
func SameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return NormalizeDate(a).Equal(*NormalizeDate(b))
}

// Validate implements entity.Validatable interface.
func (l *Lot) Validate(ctx context.Context) error {
	for field, v := range map[string]id.ID{
		"variantId":       l.VariantID,
		"productId":       l.ProductID,
		"warehouseId":     l.WarehouseID,
		"packagingTypeId": l.PackagingTypeID,
	} {
		if id.IsNil(v) {
			return apperror.NewValidation(field+" is required").WithDetail("field", field)
		}
	}
	if l.Quantity.IsNegative() {
		return apperror.NewInvalidQuantity(l.Quantity.String()).WithDetail("inventory_id", l.ID)
	}
	return nil
}

// IsLive reports whether the lot takes part in availability.
func (l *Lot) IsLive() bool {
	return !l.DeletionMark
}

// Remove soft-deletes the lot.
func (l *Lot) Remove() {
	l.MarkDeleted()
	l.ProductionDate = nil
	l.Touch()
}

// SameBatch reports whether l matches the merge key used when stock lands on
// a warehouse: variant, warehouse, packaging type and production date.
func (l *Lot) SameBatch(variantID, warehouseID, packagingTypeID id.ID, productionDate *time.Time) bool {
	return l.VariantID == variantID &&
		l.WarehouseID == warehouseID &&
		l.PackagingTypeID == packagingTypeID &&
		SameDate(l.ProductionDate, productionDate)
}
