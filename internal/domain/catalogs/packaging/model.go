// Package packaging provides the packaging type catalog.
// A packaging type is a named container (bag, box, bottle) with a fixed
// conversion factor to exactly one base unit.
package packaging

import (
	"context"

	"github.com/shopspring/decimal"

	"depot/internal/core/apperror"
	"depot/internal/core/entity"
	"depot/internal/core/id"
)

// PackagingType represents one packaging unit.
type PackagingType struct {
	entity.Catalog

	// BaseUnitID is the base unit this packaging is measured against
	BaseUnitID id.ID `db:"base_unit_id" json:"compatibleBaseUnitId"`

	// ConversionFactor: 1 unit of this packaging == factor base units.
	// e.g., a 25kg bag with base "kilogram": factor = 25
	ConversionFactor decimal.Decimal `db:"conversion_factor" json:"defaultConversionFactor"`
}

// NewPackagingType creates a new PackagingType with required fields.
func NewPackagingType(code, name string, baseUnitID id.ID, factor decimal.Decimal) *PackagingType {
	return &PackagingType{
		Catalog:          entity.NewCatalog(code, name),
		BaseUnitID:       baseUnitID,
		ConversionFactor: factor,
	}
}

// Validate implements entity.Validatable interface.
func (p *PackagingType) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.BaseUnitID) {
		return apperror.NewValidation("base unit is required").
			WithDetail("field", "compatibleBaseUnitId")
	}
	return p.ValidateFactor()
}

// ValidateFactor fails with INVALID_CONVERSION_FACTOR unless the factor is positive.
func (p PackagingType) ValidateFactor() error {
	if !p.ConversionFactor.IsPositive() {
		return apperror.NewInvalidConversionFactor(p.ID, p.ConversionFactor.String())
	}
	return nil
}

// CompatibleWith reports whether both packaging types share a base unit.
func (p PackagingType) CompatibleWith(other PackagingType) bool {
	return p.BaseUnitID == other.BaseUnitID
}

// ToBaseUnits converts a quantity in this packaging into base units.
func (p PackagingType) ToBaseUnits(quantity decimal.Decimal) decimal.Decimal {
	return quantity.Mul(p.ConversionFactor)
}
