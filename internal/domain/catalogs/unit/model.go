// Package unit provides the base unit catalog.
// Base units are the canonical measures stock is tracked in (kilogram, liter, piece).
package unit

import (
	"context"

	"depot/internal/core/apperror"
	"depot/internal/core/entity"
)

// BaseUnit represents a canonical measurement unit.
type BaseUnit struct {
	entity.Catalog

	// Symbol is the short symbol (e.g., "kg", "l", "pcs")
	Symbol string `db:"symbol" json:"symbol"`
}

// NewBaseUnit creates a new BaseUnit with required fields.
func NewBaseUnit(code, name, symbol string) *BaseUnit {
	return &BaseUnit{
		Catalog: entity.NewCatalog(code, name),
		Symbol:  symbol,
	}
}

// Validate implements entity.Validatable interface.
func (u *BaseUnit) Validate(ctx context.Context) error {
	if err := u.Catalog.Validate(ctx); err != nil {
		return err
	}
	if u.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}
	return nil
}
