package dto

import (
	"github.com/shopspring/decimal"

	"depot/internal/domain/catalogs/packaging"
	"depot/internal/domain/catalogs/unit"
)

// UnitResponse represents a base unit.
type UnitResponse struct {
	ID     string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// FromUnit converts a base unit to its response DTO.
func FromUnit(u unit.BaseUnit) UnitResponse {
	return UnitResponse{
		ID:     u.ID.String(),
		Code:   u.Code,
		Name:   u.Name,
		Symbol: u.Symbol,
	}
}

// PackagingTypeResponse represents a packaging type.
type PackagingTypeResponse struct {
	ID                      string          `json:"id"`
	Code                    string          `json:"code"`
	Name                    string          `json:"name"`
	CompatibleBaseUnitID    string          `json:"compatibleBaseUnitId"`
	DefaultConversionFactor decimal.Decimal `json:"defaultConversionFactor"`
}

// FromPackagingType converts a packaging type to its response DTO.
func FromPackagingType(p packaging.PackagingType) PackagingTypeResponse {
	return PackagingTypeResponse{
		ID:                      p.ID.String(),
		Code:                    p.Code,
		Name:                    p.Name,
		CompatibleBaseUnitID:    p.BaseUnitID.String(),
		DefaultConversionFactor: p.ConversionFactor,
	}
}
