// Package conversion translates quantities between packaging types that share
// a base unit and computes the smallest source step that always yields whole
// target units.
package conversion

import (
	"github.com/shopspring/decimal"

	"depot/internal/core/apperror"
	"depot/internal/core/types"
	"depot/internal/domain/catalogs/packaging"
)

// EquivalentQuantity converts quantity of source into target units.
//
// It returns (nil, nil) when the exact result is not a whole number of target
// units; callers must block the operation rather than round. Incompatible
// packaging types and broken factors are errors.
func EquivalentQuantity(quantity decimal.Decimal, source, target packaging.PackagingType) (*decimal.Decimal, error) {
	exact, err := ExactQuantity(quantity, source, target)
	if err != nil {
		return nil, err
	}
	if !types.IsWhole(exact) {
		return nil, nil
	}
	whole := exact.Round(0)
	return &whole, nil
}

// ExactQuantity is the unrounded conversion, used for messages and previews.
func ExactQuantity(quantity decimal.Decimal, source, target packaging.PackagingType) (decimal.Decimal, error) {
	if !source.CompatibleWith(target) {
		return decimal.Zero, apperror.NewIncompatibleUnits(source.ID, target.ID)
	}
	if err := source.ValidateFactor(); err != nil {
		return decimal.Zero, err
	}
	if err := target.ValidateFactor(); err != nil {
		return decimal.Zero, err
	}
	if !quantity.IsPositive() {
		return decimal.Zero, apperror.NewInvalidQuantity(quantity.String())
	}

	inBase := source.ToBaseUnits(quantity)
	return inBase.Div(target.ConversionFactor), nil
}

// MinimalIntegerStep returns the smallest positive source quantity whose
// conversion into target is always a whole number.
//
// Both factors are scaled by 10^d to integers, d being the larger count of
// significant fractional digits, then step = LCM(source, target) / source,
// clamped to at least 1.
func MinimalIntegerStep(source, target packaging.PackagingType) (int64, error) {
	if !source.CompatibleWith(target) {
		return 0, apperror.NewIncompatibleUnits(source.ID, target.ID)
	}
	if err := source.ValidateFactor(); err != nil {
		return 0, err
	}
	if err := target.ValidateFactor(); err != nil {
		return 0, err
	}

	digits := max(types.FractionDigits(source.ConversionFactor), types.FractionDigits(target.ConversionFactor))
	scaledSource, err := scaledFactor(source, digits)
	if err != nil {
		return 0, err
	}
	scaledTarget, err := scaledFactor(target, digits)
	if err != nil {
		return 0, err
	}

	// LCM(a,b)/a == b/GCD(a,b); the right side cannot overflow.
	step := scaledTarget / GCD(scaledSource, scaledTarget)
	if step < 1 {
		step = 1
	}
	return step, nil
}

// ClampToStep rounds quantity down to the nearest multiple of step.
// Quantities below one step clamp to zero.
func ClampToStep(quantity decimal.Decimal, step int64) decimal.Decimal {
	if step < 1 || !quantity.IsPositive() {
		return decimal.Zero
	}
	s := decimal.NewFromInt(step)
	return quantity.Div(s).Floor().Mul(s)
}

func scaledFactor(p packaging.PackagingType, digits int32) (int64, error) {
	scaled, err := types.ScaledInt64At(p.ConversionFactor, digits)
	if err != nil || scaled <= 0 {
		return 0, apperror.NewInvalidConversionFactor(p.ID, p.ConversionFactor.String())
	}
	return scaled, nil
}
