// Package types provides common type aliases and utilities.
package types

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is an amount of stock expressed in some packaging unit.
// Uses decimal.Decimal to avoid floating-point drift when chaining conversions.
type Quantity = decimal.Decimal

// IntegralTolerance bounds how far a value may sit from the nearest integer
// and still count as whole.
var IntegralTolerance = decimal.New(1, -9)

// NewQuantity creates a Quantity from a float.
// WARNING: Use ParseQuantity for values that come from user input.
func NewQuantity(f float64) Quantity {
	return decimal.NewFromFloat(f)
}

// ParseQuantity parses a decimal string. NaN and infinities are rejected.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty quantity")
	}
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse quantity: %w", err)
	}
	return q, nil
}

// MustQuantity parses a decimal string, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

// QuantityFromFloat converts a float, rejecting NaN and infinities.
func QuantityFromFloat(f float64) (Quantity, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("non-finite quantity %v", f)
	}
	return decimal.NewFromFloat(f), nil
}

// IsWhole reports whether q is an integer within IntegralTolerance.
func IsWhole(q Quantity) bool {
	return q.Sub(q.Round(0)).Abs().LessThanOrEqual(IntegralTolerance)
}

// FractionDigits returns the number of significant fractional digits of q,
// ignoring trailing zeros: 0.00125 has 5, 2.500 has 1, 25 has 0.
func FractionDigits(q Quantity) int32 {
	if q.Exponent() >= 0 {
		return 0
	}
	digits := -q.Exponent()
	for digits > 0 && q.Shift(digits-1).IsInteger() {
		digits--
	}
	return digits
}

// ScaledInt64At returns q * 10^digits as an int64. It fails when q has more
// than digits fractional digits or the result overflows.
func ScaledInt64At(q Quantity, digits int32) (int64, error) {
	scaled := q.Shift(digits)
	if !scaled.IsInteger() || scaled.GreaterThan(decimal.NewFromInt(math.MaxInt64)) ||
		scaled.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, fmt.Errorf("quantity %s does not scale to an integer at %d digits", q, digits)
	}
	return scaled.IntPart(), nil
}
