package dto

import (
	"github.com/shopspring/decimal"
)

// EquivalentQuery asks how many target units a quantity of source units is.
type EquivalentQuery struct {
	Quantity string `form:"quantity" binding:"required"`
	Source   string `form:"source" binding:"required,uuid"`
	Target   string `form:"target" binding:"required,uuid"`
}

// StepQuery asks for the minimal source step, optionally clamping a quantity.
type StepQuery struct {
	Source   string `form:"source" binding:"required,uuid"`
	Target   string `form:"target" binding:"required,uuid"`
	Quantity string `form:"quantity"`
}

// ParseDecimal parses a quantity given as text.
func ParseDecimal(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, invalidDecimal(field, raw)
	}
	return d, nil
}
