// Package stockstatus derives the stock level label of a lot from
// configurable thresholds expressed in base units.
package stockstatus

import (
	"strings"

	"github.com/shopspring/decimal"

	"depot/internal/core/apperror"
	"depot/internal/domain/catalogs/packaging"
	"depot/internal/domain/settings"
)

// Status is the derived stock level.
type Status string

const (
	InStock    Status = "In Stock"
	LowStock   Status = "Low Stock"
	OutOfStock Status = "Out of Stock"
)

// Settings keys in the inventory category.
const (
	KeyLowStockThreshold   = "lowStockThreshold"
	KeyOutOfStockThreshold = "outOfStockThreshold"
)

// ThresholdConfig holds thresholds in base units. A nil Low disables the
// Low Stock band.
type ThresholdConfig struct {
	Low *decimal.Decimal `json:"lowStockThreshold,omitempty"`
	Out decimal.Decimal  `json:"outOfStockThreshold"`
}

// DefaultThresholds applies when nothing is configured: only an empty lot is
// out of stock.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{Out: decimal.Zero}
}

// Validate rejects negative thresholds and a Low band below Out.
func (c ThresholdConfig) Validate() error {
	if c.Out.IsNegative() {
		return apperror.NewValidation("outOfStockThreshold must not be negative").
			WithDetail("field", KeyOutOfStockThreshold)
	}
	if c.Low != nil && c.Low.LessThan(c.Out) {
		return apperror.NewValidation("lowStockThreshold must not be below outOfStockThreshold").
			WithDetail("field", KeyLowStockThreshold)
	}
	return nil
}

// Settings renders the config as inventory settings. An unset Low is stored
// as an empty value.
func (c ThresholdConfig) Settings() []settings.Setting {
	low := ""
	if c.Low != nil {
		low = c.Low.String()
	}
	return []settings.Setting{
		{Category: settings.CategoryInventory, Key: KeyLowStockThreshold, Value: low},
		{Category: settings.CategoryInventory, Key: KeyOutOfStockThreshold, Value: c.Out.String()},
	}
}

// DeriveStatus converts quantity into base units and compares it against
// the thresholds: at or below Out is Out of Stock, at or below Low is Low
// Stock, anything else is In Stock.
func DeriveStatus(quantity decimal.Decimal, pkg packaging.PackagingType, cfg ThresholdConfig) (Status, error) {
	if err := pkg.ValidateFactor(); err != nil {
		return "", err
	}
	base := pkg.ToBaseUnits(quantity)
	switch {
	case base.LessThanOrEqual(cfg.Out):
		return OutOfStock, nil
	case cfg.Low != nil && base.LessThanOrEqual(*cfg.Low):
		return LowStock, nil
	default:
		return InStock, nil
	}
}

// ThresholdsFromSettings reads the inventory category. Missing or empty keys
// fall back to DefaultThresholds; unparsable values are validation errors.
// The result is not validated: a stored Low below Out only leaves the Low
// band empty, so readers can still derive a status.
func ThresholdsFromSettings(list []settings.Setting) (ThresholdConfig, error) {
	cfg := DefaultThresholds()

	if raw, ok := settings.Lookup(list, KeyOutOfStockThreshold); ok && strings.TrimSpace(raw) != "" {
		v, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return cfg, apperror.NewValidation("outOfStockThreshold is not a number").
				WithDetail("value", raw).WithCause(err)
		}
		cfg.Out = v
	}
	if raw, ok := settings.Lookup(list, KeyLowStockThreshold); ok && strings.TrimSpace(raw) != "" {
		v, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return cfg, apperror.NewValidation("lowStockThreshold is not a number").
				WithDetail("value", raw).WithCause(err)
		}
		cfg.Low = &v
	}
	return cfg, nil
}
