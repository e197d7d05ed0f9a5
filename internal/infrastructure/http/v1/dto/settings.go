package dto

import (
	"github.com/shopspring/decimal"

	"depot/internal/core/apperror"
	"depot/internal/domain/stockstatus"
)

// ThresholdsResponse represents the stock status thresholds in base units.
type ThresholdsResponse struct {
	Low *decimal.Decimal `json:"lowStockThreshold"`
	Out decimal.Decimal  `json:"outOfStockThreshold"`
}

// FromThresholds converts a threshold config.
func FromThresholds(c stockstatus.ThresholdConfig) ThresholdsResponse {
	return ThresholdsResponse{Low: c.Low, Out: c.Out}
}

// UpdateThresholdsRequest replaces the stock status thresholds. An absent
// lowStockThreshold disables the Low Stock band.
type UpdateThresholdsRequest struct {
	Low *decimal.Decimal `json:"lowStockThreshold" binding:"omitempty,decimal_gte0"`
	Out decimal.Decimal  `json:"outOfStockThreshold" binding:"decimal_gte0"`
}

// ToConfig converts the request into a threshold config.
func (r UpdateThresholdsRequest) ToConfig() stockstatus.ThresholdConfig {
	return stockstatus.ThresholdConfig{Low: r.Low, Out: r.Out}
}

func invalidDecimal(field, raw string) error {
	return apperror.NewValidation("invalid "+field).
		WithDetail("field", field).
		WithDetail("value", raw)
}
