package handlers

import (
	"github.com/gin-gonic/gin"

	"depot/internal/domain/registers/stock"
	"depot/internal/infrastructure/http/v1/dto"
)

// SettingsHandler reads and updates the stock status thresholds.
type SettingsHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(base *BaseHandler, service *stock.Service) *SettingsHandler {
	return &SettingsHandler{BaseHandler: base, service: service}
}

// GetInventory handles GET /settings/inventory
func (h *SettingsHandler) GetInventory(c *gin.Context) {
	cfg, err := h.service.Thresholds(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromThresholds(cfg))
}

// UpdateInventory handles PUT /settings/inventory
func (h *SettingsHandler) UpdateInventory(c *gin.Context) {
	var req dto.UpdateThresholdsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cfg := req.ToConfig()
	if err := h.service.UpdateThresholds(c.Request.Context(), cfg); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromThresholds(cfg))
}
