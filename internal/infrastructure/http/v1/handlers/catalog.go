package handlers

import (
	"github.com/gin-gonic/gin"

	"depot/internal/domain/registers/stock"
	"depot/internal/infrastructure/http/v1/dto"
)

// CatalogHandler lists base units and packaging types.
type CatalogHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(base *BaseHandler, service *stock.Service) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, service: service}
}

// ListUnits handles GET /units
func (h *CatalogHandler) ListUnits(c *gin.Context) {
	units, err := h.service.Units(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.UnitResponse, len(units))
	for i, u := range units {
		items[i] = dto.FromUnit(u)
	}
	h.OK(c, dto.NewListResponse(items))
}

// ListPackagingTypes handles GET /packaging-types
func (h *CatalogHandler) ListPackagingTypes(c *gin.Context) {
	types, err := h.service.PackagingTypes(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.PackagingTypeResponse, len(types))
	for i, p := range types {
		items[i] = dto.FromPackagingType(p)
	}
	h.OK(c, dto.NewListResponse(items))
}
