package handlers

import (
	"github.com/gin-gonic/gin"

	"depot/internal/core/id"
	"depot/internal/domain/registers/stock"
	"depot/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles lot queries, receipts, removals and repacks.
type InventoryHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *stock.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service}
}

// ListLots handles GET /inventory/lots
func (h *InventoryHandler) ListLots(c *gin.Context) {
	var q dto.LotQuery
	if !h.BindQuery(c, &q) {
		return
	}
	packagingTypeID, err := dto.ParseOptionalID("packagingTypeId", q.PackagingTypeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	lots, err := h.service.Lots(c.Request.Context(), id.MustParse(q.VariantID), id.MustParse(q.WarehouseID), packagingTypeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(dto.FromLots(lots)))
}

// ListGroups handles GET /inventory/lots/groups
func (h *InventoryHandler) ListGroups(c *gin.Context) {
	var q dto.LotQuery
	if !h.BindQuery(c, &q) {
		return
	}

	groups, err := h.service.Groups(c.Request.Context(), id.MustParse(q.VariantID), id.MustParse(q.WarehouseID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(dto.FromDateGroups(groups)))
}

// Status handles GET /inventory/lots/:id/status
func (h *InventoryHandler) Status(c *gin.Context) {
	lotID, err := dto.ParseID("id", c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	status, err := h.service.LotStatus(c.Request.Context(), lotID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromLotStatus(status))
}

// History handles GET /inventory/lots/:id/history
func (h *InventoryHandler) History(c *gin.Context) {
	lotID, err := dto.ParseID("id", c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.service.History(c.Request.Context(), lotID, h.ParseIntQuery(c, "limit", 50))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(dto.FromJournal(entries)))
}

// Receive handles POST /inventory/lots
func (h *InventoryHandler) Receive(c *gin.Context) {
	var req dto.ReceiveLotRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	lot, err := h.service.ReceiveLot(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromLot(*lot))
}

// Remove handles DELETE /inventory/lots/:id
func (h *InventoryHandler) Remove(c *gin.Context) {
	lotID, err := dto.ParseID("id", c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.RemoveLot(c.Request.Context(), lotID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ValidateRepack handles POST /inventory/repack/validate
func (h *InventoryHandler) ValidateRepack(c *gin.Context) {
	var req dto.RepackRequest
	if !h.BindJSON(c, &req) {
		return
	}

	preview, err := h.service.ValidateRepack(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, preview)
}

// Repack handles POST /inventory/repack
func (h *InventoryHandler) Repack(c *gin.Context) {
	var req dto.RepackRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Repack(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.RepackResponse{
		UpdatedSourceLot:     dto.FromLot(result.Source),
		NewOrMergedTargetLot: dto.FromLot(result.Target),
		TargetCreated:        result.TargetCreated,
		Converted:            result.Converted,
		Produced:             result.Produced,
	})
}
