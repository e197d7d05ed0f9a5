package handlers

import (
	"github.com/gin-gonic/gin"

	"depot/internal/domain/registers/stock"
	"depot/internal/domain/transfer"
	"depot/internal/infrastructure/http/v1/dto"
)

// TransferHandler handles warehouse transfers.
type TransferHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(base *BaseHandler, service *stock.Service) *TransferHandler {
	return &TransferHandler{BaseHandler: base, service: service}
}

// Validate handles POST /transfers/validate
func (h *TransferHandler) Validate(c *gin.Context) {
	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	report, err := h.service.ValidateTransfer(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.TransferValidationResponse{Valid: report.OK(), Report: report})
}

// Create handles POST /transfers
func (h *TransferHandler) Create(c *gin.Context) {
	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.CreateTransfer(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromTransferResult(result))
}

// Get handles GET /transfers/:id
func (h *TransferHandler) Get(c *gin.Context) {
	transferID, err := dto.ParseID("id", c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}

	t, err := h.service.GetTransfer(c.Request.Context(), transferID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromTransfer(t))
}

// ChangeStatus handles POST /transfers/:id/status
func (h *TransferHandler) ChangeStatus(c *gin.Context) {
	transferID, err := dto.ParseID("id", c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	var req dto.TransferStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.ChangeTransferStatus(c.Request.Context(), transferID, transfer.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromTransferResult(result))
}
