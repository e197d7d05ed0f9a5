package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"depot/internal/core/id"
	"depot/internal/domain/registers/stock"
	"depot/internal/infrastructure/http/v1/dto"
)

// ConversionHandler answers packaging conversion questions.
type ConversionHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewConversionHandler creates a new conversion handler.
func NewConversionHandler(base *BaseHandler, service *stock.Service) *ConversionHandler {
	return &ConversionHandler{BaseHandler: base, service: service}
}

// Equivalent handles GET /conversion/equivalent
func (h *ConversionHandler) Equivalent(c *gin.Context) {
	var q dto.EquivalentQuery
	if !h.BindQuery(c, &q) {
		return
	}
	quantity, err := dto.ParseDecimal("quantity", q.Quantity)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Equivalent(c.Request.Context(), quantity, id.MustParse(q.Source), id.MustParse(q.Target))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Step handles GET /conversion/step
func (h *ConversionHandler) Step(c *gin.Context) {
	var q dto.StepQuery
	if !h.BindQuery(c, &q) {
		return
	}

	var quantity *decimal.Decimal
	if q.Quantity != "" {
		d, err := dto.ParseDecimal("quantity", q.Quantity)
		if err != nil {
			h.Error(c, err)
			return
		}
		quantity = &d
	}

	result, err := h.service.Step(c.Request.Context(), id.MustParse(q.Source), id.MustParse(q.Target), quantity)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}
