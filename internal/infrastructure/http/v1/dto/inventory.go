package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
	"depot/internal/domain/inventory"
	"depot/internal/domain/registers/stock"
)

// DateLayout is the wire format of production dates.
const DateLayout = "2006-01-02"

// --- Lots ---

// LotResponse represents one inventory lot.
type LotResponse struct {
	ID              string          `json:"id"`
	VariantID       string          `json:"variantId"`
	ProductID       string          `json:"productId"`
	WarehouseID     string          `json:"warehouseId"`
	PackagingTypeID string          `json:"packagingTypeId"`
	Quantity        decimal.Decimal `json:"quantity"`
	ProductionDate  *string         `json:"productionDate"`
	Removed         bool            `json:"removed"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// FromLot converts a lot to its response DTO.
func FromLot(l inventory.Lot) LotResponse {
	return LotResponse{
		ID:              l.ID.String(),
		VariantID:       l.VariantID.String(),
		ProductID:       l.ProductID.String(),
		WarehouseID:     l.WarehouseID.String(),
		PackagingTypeID: l.PackagingTypeID.String(),
		Quantity:        l.Quantity,
		ProductionDate:  formatDate(l.ProductionDate),
		Removed:         l.DeletionMark,
		Version:         l.Version,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// FromLots converts a slice of lots.
func FromLots(lots []inventory.Lot) []LotResponse {
	out := make([]LotResponse, len(lots))
	for i, l := range lots {
		out[i] = FromLot(l)
	}
	return out
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// LotQuery selects lots of one variant at one warehouse.
type LotQuery struct {
	VariantID       string `form:"variantId" binding:"required,uuid"`
	WarehouseID     string `form:"warehouseId" binding:"required,uuid"`
	PackagingTypeID string `form:"packagingTypeId" binding:"omitempty,uuid"`
}

// PackagingGroupResponse is the lots of one packaging type within a date group.
type PackagingGroupResponse struct {
	PackagingTypeID string          `json:"packagingTypeId"`
	Total           decimal.Decimal `json:"total"`
	Lots            []LotResponse   `json:"lots"`
}

// DateGroupResponse is every lot sharing a production date.
type DateGroupResponse struct {
	ProductionDate *string                  `json:"productionDate"`
	Packaging      []PackagingGroupResponse `json:"packaging"`
}

// FromDateGroups converts the grouped breakdown.
func FromDateGroups(groups []inventory.DateGroup) []DateGroupResponse {
	out := make([]DateGroupResponse, len(groups))
	for i, g := range groups {
		dg := DateGroupResponse{
			ProductionDate: formatDate(g.ProductionDate),
			Packaging:      make([]PackagingGroupResponse, len(g.Packaging)),
		}
		for j, p := range g.Packaging {
			dg.Packaging[j] = PackagingGroupResponse{
				PackagingTypeID: p.PackagingTypeID.String(),
				Total:           p.Total,
				Lots:            FromLots(p.Lots),
			}
		}
		out[i] = dg
	}
	return out
}

// LotStatusResponse is a lot with its derived stock level.
type LotStatusResponse struct {
	Lot          LotResponse        `json:"lot"`
	BaseQuantity decimal.Decimal    `json:"baseQuantity"`
	Status       string             `json:"status"`
	Thresholds   ThresholdsResponse `json:"thresholds"`
}

// FromLotStatus converts a derived status.
func FromLotStatus(s *stock.LotStatus) LotStatusResponse {
	return LotStatusResponse{
		Lot:          FromLot(s.Lot),
		BaseQuantity: s.BaseQuantity,
		Status:       string(s.Status),
		Thresholds:   ThresholdsResponse{Low: s.Thresholds.Low, Out: s.Thresholds.Out},
	}
}

// ReceiveLotRequest records stock arriving at a warehouse.
type ReceiveLotRequest struct {
	VariantID       string          `json:"variantId" binding:"omitempty,uuid"`
	ProductID       string          `json:"productId" binding:"required,uuid"`
	WarehouseID     string          `json:"warehouseId" binding:"required,uuid"`
	PackagingTypeID string          `json:"packagingTypeId" binding:"required,uuid"`
	Quantity        decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	ProductionDate  *string         `json:"productionDate" binding:"omitempty,datetime=2006-01-02"`
}

// ToInput converts the request into a service input.
func (r ReceiveLotRequest) ToInput() (stock.ReceiveInput, error) {
	in := stock.ReceiveInput{
		ProductID:       id.MustParse(r.ProductID),
		WarehouseID:     id.MustParse(r.WarehouseID),
		PackagingTypeID: id.MustParse(r.PackagingTypeID),
		Quantity:        r.Quantity,
	}
	if r.VariantID != "" {
		in.VariantID = id.MustParse(r.VariantID)
	}
	if r.ProductionDate != nil {
		d, err := time.Parse(DateLayout, *r.ProductionDate)
		if err != nil {
			return in, apperror.NewValidation("invalid productionDate").WithDetail("field", "productionDate")
		}
		in.ProductionDate = &d
	}
	return in, nil
}

// JournalEntryResponse is one applied change set touching a lot.
type JournalEntryResponse struct {
	ID        string        `json:"id"`
	Before    []LotResponse `json:"before"`
	After     []LotResponse `json:"after"`
	CreatedAt time.Time     `json:"createdAt"`
}

// FromJournal converts lot history.
func FromJournal(entries []inventory.JournalEntry) []JournalEntryResponse {
	out := make([]JournalEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = JournalEntryResponse{
			ID:        e.ID.String(),
			Before:    FromLots(e.Before),
			After:     FromLots(e.After),
			CreatedAt: e.CreatedAt,
		}
	}
	return out
}

// --- Repack ---

// RepackRequest converts part of a lot into another packaging type.
type RepackRequest struct {
	InventoryID           string          `json:"inventoryId" binding:"required,uuid"`
	TargetPackagingTypeID string          `json:"targetPackagingTypeId" binding:"required,uuid"`
	Quantity              decimal.Decimal `json:"quantity"`
}

// ToInput converts the request into a service input. Quantity is checked by
// the repack rules so that a zero quantity reports INVALID_QUANTITY.
func (r RepackRequest) ToInput() stock.RepackInput {
	return stock.RepackInput{
		InventoryID:           id.MustParse(r.InventoryID),
		TargetPackagingTypeID: id.MustParse(r.TargetPackagingTypeID),
		Quantity:              r.Quantity,
	}
}

// RepackResponse is a committed repack.
type RepackResponse struct {
	UpdatedSourceLot     LotResponse     `json:"updatedSourceLot"`
	NewOrMergedTargetLot LotResponse     `json:"newOrMergedTargetLot"`
	TargetCreated        bool            `json:"targetCreated"`
	Converted            decimal.Decimal `json:"converted"`
	Produced             decimal.Decimal `json:"produced"`
}
