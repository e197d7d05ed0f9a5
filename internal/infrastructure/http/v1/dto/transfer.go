package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"depot/internal/core/id"
	"depot/internal/domain/registers/stock"
	"depot/internal/domain/transfer"
)

// TransferLineRequest requests quantity from one source lot.
type TransferLineRequest struct {
	InventoryID string          `json:"inventoryId" binding:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// TransferRequest creates or validates a transfer. Line quantities are
// checked by the transfer rules so every bad line is reported at once.
type TransferRequest struct {
	SourceWarehouseID      string                `json:"sourceWarehouseId" binding:"required,uuid"`
	DestinationWarehouseID string                `json:"destinationWarehouseId" binding:"required,uuid"`
	Status                 string                `json:"status" binding:"omitempty,oneof=pending in_transit completed"`
	Comment                string                `json:"comment" binding:"max=1000"`
	Lines                  []TransferLineRequest `json:"lines" binding:"dive"`
}

// ToInput converts the request into a service input.
func (r TransferRequest) ToInput() stock.TransferInput {
	in := stock.TransferInput{
		SourceWarehouseID:      id.MustParse(r.SourceWarehouseID),
		DestinationWarehouseID: id.MustParse(r.DestinationWarehouseID),
		Status:                 transfer.Status(r.Status),
		Comment:                r.Comment,
		Lines:                  make([]transfer.Line, len(r.Lines)),
	}
	for i, l := range r.Lines {
		in.Lines[i] = transfer.Line{InventoryID: id.MustParse(l.InventoryID), Quantity: l.Quantity}
	}
	return in
}

// TransferStatusRequest moves a transfer to another status.
type TransferStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in_transit completed cancelled"`
}

// TransferLineResponse is one stored transfer line.
type TransferLineResponse struct {
	InventoryID string          `json:"inventoryId"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// TransferResponse represents a transfer.
type TransferResponse struct {
	ID                     string                 `json:"id"`
	Number                 string                 `json:"number"`
	Date                   time.Time              `json:"date"`
	Comment                string                 `json:"comment,omitempty"`
	SourceWarehouseID      string                 `json:"sourceWarehouseId"`
	DestinationWarehouseID string                 `json:"destinationWarehouseId"`
	Status                 string                 `json:"status"`
	ShippedAt              *time.Time             `json:"shippedAt,omitempty"`
	CompletedAt            *time.Time             `json:"completedAt,omitempty"`
	CancelledAt            *time.Time             `json:"cancelledAt,omitempty"`
	Version                int                    `json:"version"`
	Lines                  []TransferLineResponse `json:"lines"`
}

// FromTransfer converts a transfer to its response DTO.
func FromTransfer(t *transfer.Transfer) TransferResponse {
	resp := TransferResponse{
		ID:                     t.ID.String(),
		Number:                 t.Number,
		Date:                   t.Date,
		Comment:                t.Comment,
		SourceWarehouseID:      t.SourceWarehouseID.String(),
		DestinationWarehouseID: t.DestinationWarehouseID.String(),
		Status:                 string(t.Status),
		ShippedAt:              t.ShippedAt,
		CompletedAt:            t.CompletedAt,
		CancelledAt:            t.CancelledAt,
		Version:                t.Version,
		Lines:                  make([]TransferLineResponse, len(t.Lines)),
	}
	for i, l := range t.Lines {
		resp.Lines[i] = TransferLineResponse{InventoryID: l.InventoryID.String(), Quantity: l.Quantity}
	}
	return resp
}

// TransferResultResponse is a transfer after a write.
type TransferResultResponse struct {
	Transfer TransferResponse       `json:"transfer"`
	Commit   *transfer.CommitResult `json:"commit,omitempty"`
}

// FromTransferResult converts a write result.
func FromTransferResult(r *stock.TransferResult) TransferResultResponse {
	return TransferResultResponse{
		Transfer: FromTransfer(r.Transfer),
		Commit:   r.Commit,
	}
}

// TransferValidationResponse is a dry-run report.
type TransferValidationResponse struct {
	Valid  bool             `json:"valid"`
	Report *transfer.Report `json:"report"`
}
