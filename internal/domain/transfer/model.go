// Package transfer moves lots between warehouses. A transfer is validated as
// a whole, with every problem reported at once, and only moves stock when it
// leaves Pending for InTransit or Completed.
package transfer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"depot/internal/core/apperror"
	"depot/internal/core/entity"
	"depot/internal/core/id"
)

// Status is the transfer lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInTransit Status = "in_transit"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusInTransit, StatusCompleted, StatusCancelled},
	StatusInTransit: {StatusCompleted, StatusCancelled},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// MovesStock reports whether entering s from Pending moves inventory.
func (s Status) MovesStock() bool {
	return s == StatusInTransit || s == StatusCompleted
}

// CanTransitionTo reports whether the lifecycle allows s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Line requests quantity from one lot of the source warehouse.
type Line struct {
	InventoryID id.ID           `db:"inventory_id" json:"inventoryId"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
}

// Transfer moves stock from SourceWarehouseID to DestinationWarehouseID.
type Transfer struct {
	entity.Document

	SourceWarehouseID      id.ID  `db:"source_warehouse_id" json:"sourceWarehouseId"`
	DestinationWarehouseID id.ID  `db:"destination_warehouse_id" json:"destinationWarehouseId"`
	Status                 Status `db:"status" json:"status"`

	ShippedAt   *time.Time `db:"shipped_at" json:"shippedAt,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelledAt,omitempty"`

	Lines []Line `db:"-" json:"lines"`
}

// New creates a Pending transfer.
func New(sourceWarehouseID, destinationWarehouseID id.ID, lines []Line) *Transfer {
	return &Transfer{
		Document:               entity.NewDocument(),
		SourceWarehouseID:      sourceWarehouseID,
		DestinationWarehouseID: destinationWarehouseID,
		Status:                 StatusPending,
		Lines:                  lines,
	}
}

// Validate checks field-level invariants only. Stock checks belong to Validate
// in planner.go, which needs the referenced lots.
func (t *Transfer) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(t.SourceWarehouseID) {
		return apperror.NewValidation("source warehouse is required").
			WithDetail("field", "sourceWarehouseId")
	}
	if id.IsNil(t.DestinationWarehouseID) {
		return apperror.NewValidation("destination warehouse is required").
			WithDetail("field", "destinationWarehouseId")
	}
	if !t.Status.IsValid() {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(t.Status))
	}
	return nil
}

// InventoryIDs returns the distinct lots referenced by the lines, in line order.
func (t *Transfer) InventoryIDs() []id.ID {
	seen := make(map[id.ID]bool, len(t.Lines))
	out := make([]id.ID, 0, len(t.Lines))
	for _, l := range t.Lines {
		if !seen[l.InventoryID] {
			seen[l.InventoryID] = true
			out = append(out, l.InventoryID)
		}
	}
	return out
}

func (t *Transfer) stamp(next Status, at time.Time) {
	switch next {
	case StatusInTransit:
		t.ShippedAt = &at
	case StatusCompleted:
		if t.ShippedAt == nil {
			t.ShippedAt = &at
		}
		t.CompletedAt = &at
	case StatusCancelled:
		t.CancelledAt = &at
	}
	t.Status = next
	t.Touch()
}
