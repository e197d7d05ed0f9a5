package transfer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
	"depot/internal/domain/inventory"
)

// Violation is one problem found in a transfer. Line numbers are 1-based;
// structural problems carry no line.
type Violation struct {
	Code            string           `json:"code"`
	Message         string           `json:"message"`
	Line            int              `json:"line,omitempty"`
	Lines           []int            `json:"lines,omitempty"`
	InventoryID     *id.ID           `json:"inventoryId,omitempty"`
	VariantID       *id.ID           `json:"variantId,omitempty"`
	PackagingTypeID *id.ID           `json:"packagingTypeId,omitempty"`
	Requested       *decimal.Decimal `json:"requested,omitempty"`
	Available       *decimal.Decimal `json:"available,omitempty"`
}

// Aggregate is the requested quantity per variant and packaging type.
type Aggregate struct {
	VariantID       id.ID           `json:"variantId"`
	PackagingTypeID id.ID           `json:"packagingTypeId"`
	Quantity        decimal.Decimal `json:"quantity"`
}

// Report is the outcome of Validate.
type Report struct {
	Violations []Violation `json:"violations"`
	Totals     []Aggregate `json:"totals"`
}

// OK reports whether the transfer passed.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Err converts a failed report into a TRANSFER_VALIDATION_FAILED error
// carrying every violation. Returns nil when OK.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return apperror.NewBusinessRule(apperror.CodeTransferInvalid,
		fmt.Sprintf("Transfer has %d problem(s)", len(r.Violations))).
		WithDetail("violations", r.Violations)
}

type requested struct {
	inventoryID id.ID
	lines       []int
	quantity    decimal.Decimal
}

// Validate checks a transfer against the lots its lines reference and
// accumulates every problem:
//   - SAME_WAREHOUSE when source and destination match
//   - EMPTY_TRANSFER when there are no lines
//   - INVALID_QUANTITY per non-positive line
//   - LINE_EXCEEDS_AVAILABLE per lot that is missing, removed, outside the
//     source warehouse, or asked for more than it holds
//
// Lines naming the same lot are summed before the availability check.
func Validate(t *Transfer, lots []inventory.Lot) Report {
	var r Report

	if t.SourceWarehouseID == t.DestinationWarehouseID {
		r.Violations = append(r.Violations, Violation{
			Code:    apperror.CodeSameWarehouse,
			Message: "Source and destination warehouse must differ",
		})
	}
	if len(t.Lines) == 0 {
		r.Violations = append(r.Violations, Violation{
			Code:    apperror.CodeEmptyTransfer,
			Message: "Transfer has no lines",
		})
		return r
	}

	byID := make(map[id.ID]inventory.Lot, len(lots))
	for _, l := range lots {
		byID[l.ID] = l
	}

	var order []*requested
	index := map[id.ID]*requested{}
	for i, line := range t.Lines {
		lineNo := i + 1
		if !line.Quantity.IsPositive() {
			q := line.Quantity
			inv := line.InventoryID
			r.Violations = append(r.Violations, Violation{
				Code:        apperror.CodeInvalidQuantity,
				Message:     "Line quantity must be greater than zero",
				Line:        lineNo,
				InventoryID: &inv,
				Requested:   &q,
			})
			continue
		}
		req, ok := index[line.InventoryID]
		if !ok {
			req = &requested{inventoryID: line.InventoryID, quantity: decimal.Zero}
			index[line.InventoryID] = req
			order = append(order, req)
		}
		req.lines = append(req.lines, lineNo)
		req.quantity = req.quantity.Add(line.Quantity)
	}

	totals := map[[2]id.ID]int{}
	for _, req := range order {
		lot, found := byID[req.inventoryID]
		if v, bad := checkLine(t, req, lot, found); bad {
			r.Violations = append(r.Violations, v)
			continue
		}
		key := [2]id.ID{lot.VariantID, lot.PackagingTypeID}
		if i, ok := totals[key]; ok {
			r.Totals[i].Quantity = r.Totals[i].Quantity.Add(req.quantity)
			continue
		}
		totals[key] = len(r.Totals)
		r.Totals = append(r.Totals, Aggregate{
			VariantID:       lot.VariantID,
			PackagingTypeID: lot.PackagingTypeID,
			Quantity:        req.quantity,
		})
	}
	return r
}

func checkLine(t *Transfer, req *requested, lot inventory.Lot, found bool) (Violation, bool) {
	inv := req.inventoryID
	qty := req.quantity
	v := Violation{
		Code:        apperror.CodeLineExceedsAvailable,
		Line:        req.lines[0],
		InventoryID: &inv,
		Requested:   &qty,
	}
	if len(req.lines) > 1 {
		v.Lines = req.lines
	}

	available := decimal.Zero
	switch {
	case !found || !lot.IsLive():
		v.Message = "Lot does not exist"
	case lot.WarehouseID != t.SourceWarehouseID:
		v.Message = "Lot is not stored at the source warehouse"
	case qty.GreaterThan(lot.Quantity):
		available = lot.Quantity
		v.Message = fmt.Sprintf("Requested %s but only %s available", qty, lot.Quantity)
	default:
		return Violation{}, false
	}

	if found {
		variant, pkg := lot.VariantID, lot.PackagingTypeID
		v.VariantID = &variant
		v.PackagingTypeID = &pkg
	}
	v.Available = &available
	return v, true
}

// CommitResult describes what a status change did.
type CommitResult struct {
	From    Status               `json:"from"`
	To      Status               `json:"to"`
	Moved   bool                 `json:"moved"`
	Changes inventory.LotChanges `json:"-"`
}

// Commit moves t to next. Stock moves only when a Pending transfer enters
// InTransit or Completed: source lots are debited and destination lots are
// credited using the merge-or-create rule (variant, packaging type and
// production date at the destination). InTransit -> Completed moves nothing
// more, and Cancelled reverses nothing because Pending never reserved stock.
//
// lots must hold the referenced source lots and the live lots at the
// destination warehouse for the same variants. t is only modified on success.
func Commit(t *Transfer, next Status, lots []inventory.Lot, now time.Time) (CommitResult, error) {
	res := CommitResult{From: t.Status, To: next}
	if !t.Status.CanTransitionTo(next) {
		return res, apperror.NewInvalidStatusTransition("transfer", t.Status, next).
			WithDetail("transfer_id", t.ID)
	}

	if t.Status == StatusPending && next.MovesStock() {
		if err := Validate(t, lots).Err(); err != nil {
			return res, err
		}
		ledger := inventory.NewLedger(lots)
		for _, line := range t.Lines {
			src, err := ledger.Debit(line.InventoryID, line.Quantity)
			if err != nil {
				return res, err
			}
			if _, _, err := ledger.Credit(src, t.DestinationWarehouseID, src.PackagingTypeID, src.ProductionDate, line.Quantity); err != nil {
				return res, err
			}
		}
		res.Changes = ledger.Changes()
		res.Moved = true
	}

	t.stamp(next, now.UTC())
	return res, nil
}
