package stock

import (
	"context"
	"fmt"

	"depot/internal/core/apperror"
	"depot/internal/core/events"
	"depot/internal/core/id"
	"depot/internal/core/numerator"
	"depot/internal/domain/inventory"
	"depot/internal/domain/transfer"
	"depot/pkg/logger"
)

// TransferNumberPrefix prefixes transfer numbers (TRF-2026-00001).
const TransferNumberPrefix = "TRF"

// TransferInput describes a new transfer. Status is the initial status;
// empty means Pending. InTransit or Completed move stock immediately.
type TransferInput struct {
	SourceWarehouseID      id.ID
	DestinationWarehouseID id.ID
	Status                 transfer.Status
	Comment                string
	Lines                  []transfer.Line
}

// TransferResult is a transfer after a write, with what the write moved.
type TransferResult struct {
	Transfer *transfer.Transfer     `json:"transfer"`
	Commit   *transfer.CommitResult `json:"commit,omitempty"`
}

func (in TransferInput) build() *transfer.Transfer {
	t := transfer.New(in.SourceWarehouseID, in.DestinationWarehouseID, in.Lines)
	t.Comment = in.Comment
	return t
}

// ValidateTransfer reports every problem with a prospective transfer.
func (s *Service) ValidateTransfer(ctx context.Context, in TransferInput) (*transfer.Report, error) {
	t := in.build()
	lots, err := s.transferLots(ctx, t, s.repos.Lots.Find)
	if err != nil {
		return nil, err
	}
	report := transfer.Validate(t, lots)
	return &report, nil
}

// CreateTransfer validates and stores a transfer. A transfer created directly
// InTransit or Completed moves its stock in the same transaction.
func (s *Service) CreateTransfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	initial := in.Status
	if initial == "" {
		initial = transfer.StatusPending
	}
	if initial != transfer.StatusPending && !transfer.StatusPending.CanTransitionTo(initial) {
		return nil, apperror.NewInvalidStatusTransition("transfer", transfer.StatusPending, initial)
	}

	var result TransferResult
	err := s.inTx(ctx, "create_transfer", func(ctx context.Context) error {
		t := in.build()
		if err := t.Validate(ctx); err != nil {
			return err
		}
		lots, err := s.transferLots(ctx, t, s.repos.Lots.FindForUpdate)
		if err != nil {
			return err
		}
		if err := transfer.Validate(t, lots).Err(); err != nil {
			return err
		}

		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(TransferNumberPrefix), numerator.DefaultOptions(), t.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		t.Number = number

		if err := s.repos.Transfers.Create(ctx, t); err != nil {
			return fmt.Errorf("create transfer: %w", err)
		}
		if err := s.publish(ctx, events.AggregateTransfer, t.ID, events.EventTransferCreated, t); err != nil {
			return err
		}

		result = TransferResult{Transfer: t}
		if initial == transfer.StatusPending {
			return nil
		}
		commit, err := s.advance(ctx, t, initial, lots)
		if err != nil {
			return err
		}
		result.Commit = commit
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transfer created",
		"transfer_id", result.Transfer.ID,
		"number", result.Transfer.Number,
		"status", result.Transfer.Status,
		"lines", len(result.Transfer.Lines),
	)
	return &result, nil
}

// ChangeTransferStatus moves a transfer through its lifecycle, moving stock
// when it leaves Pending for InTransit or Completed.
func (s *Service) ChangeTransferStatus(ctx context.Context, transferID id.ID, next transfer.Status) (*TransferResult, error) {
	if !next.IsValid() {
		return nil, apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(next))
	}

	var result TransferResult
	err := s.inTx(ctx, "transfer_status", func(ctx context.Context) error {
		t, err := s.repos.Transfers.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}

		var lots []inventory.Lot
		if t.Status == transfer.StatusPending && next.MovesStock() {
			if lots, err = s.transferLots(ctx, t, s.repos.Lots.FindForUpdate); err != nil {
				return err
			}
		}

		commit, err := s.advance(ctx, t, next, lots)
		if err != nil {
			return err
		}
		result = TransferResult{Transfer: t, Commit: commit}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transfer status changed",
		"transfer_id", transferID,
		"from", result.Commit.From,
		"to", result.Commit.To,
		"moved", result.Commit.Moved,
	)
	return &result, nil
}

// GetTransfer loads a transfer with its lines.
func (s *Service) GetTransfer(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return s.repos.Transfers.GetByID(ctx, transferID)
}

func (s *Service) advance(ctx context.Context, t *transfer.Transfer, next transfer.Status, lots []inventory.Lot) (*transfer.CommitResult, error) {
	expected := t.Version
	commit, err := transfer.Commit(t, next, lots, s.now())
	if err != nil {
		return nil, err
	}
	if commit.Moved {
		if err := s.repos.Lots.ApplyLotChanges(ctx, commit.Changes.Changes, commit.Changes.NewLots); err != nil {
			return nil, err
		}
		if err := s.publish(ctx, events.AggregateLot, t.ID, events.EventLotsChanged, map[string]any{
			"operation":  "transfer",
			"transferId": t.ID,
			"changes":    commit.Changes,
		}); err != nil {
			return nil, err
		}
	}
	if err := s.repos.Transfers.UpdateStatus(ctx, t, expected); err != nil {
		return nil, err
	}
	if err := s.publish(ctx, events.AggregateTransfer, t.ID, events.EventTransferStatusChanged, commit); err != nil {
		return nil, err
	}
	return &commit, nil
}

type lotFinder func(ctx context.Context, filter inventory.LotFilter) ([]inventory.Lot, error)

// transferLots loads the lots a transfer references plus the destination
// lots its stock may merge into.
func (s *Service) transferLots(ctx context.Context, t *transfer.Transfer, find lotFinder) ([]inventory.Lot, error) {
	ids := t.InventoryIDs()
	if len(ids) == 0 {
		return nil, nil
	}
	source, err := find(ctx, inventory.LotFilter{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("load transfer lots: %w", err)
	}

	seen := map[id.ID]bool{}
	var variants []id.ID
	for _, l := range source {
		if !seen[l.VariantID] {
			seen[l.VariantID] = true
			variants = append(variants, l.VariantID)
		}
	}
	if len(variants) == 0 || id.IsNil(t.DestinationWarehouseID) {
		return source, nil
	}

	dest, err := find(ctx, inventory.LotFilter{
		VariantIDs:  variants,
		WarehouseID: &t.DestinationWarehouseID,
	})
	if err != nil {
		return nil, fmt.Errorf("load destination lots: %w", err)
	}

	out := append([]inventory.Lot{}, source...)
	have := make(map[id.ID]bool, len(source))
	for _, l := range source {
		have[l.ID] = true
	}
	for _, l := range dest {
		if !have[l.ID] {
			out = append(out, l)
		}
	}
	return out, nil
}
