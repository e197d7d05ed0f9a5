package stock

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"depot/internal/core/events"
	"depot/internal/core/id"
	"depot/internal/domain/catalogs/packaging"
	"depot/internal/domain/conversion"
	"depot/internal/domain/inventory"
	"depot/internal/domain/repack"
	"depot/pkg/logger"
)

// RepackInput asks to convert quantity units of a lot into another packaging type.
type RepackInput struct {
	InventoryID           id.ID
	TargetPackagingTypeID id.ID
	Quantity              decimal.Decimal
}

// RepackPreview is the outcome of a successful dry run.
type RepackPreview struct {
	InventoryID           id.ID           `json:"inventoryId"`
	SourcePackagingTypeID id.ID           `json:"sourcePackagingTypeId"`
	TargetPackagingTypeID id.ID           `json:"targetPackagingTypeId"`
	Quantity              decimal.Decimal `json:"quantity"`
	Produced              decimal.Decimal `json:"produced"`
	Step                  int64           `json:"step"`
	Available             decimal.Decimal `json:"available"`
}

// ValidateRepack runs repack validation without changing anything.
func (s *Service) ValidateRepack(ctx context.Context, in RepackInput) (*RepackPreview, error) {
	lot, err := s.repos.Lots.GetByID(ctx, in.InventoryID)
	if err != nil {
		return nil, err
	}
	op, source, target, err := s.prepareRepack(ctx, *lot, in)
	if err != nil {
		return nil, err
	}
	if err := op.Validate(); err != nil {
		return nil, observe(ctx, err)
	}
	step, err := conversion.MinimalIntegerStep(source, target)
	if err != nil {
		return nil, observe(ctx, err)
	}
	return &RepackPreview{
		InventoryID:           lot.ID,
		SourcePackagingTypeID: source.ID,
		TargetPackagingTypeID: target.ID,
		Quantity:              in.Quantity,
		Produced:              op.Produced(),
		Step:                  step,
		Available:             lot.Quantity,
	}, nil
}

// Repack validates and commits a repack atomically. The source lot and the
// merge candidates are locked for the duration of the transaction.
func (s *Service) Repack(ctx context.Context, in RepackInput) (*repack.Result, error) {
	var result repack.Result

	err := s.inTx(ctx, "repack", func(ctx context.Context) error {
		lot, err := s.lockLot(ctx, in.InventoryID)
		if err != nil {
			return err
		}
		op, _, target, err := s.prepareRepack(ctx, lot, in)
		if err != nil {
			return err
		}
		if err := op.Validate(); err != nil {
			return observe(ctx, err)
		}

		candidates, err := s.repos.Lots.FindForUpdate(ctx, inventory.LotFilter{
			VariantIDs:      []id.ID{lot.VariantID},
			WarehouseID:     &lot.WarehouseID,
			PackagingTypeID: &target.ID,
		})
		if err != nil {
			return fmt.Errorf("lock merge candidates: %w", err)
		}

		result, err = op.Commit(candidates)
		if err != nil {
			return err
		}
		if err := s.repos.Lots.ApplyLotChanges(ctx, result.Changes.Changes, result.Changes.NewLots); err != nil {
			return err
		}
		return s.publish(ctx, events.AggregateLot, lot.ID, events.EventLotsChanged, map[string]any{
			"operation": "repack",
			"changes":   result.Changes,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "lot repacked",
		"inventory_id", result.Source.ID,
		"target_inventory_id", result.Target.ID,
		"converted", result.Converted.String(),
		"produced", result.Produced.String(),
		"merged", !result.TargetCreated,
	)
	return &result, nil
}

func (s *Service) prepareRepack(ctx context.Context, lot inventory.Lot, in RepackInput) (*repack.Operation, packaging.PackagingType, packaging.PackagingType, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, packaging.PackagingType{}, packaging.PackagingType{}, err
	}
	source, target, err := catalog.Pair(lot.PackagingTypeID, in.TargetPackagingTypeID)
	if err != nil {
		return nil, packaging.PackagingType{}, packaging.PackagingType{}, err
	}
	return repack.New(lot, source, target, in.Quantity), source, target, nil
}

// lockLot locks a live lot. A removed lot is returned unlocked so that
// validation reports it as having nothing available.
func (s *Service) lockLot(ctx context.Context, lotID id.ID) (inventory.Lot, error) {
	locked, err := s.repos.Lots.FindForUpdate(ctx, inventory.LotFilter{IDs: []id.ID{lotID}})
	if err != nil {
		return inventory.Lot{}, fmt.Errorf("lock lot: %w", err)
	}
	if len(locked) > 0 {
		return locked[0], nil
	}
	lot, err := s.repos.Lots.GetByID(ctx, lotID)
	if err != nil {
		return inventory.Lot{}, err
	}
	return *lot, nil
}
