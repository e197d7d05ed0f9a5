package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"depot/internal/core/apperror"
	"depot/internal/core/events"
	"depot/internal/core/id"
	"depot/internal/domain/inventory"
	"depot/internal/domain/settings"
	"depot/internal/domain/stockstatus"
	"depot/pkg/logger"
)

// Lots returns the live lots of a variant at a warehouse, largest first.
func (s *Service) Lots(ctx context.Context, variantID, warehouseID id.ID, packagingTypeID *id.ID) ([]inventory.Lot, error) {
	lots, err := s.repos.Lots.Find(ctx, inventory.LotFilter{
		VariantIDs:      []id.ID{variantID},
		WarehouseID:     &warehouseID,
		PackagingTypeID: packagingTypeID,
	})
	if err != nil {
		return nil, fmt.Errorf("find lots: %w", err)
	}
	return inventory.LotsFor(lots, variantID, warehouseID, packagingTypeID), nil
}

// Groups returns the production date / packaging breakdown of a variant at a warehouse.
func (s *Service) Groups(ctx context.Context, variantID, warehouseID id.ID) ([]inventory.DateGroup, error) {
	lots, err := s.Lots(ctx, variantID, warehouseID, nil)
	if err != nil {
		return nil, err
	}
	return inventory.GroupByProductionDateThenPackaging(lots), nil
}

// LotStatus is a lot with its derived stock level.
type LotStatus struct {
	Lot          inventory.Lot               `json:"lot"`
	BaseQuantity decimal.Decimal             `json:"baseQuantity"`
	Status       stockstatus.Status          `json:"status"`
	Thresholds   stockstatus.ThresholdConfig `json:"thresholds"`
}

// LotStatus derives the stock level of one lot. Thresholds are read on every
// call so that a settings change applies immediately.
func (s *Service) LotStatus(ctx context.Context, lotID id.ID) (*LotStatus, error) {
	lot, err := s.liveLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	pkg, err := catalog.Get(lot.PackagingTypeID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.Thresholds(ctx)
	if err != nil {
		return nil, err
	}

	status, err := stockstatus.DeriveStatus(lot.Quantity, pkg, cfg)
	if err != nil {
		return nil, observe(ctx, err)
	}
	return &LotStatus{
		Lot:          *lot,
		BaseQuantity: pkg.ToBaseUnits(lot.Quantity),
		Status:       status,
		Thresholds:   cfg,
	}, nil
}

// ReceiveInput describes stock arriving at a warehouse.
type ReceiveInput struct {
	VariantID       id.ID
	ProductID       id.ID
	WarehouseID     id.ID
	PackagingTypeID id.ID
	Quantity        decimal.Decimal
	ProductionDate  *time.Time
}

// ReceiveLot records a new lot. Each receipt is its own batch even when a
// lot with the same dimensions already exists.
func (s *Service) ReceiveLot(ctx context.Context, in ReceiveInput) (*inventory.Lot, error) {
	if !in.Quantity.IsPositive() {
		return nil, apperror.NewInvalidQuantity(in.Quantity.String())
	}
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	pkg, err := catalog.Get(in.PackagingTypeID)
	if err != nil {
		return nil, err
	}
	if err := pkg.ValidateFactor(); err != nil {
		return nil, observe(ctx, err)
	}

	lot := inventory.NewLot(in.VariantID, in.ProductID, in.WarehouseID, in.PackagingTypeID, in.Quantity, in.ProductionDate)
	if err := lot.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.inTx(ctx, "receive", func(ctx context.Context) error {
		if err := s.repos.Lots.Create(ctx, lot); err != nil {
			return fmt.Errorf("create lot: %w", err)
		}
		return s.publish(ctx, events.AggregateLot, lot.ID, events.EventLotReceived, lot)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "lot received",
		"inventory_id", lot.ID,
		"warehouse_id", lot.WarehouseID,
		"quantity", lot.Quantity.String(),
	)
	return lot, nil
}

// RemoveLot soft-deletes a lot. Its production date is cleared and it no
// longer counts towards availability.
func (s *Service) RemoveLot(ctx context.Context, lotID id.ID) error {
	err := s.inTx(ctx, "remove", func(ctx context.Context) error {
		lot, err := s.liveLot(ctx, lotID)
		if err != nil {
			return err
		}
		if err := s.repos.Lots.Remove(ctx, lot.ID, lot.Version); err != nil {
			return err
		}
		return s.publish(ctx, events.AggregateLot, lot.ID, events.EventLotRemoved, map[string]any{
			"inventoryId": lot.ID,
			"quantity":    lot.Quantity,
		})
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "lot removed", "inventory_id", lotID)
	return nil
}

// Thresholds reads the current stock status thresholds.
func (s *Service) Thresholds(ctx context.Context) (stockstatus.ThresholdConfig, error) {
	list, err := s.repos.Settings.ListByCategory(ctx, settings.CategoryInventory)
	if err != nil {
		return stockstatus.ThresholdConfig{}, fmt.Errorf("list settings: %w", err)
	}
	cfg, err := stockstatus.ThresholdsFromSettings(list)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn(ctx, "stored stock thresholds are inconsistent", "error", err,
			"out", cfg.Out.String(), "low", cfg.Low)
	}
	return cfg, nil
}

// UpdateThresholds stores new stock status thresholds.
func (s *Service) UpdateThresholds(ctx context.Context, cfg stockstatus.ThresholdConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repos.Settings.Upsert(ctx, cfg.Settings())
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "stock thresholds updated", "out", cfg.Out.String(), "low", cfg.Low)
	return nil
}

// History returns the recorded changes of a lot, newest first.
func (s *Service) History(ctx context.Context, lotID id.ID, limit int) ([]inventory.JournalEntry, error) {
	if _, err := s.repos.Lots.GetByID(ctx, lotID); err != nil {
		return nil, err
	}
	if s.repos.Journal == nil {
		return []inventory.JournalEntry{}, nil
	}
	return s.repos.Journal.History(ctx, lotID, limit)
}

func (s *Service) liveLot(ctx context.Context, lotID id.ID) (*inventory.Lot, error) {
	lot, err := s.repos.Lots.GetByID(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if !lot.IsLive() {
		return nil, apperror.NewNotFound("inventory lot", lotID)
	}
	return lot, nil
}
