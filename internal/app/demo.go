package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"depot/internal/core/id"
	"depot/internal/domain/catalogs/packaging"
	"depot/internal/domain/catalogs/unit"
	"depot/internal/domain/registers/stock"
	"depot/internal/domain/stockstatus"
	"depot/pkg/logger"
)

// Demo identifiers are fixed so that scripts and docs can refer to them.
var (
	DemoKilogramUnitID = id.MustParse("0192a000-0000-7000-8000-000000000001")
	DemoKilogramID     = id.MustParse("0192a000-0000-7000-8000-000000000101")
	DemoBag25ID        = id.MustParse("0192a000-0000-7000-8000-000000000102")
	DemoBox1ID         = id.MustParse("0192a000-0000-7000-8000-000000000103")
	DemoProductID      = id.MustParse("0192a000-0000-7000-8000-000000000201")
	DemoMainWarehouse  = id.MustParse("0192a000-0000-7000-8000-000000000301")
	DemoShopWarehouse  = id.MustParse("0192a000-0000-7000-8000-000000000302")
)

// LoadDemo stores the kg / 25kg bag / 1kg box catalog, a few lots and the
// stock thresholds. It does nothing when base units already exist.
func LoadDemo(ctx context.Context, catalog CatalogWriter, svc *stock.Service) error {
	existing, err := svc.Units(ctx)
	if err != nil {
		return fmt.Errorf("list units: %w", err)
	}
	if len(existing) > 0 {
		logger.Info(ctx, "demo data skipped, catalog not empty", "units", len(existing))
		return nil
	}

	kg := unit.NewBaseUnit("KG", "Kilogram", "kg")
	kg.ID = DemoKilogramUnitID
	if err := catalog.PutUnit(ctx, *kg); err != nil {
		return fmt.Errorf("put unit: %w", err)
	}

	types := []*packaging.PackagingType{
		packaging.NewPackagingType("KG", "Kilogram", kg.ID, decimal.NewFromInt(1)),
		packaging.NewPackagingType("BAG25", "Bag 25 kg", kg.ID, decimal.NewFromInt(25)),
		packaging.NewPackagingType("BOX1", "Box 1 kg", kg.ID, decimal.NewFromInt(1)),
	}
	for i, typeID := range []id.ID{DemoKilogramID, DemoBag25ID, DemoBox1ID} {
		types[i].ID = typeID
		if err := catalog.PutPackagingType(ctx, *types[i]); err != nil {
			return fmt.Errorf("put packaging type %s: %w", types[i].Code, err)
		}
	}

	produced := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	lots := []stock.ReceiveInput{
		{WarehouseID: DemoMainWarehouse, PackagingTypeID: DemoKilogramID, Quantity: decimal.NewFromInt(100), ProductionDate: &produced},
		{WarehouseID: DemoMainWarehouse, PackagingTypeID: DemoBag25ID, Quantity: decimal.NewFromInt(8), ProductionDate: &produced},
		{WarehouseID: DemoMainWarehouse, PackagingTypeID: DemoBox1ID, Quantity: decimal.NewFromInt(40)},
		{WarehouseID: DemoShopWarehouse, PackagingTypeID: DemoBag25ID, Quantity: decimal.NewFromInt(2)},
	}
	for _, in := range lots {
		in.ProductID = DemoProductID
		if _, err := svc.ReceiveLot(ctx, in); err != nil {
			return fmt.Errorf("receive demo lot: %w", err)
		}
	}

	low := decimal.NewFromInt(10)
	if err := svc.UpdateThresholds(ctx, stockstatus.ThresholdConfig{Low: &low, Out: decimal.Zero}); err != nil {
		return fmt.Errorf("update thresholds: %w", err)
	}

	logger.Info(ctx, "demo data loaded",
		"packaging_types", len(types),
		"lots", len(lots),
	)
	return nil
}
