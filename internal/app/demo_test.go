package app

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depot/internal/domain/registers/stock"
)

func TestLoadDemo_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	defer b.Close()
	svc := b.Service(stock.WithRetry(1, 0))

	require.NoError(t, LoadDemo(ctx, b.Catalog, svc))

	types, err := svc.PackagingTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 3)

	lots, err := svc.Lots(ctx, DemoProductID, DemoMainWarehouse, nil)
	require.NoError(t, err)
	assert.Len(t, lots, 3)

	cfg, err := svc.Thresholds(ctx)
	require.NoError(t, err)
	require.NotNil(t, cfg.Low)
	assert.True(t, cfg.Low.Equal(decimal.NewFromInt(10)))

	// A second run leaves the data alone.
	require.NoError(t, LoadDemo(ctx, b.Catalog, svc))
	lots, err = svc.Lots(ctx, DemoProductID, DemoMainWarehouse, nil)
	require.NoError(t, err)
	assert.Len(t, lots, 3)
}

func TestLoadDemo_HundredKilosRepackIntoFourBags(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	svc := b.Service()
	require.NoError(t, LoadDemo(ctx, b.Catalog, svc))

	eq, err := svc.Equivalent(ctx, decimal.NewFromInt(100), DemoKilogramID, DemoBag25ID)
	require.NoError(t, err)
	require.NotNil(t, eq.Quantity)
	assert.True(t, eq.Quantity.Equal(decimal.NewFromInt(4)))
}
