package packaging

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
	"depot/internal/domain/catalogs/unit"
)

func fixtures(t *testing.T) (*Catalog, PackagingType, PackagingType, PackagingType) {
	t.Helper()
	kgUnit := *unit.NewBaseUnit("KG", "Kilogram", "kg")
	lUnit := *unit.NewBaseUnit("L", "Liter", "l")
	units := unit.NewCatalog([]unit.BaseUnit{kgUnit, lUnit})

	kg := *NewPackagingType("KG", "Kilogram", kgUnit.ID, decimal.NewFromInt(1))
	bag := *NewPackagingType("BAG25", "Bag 25kg", kgUnit.ID, decimal.NewFromInt(25))
	bottle := *NewPackagingType("BTL", "Bottle 1.5l", lUnit.ID, decimal.RequireFromString("1.5"))

	c, err := NewCatalog(context.Background(), units, []PackagingType{kg, bag, bottle})
	require.NoError(t, err)
	return c, kg, bag, bottle
}

func TestCatalog_Compatible(t *testing.T) {
	c, kg, bag, bottle := fixtures(t)

	ok, err := c.Compatible(kg.ID, bag.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Compatible(kg.ID, bottle.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Compatible(kg.ID, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestCatalog_CompatibleWith(t *testing.T) {
	c, kg, bag, _ := fixtures(t)

	targets, err := c.CompatibleWith(kg.ID)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, bag.ID, targets[0].ID)
}

func TestNewCatalog_UnknownBaseUnit(t *testing.T) {
	units := unit.NewCatalog(nil)
	orphan := *NewPackagingType("X", "Orphan", id.New(), decimal.NewFromInt(1))

	_, err := NewCatalog(context.Background(), units, []PackagingType{orphan})
	require.Error(t, err)
}

func TestPackagingType_Validate(t *testing.T) {
	p := NewPackagingType("BAG", "Bag", id.New(), decimal.Zero)
	err := p.Validate(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidConversionFactor))

	p.ConversionFactor = decimal.NewFromInt(-3)
	assert.True(t, apperror.HasCode(p.Validate(context.Background()), apperror.CodeInvalidConversionFactor))

	p.ConversionFactor = decimal.NewFromInt(25)
	assert.NoError(t, p.Validate(context.Background()))
}
