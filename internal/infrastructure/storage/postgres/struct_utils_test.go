package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"depot/internal/core/id"
	"depot/internal/domain/catalogs/packaging"
	"depot/internal/domain/inventory"
)

func TestExtractDBColumns_EmbeddedRecord(t *testing.T) {
	cols := ExtractDBColumns[inventory.Lot]()

	expectedCols := []string{
		"id", "deletion_mark", "version", "created_at", "updated_at",
		"variant_id", "product_id", "warehouse_id", "packaging_type_id", "quantity", "production_date",
	}
	assert.ElementsMatch(t, expectedCols, cols)
}

func TestStructToMap_Catalog(t *testing.T) {
	baseUnitID := id.New()
	p := packaging.NewPackagingType("BAG25", "Bag 25 kg", baseUnitID, decimal.NewFromInt(25))
	p.Version = 5

	m := StructToMap(p)

	assert.Equal(t, p.ID, m["id"])
	assert.Equal(t, false, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "BAG25", m["code"])
	assert.Equal(t, "Bag 25 kg", m["name"])
	assert.Equal(t, baseUnitID, m["base_unit_id"])
	assert.True(t, decimal.NewFromInt(25).Equal(m["conversion_factor"].(decimal.Decimal)))
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
