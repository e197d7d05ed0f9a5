package register_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depot/internal/core/id"
	"depot/internal/domain/inventory"
)

func TestLotRepo_FindQuery(t *testing.T) {
	repo := NewLotRepo(nil, nil)
	warehouseID := id.New()
	variantID := id.New()

	sql, args, err := repo.findQuery(inventory.LotFilter{
		VariantIDs:  []id.ID{variantID},
		WarehouseID: &warehouseID,
	}).Suffix("FOR UPDATE").ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM reg_inventory_lots WHERE deletion_mark = $1 AND variant_id IN ($2) AND warehouse_id = $3")
	assert.Contains(t, sql, "ORDER BY created_at ASC, id ASC FOR UPDATE")
	// squirrel.Eq resolves driver.Valuer scalars; list elements pass through as-is.
	assert.Equal(t, []any{false, variantID, warehouseID.String()}, args)
}

func TestLotRepo_FindQuery_Empty(t *testing.T) {
	repo := NewLotRepo(nil, nil)

	sql, args, err := repo.findQuery(inventory.LotFilter{}).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sql, "variant_id IN")
	assert.Equal(t, []any{false}, args)
}

func TestLotRepo_Columns(t *testing.T) {
	repo := NewLotRepo(nil, nil)

	assert.Contains(t, repo.columns, "quantity")
	assert.Contains(t, repo.columns, "production_date")
	assert.Contains(t, repo.columns, "version")
}
