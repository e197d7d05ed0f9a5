package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"depot/internal/core/id"
	"depot/internal/domain/catalogs/packaging"
	"depot/internal/infrastructure/storage/postgres"
)

const packagingTable = "cat_packaging_types"

var _ packaging.Repository = (*PackagingRepo)(nil)

// PackagingRepo implements packaging.Repository.
type PackagingRepo struct {
	*BaseCatalogRepo[packaging.PackagingType]
}

// NewPackagingRepo creates a new packaging type repository.
func NewPackagingRepo(txManager *postgres.TxManager) *PackagingRepo {
	return &PackagingRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[packaging.PackagingType](
			txManager,
			packagingTable,
			"packaging type",
			postgres.ExtractDBColumns[packaging.PackagingType](),
		),
	}
}

// ListByBaseUnit returns live packaging types measured against one base unit.
func (r *PackagingRepo) ListByBaseUnit(ctx context.Context, baseUnitID id.ID) ([]packaging.PackagingType, error) {
	sql, args, err := r.listQuery().
		Where(squirrel.Eq{"base_unit_id": baseUnitID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []packaging.PackagingType
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list by base unit: %w", err)
	}
	return items, nil
}
