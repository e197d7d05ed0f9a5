package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"depot/internal/core/apperror"
	"depot/internal/domain/catalogs/unit"
	"depot/internal/infrastructure/storage/postgres"
)

const unitTable = "cat_units"

var _ unit.Repository = (*UnitRepo)(nil)

// UnitRepo implements unit.Repository.
type UnitRepo struct {
	*BaseCatalogRepo[unit.BaseUnit]
}

// NewUnitRepo creates a new unit repository.
func NewUnitRepo(txManager *postgres.TxManager) *UnitRepo {
	return &UnitRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[unit.BaseUnit](
			txManager,
			unitTable,
			"base unit",
			postgres.ExtractDBColumns[unit.BaseUnit](),
		),
	}
}

// FindBySymbol retrieves a live unit by symbol.
func (r *UnitRepo) FindBySymbol(ctx context.Context, symbol string) (*unit.BaseUnit, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"symbol": symbol}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u unit.BaseUnit
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("base unit", symbol)
		}
		return nil, fmt.Errorf("find by symbol: %w", err)
	}
	return &u, nil
}
