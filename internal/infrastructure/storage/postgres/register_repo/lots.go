// Package register_repo provides PostgreSQL implementations for the stock
// lot register, transfers and settings.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
	"depot/internal/domain/inventory"
	"depot/internal/infrastructure/storage/postgres"
)

const lotsTable = "reg_inventory_lots"

var _ inventory.Repository = (*LotRepo)(nil)

// LotRepo implements inventory.Repository.
type LotRepo struct {
	txManager *postgres.TxManager
	journal   *postgres.LotJournal
	builder   squirrel.StatementBuilderType
	columns   []string
}

// NewLotRepo creates a new lot repository. A nil journal disables history.
func NewLotRepo(txManager *postgres.TxManager, journal *postgres.LotJournal) *LotRepo {
	return &LotRepo{
		txManager: txManager,
		journal:   journal,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.ExtractDBColumns[inventory.Lot](),
	}
}

func (r *LotRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(r.columns...).From(lotsTable)
}

// findQuery builds the live-lot query for a filter, in creation order.
func (r *LotRepo) findQuery(filter inventory.LotFilter) squirrel.SelectBuilder {
	q := r.baseSelect().Where(squirrel.Eq{"deletion_mark": false})
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if len(filter.VariantIDs) > 0 {
		q = q.Where(squirrel.Eq{"variant_id": filter.VariantIDs})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.PackagingTypeID != nil {
		q = q.Where(squirrel.Eq{"packaging_type_id": *filter.PackagingTypeID})
	}
	return q.OrderBy("created_at ASC", "id ASC")
}

// GetByID retrieves a lot by ID, removed or not.
func (r *LotRepo) GetByID(ctx context.Context, lotID id.ID) (*inventory.Lot, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": lotID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lot inventory.Lot
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &lot, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory lot", lotID)
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &lot, nil
}

// Find returns live lots matching the filter.
func (r *LotRepo) Find(ctx context.Context, filter inventory.LotFilter) ([]inventory.Lot, error) {
	return r.selectLots(ctx, r.findQuery(filter))
}

// FindForUpdate locks the matching rows until the transaction ends.
func (r *LotRepo) FindForUpdate(ctx context.Context, filter inventory.LotFilter) ([]inventory.Lot, error) {
	return r.selectLots(ctx, r.findQuery(filter).Suffix("FOR UPDATE"))
}

func (r *LotRepo) selectLots(ctx context.Context, q squirrel.SelectBuilder) ([]inventory.Lot, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lots []inventory.Lot
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("select lots: %w", err)
	}
	return lots, nil
}

// Create inserts a new lot.
func (r *LotRepo) Create(ctx context.Context, lot *inventory.Lot) error {
	if err := lot.Validate(ctx); err != nil {
		return err
	}
	return r.insert(ctx, []inventory.Lot{*lot})
}

// Remove soft-deletes a lot if it is still at the given version.
func (r *LotRepo) Remove(ctx context.Context, lotID id.ID, version int) error {
	sql, args, err := r.builder.
		Update(lotsTable).
		Set("deletion_mark", true).
		Set("production_date", nil).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": lotID, "version": version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build remove: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("remove lot: %w", err)
	}
	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, lotID); err != nil {
			return err
		}
		return apperror.NewConcurrentModification("inventory lot", lotID)
	}
	return nil
}

// ApplyLotChanges writes quantity updates with a version compare-and-swap,
// inserts new lots and journals the change set. It must run inside a
// transaction: a failed swap aborts everything already written.
func (r *LotRepo) ApplyLotChanges(ctx context.Context, changes []inventory.LotChange, newLots []inventory.Lot) error {
	if len(changes) == 0 && len(newLots) == 0 {
		return nil
	}
	if r.txManager.GetTx(ctx) == nil {
		return fmt.Errorf("ApplyLotChanges requires transaction context")
	}

	ids := make([]id.ID, 0, len(changes))
	for _, c := range changes {
		if c.NewQuantity.IsNegative() {
			return apperror.NewInvalidQuantity(c.NewQuantity.String()).
				WithDetail("inventory_id", c.InventoryID)
		}
		ids = append(ids, c.InventoryID)
	}
	for _, l := range newLots {
		if l.Quantity.IsNegative() {
			return apperror.NewInvalidQuantity(l.Quantity.String())
		}
	}

	var before []inventory.Lot
	if len(ids) > 0 {
		var err error
		before, err = r.FindForUpdate(ctx, inventory.LotFilter{IDs: ids})
		if err != nil {
			return err
		}
	}

	after, err := r.applyUpdates(ctx, changes, before)
	if err != nil {
		return err
	}

	if len(newLots) > 0 {
		if err := r.insert(ctx, newLots); err != nil {
			return err
		}
		after = append(after, newLots...)
	}

	if r.journal != nil {
		return r.journal.Record(ctx, before, after)
	}
	return nil
}

// applyUpdates sends the CAS updates in one batch and returns the updated lots.
func (r *LotRepo) applyUpdates(ctx context.Context, changes []inventory.LotChange, before []inventory.Lot) ([]inventory.Lot, error) {
	if len(changes) == 0 {
		return nil, nil
	}

	current := make(map[id.ID]inventory.Lot, len(before))
	for _, l := range before {
		current[l.ID] = l
	}

	now := time.Now().UTC()
	queries := make([]postgres.BatchQuery, 0, len(changes))
	after := make([]inventory.Lot, 0, len(changes))
	for _, c := range changes {
		l, ok := current[c.InventoryID]
		if !ok || l.Version != c.ExpectedVersion {
			return nil, apperror.NewConcurrentModification("inventory lot", c.InventoryID)
		}

		sql, args, err := r.builder.
			Update(lotsTable).
			Set("quantity", c.NewQuantity).
			Set("version", squirrel.Expr("version + 1")).
			Set("updated_at", now).
			Where(squirrel.Eq{"id": c.InventoryID, "version": c.ExpectedVersion, "deletion_mark": false}).
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("build lot update: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: sql, Args: args})

		l.Quantity = c.NewQuantity
		l.Version++
		l.UpdatedAt = now
		after = append(after, l)
	}

	tags, err := postgres.NewBatchExecutor(r.txManager).ExecuteBatch(ctx, queries)
	if err != nil {
		return nil, err
	}
	for i, tag := range tags {
		if tag.RowsAffected() == 0 {
			return nil, apperror.NewConcurrentModification("inventory lot", changes[i].InventoryID)
		}
	}
	return after, nil
}

// insert writes lots with COPY when there are many and a transaction is open.
func (r *LotRepo) insert(ctx context.Context, lots []inventory.Lot) error {
	now := time.Now().UTC()
	for i := range lots {
		if lots[i].CreatedAt.IsZero() {
			lots[i].CreatedAt = now
			lots[i].UpdatedAt = now
		}
	}

	if len(lots) >= postgres.CopyThreshold && r.txManager.GetTx(ctx) != nil {
		rows := make([][]any, 0, len(lots))
		for _, l := range lots {
			data := postgres.StructToMap(l)
			row := make([]any, 0, len(r.columns))
			for _, col := range r.columns {
				row = append(row, data[col])
			}
			rows = append(rows, row)
		}
		if _, err := postgres.NewBatchInserter(r.txManager).CopyFromSlice(ctx, lotsTable, r.columns, rows); err != nil {
			return fmt.Errorf("copy lots: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(lotsTable).Columns(r.columns...)
	for _, l := range lots {
		data := postgres.StructToMap(l)
		values := make([]any, 0, len(r.columns))
		for _, col := range r.columns {
			values = append(values, data[col])
		}
		q = q.Values(values...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("inventory lot", "id", lots[0].ID.String()).WithCause(err)
		}
		return fmt.Errorf("insert lots: %w", err)
	}
	return nil
}
