package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
	"depot/internal/domain/transfer"
	"depot/internal/infrastructure/storage/postgres"
)

const (
	transfersTable     = "doc_transfers"
	transferLinesTable = "doc_transfer_lines"
)

var _ transfer.Repository = (*TransferRepo)(nil)

// TransferRepo implements transfer.Repository. Lines live in their own table
// keyed by transfer and line number.
type TransferRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

// NewTransferRepo creates a new transfer repository.
func NewTransferRepo(txManager *postgres.TxManager) *TransferRepo {
	return &TransferRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.ExtractDBColumns[transfer.Transfer](),
	}
}

// Create inserts the header and its lines.
func (r *TransferRepo) Create(ctx context.Context, t *transfer.Transfer) error {
	data := postgres.StructToMap(t)
	header := make(map[string]any, len(r.columns))
	for _, col := range r.columns {
		header[col] = data[col]
	}

	sql, args, err := r.builder.Insert(transfersTable).SetMap(header).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("transfer", "number", t.Number).WithCause(err)
		}
		return fmt.Errorf("insert transfer: %w", err)
	}

	if len(t.Lines) == 0 {
		return nil
	}

	lines := r.builder.Insert(transferLinesTable).
		Columns("transfer_id", "line_no", "inventory_id", "quantity")
	for i, line := range t.Lines {
		lines = lines.Values(t.ID, i+1, line.InventoryID, line.Quantity)
	}
	sql, args, err = lines.ToSql()
	if err != nil {
		return fmt.Errorf("build line insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transfer lines: %w", err)
	}
	return nil
}

// GetByID loads a transfer with its lines.
func (r *TransferRepo) GetByID(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return r.get(ctx, transferID, false)
}

// GetForUpdate loads a transfer with the header row locked.
func (r *TransferRepo) GetForUpdate(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	return r.get(ctx, transferID, true)
}

func (r *TransferRepo) get(ctx context.Context, transferID id.ID, forUpdate bool) (*transfer.Transfer, error) {
	q := r.builder.Select(r.columns...).
		From(transfersTable).
		Where(squirrel.Eq{"id": transferID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	var t transfer.Transfer
	if err := pgxscan.Get(ctx, querier, &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transfer", transferID)
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}

	sql, args, err = r.builder.Select("inventory_id", "quantity").
		From(transferLinesTable).
		Where(squirrel.Eq{"transfer_id": transferID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build line query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &t.Lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get transfer lines: %w", err)
	}
	return &t, nil
}

// UpdateStatus persists status, timestamps and version with a compare-and-swap.
func (r *TransferRepo) UpdateStatus(ctx context.Context, t *transfer.Transfer, expectedVersion int) error {
	sql, args, err := r.builder.Update(transfersTable).
		Set("status", t.Status).
		Set("shipped_at", t.ShippedAt).
		Set("completed_at", t.CompletedAt).
		Set("cancelled_at", t.CancelledAt).
		Set("version", t.Version).
		Set("updated_at", t.UpdatedAt).
		Where(squirrel.Eq{"id": t.ID, "version": expectedVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update transfer status: %w", err)
	}
	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, t.ID); err != nil {
			return err
		}
		return apperror.NewConcurrentModification("transfer", t.ID)
	}
	return nil
}
