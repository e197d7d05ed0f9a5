package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"depot/internal/domain/settings"
	"depot/internal/infrastructure/storage/postgres"
)

const settingsTable = "sys_settings"

var _ settings.Repository = (*SettingsRepo)(nil)

// SettingsRepo implements settings.Repository.
type SettingsRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSettingsRepo creates a new settings repository.
func NewSettingsRepo(txManager *postgres.TxManager) *SettingsRepo {
	return &SettingsRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListByCategory returns every setting in a category, ordered by key.
func (r *SettingsRepo) ListByCategory(ctx context.Context, category string) ([]settings.Setting, error) {
	sql, args, err := r.builder.
		Select("category", "settings_key", "settings_value").
		From(settingsTable).
		Where(squirrel.Eq{"category": category}).
		OrderBy("settings_key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []settings.Setting
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return out, nil
}

// Upsert writes settings, replacing existing values for the same key.
func (r *SettingsRepo) Upsert(ctx context.Context, list []settings.Setting) error {
	if len(list) == 0 {
		return nil
	}

	q := r.builder.Insert(settingsTable).
		Columns("category", "settings_key", "settings_value")
	for i := range list {
		if err := list[i].Validate(ctx); err != nil {
			return err
		}
		q = q.Values(list[i].Category, list[i].Key, list[i].Value)
	}
	q = q.Suffix("ON CONFLICT (category, settings_key) DO UPDATE SET settings_value = EXCLUDED.settings_value, updated_at = now()")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
