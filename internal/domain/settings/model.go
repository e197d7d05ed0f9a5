// Package settings stores key/value configuration grouped by category.
package settings

import (
	"context"
	"strings"

	"depot/internal/core/apperror"
)

// CategoryInventory holds the stock status thresholds.
const CategoryInventory = "inventory"

// Setting is one configuration entry.
type Setting struct {
	Category string `db:"category" json:"category"`
	Key      string `db:"settings_key" json:"settings_key"`
	Value    string `db:"settings_value" json:"settings_value"`
}

// Validate implements entity.Validatable interface.
func (s *Setting) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.Category) == "" {
		return apperror.NewValidation("category is required").WithDetail("field", "category")
	}
	if strings.TrimSpace(s.Key) == "" {
		return apperror.NewValidation("settings_key is required").WithDetail("field", "settings_key")
	}
	return nil
}

// Repository defines settings persistence.
type Repository interface {
	// ListByCategory returns every setting in a category, ordered by key.
	ListByCategory(ctx context.Context, category string) ([]Setting, error)

	// Upsert writes settings, replacing existing values for the same key.
	Upsert(ctx context.Context, settings []Setting) error
}

// Lookup returns the value stored under key, if present.
func Lookup(list []Setting, key string) (string, bool) {
	for _, s := range list {
		if s.Key == key {
			return s.Value, true
		}
	}
	return "", false
}
