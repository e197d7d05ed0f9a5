package unit

import (
	"context"

	"depot/internal/core/id"
)

// Repository defines the read side of base unit persistence.
// Units are reference data maintained elsewhere.
type Repository interface {
	// List returns all units that are not marked deleted.
	List(ctx context.Context) ([]BaseUnit, error)

	// GetByID retrieves unit by ID.
	GetByID(ctx context.Context, id id.ID) (*BaseUnit, error)
}

// LoadCatalog reads every unit and builds a Catalog.
func LoadCatalog(ctx context.Context, repo Repository) (*Catalog, error) {
	units, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(units), nil
}
