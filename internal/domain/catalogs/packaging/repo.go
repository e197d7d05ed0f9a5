package packaging

import (
	"context"

	"depot/internal/core/id"
	"depot/internal/domain/catalogs/unit"
)

// Repository defines the read side of packaging type persistence.
type Repository interface {
	// List returns all packaging types that are not marked deleted.
	List(ctx context.Context) ([]PackagingType, error)

	// GetByID retrieves packaging type by ID.
	GetByID(ctx context.Context, id id.ID) (*PackagingType, error)
}

// LoadCatalog reads units and packaging types and builds a Catalog.
func LoadCatalog(ctx context.Context, units unit.Repository, repo Repository) (*Catalog, error) {
	unitCatalog, err := unit.LoadCatalog(ctx, units)
	if err != nil {
		return nil, err
	}
	types, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(ctx, unitCatalog, types)
}
