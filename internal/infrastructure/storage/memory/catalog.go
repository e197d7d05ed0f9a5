package memory

import (
	"context"
	"sort"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
	"depot/internal/domain/catalogs/packaging"
	"depot/internal/domain/catalogs/unit"
)

// Units returns the base unit repository.
func (s *Store) Units() unit.Repository { return unitRepo{s} }

// Packaging returns the packaging type repository.
func (s *Store) Packaging() packaging.Repository { return packagingRepo{s} }

// PutUnit inserts or replaces a base unit.
func (s *Store) PutUnit(ctx context.Context, u unit.BaseUnit) error {
	if err := u.Validate(ctx); err != nil {
		return err
	}
	return s.do(ctx, func() error {
		s.st.units[u.ID] = u
		return nil
	})
}

// PutPackagingType inserts or replaces a packaging type. The factor is not
// checked here: bad factors are reported when a conversion uses them.
func (s *Store) PutPackagingType(ctx context.Context, p packaging.PackagingType) error {
	if id.IsNil(p.BaseUnitID) || p.Name == "" {
		return apperror.NewValidation("packaging type needs a name and a base unit")
	}
	return s.do(ctx, func() error {
		s.st.packaging[p.ID] = p
		return nil
	})
}

type unitRepo struct{ s *Store }

func (r unitRepo) List(ctx context.Context) ([]unit.BaseUnit, error) {
	var out []unit.BaseUnit
	err := r.s.do(ctx, func() error {
		for _, u := range r.s.st.units {
			if !u.DeletionMark {
				out = append(out, u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r unitRepo) GetByID(ctx context.Context, unitID id.ID) (*unit.BaseUnit, error) {
	var out *unit.BaseUnit
	err := r.s.do(ctx, func() error {
		u, ok := r.s.st.units[unitID]
		if !ok {
			return apperror.NewNotFound("unit", unitID)
		}
		out = &u
		return nil
	})
	return out, err
}

type packagingRepo struct{ s *Store }

func (r packagingRepo) List(ctx context.Context) ([]packaging.PackagingType, error) {
	var out []packaging.PackagingType
	err := r.s.do(ctx, func() error {
		for _, p := range r.s.st.packaging {
			if !p.DeletionMark {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r packagingRepo) GetByID(ctx context.Context, packagingTypeID id.ID) (*packaging.PackagingType, error) {
	var out *packaging.PackagingType
	err := r.s.do(ctx, func() error {
		p, ok := r.s.st.packaging[packagingTypeID]
		if !ok {
			return apperror.NewNotFound("packaging type", packagingTypeID)
		}
		out = &p
		return nil
	})
	return out, err
}
