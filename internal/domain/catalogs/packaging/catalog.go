package packaging

import (
	"context"
	"sort"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
	"depot/internal/domain/catalogs/unit"
)

// Catalog is an immutable in-memory registry of packaging types.
type Catalog struct {
	units *unit.Catalog
	byID  map[id.ID]PackagingType
	order []id.ID
}

// NewCatalog builds a registry. Packaging types referencing an unknown base
// unit are rejected, since they could never be converted.
func NewCatalog(ctx context.Context, units *unit.Catalog, types []PackagingType) (*Catalog, error) {
	c := &Catalog{
		units: units,
		byID:  make(map[id.ID]PackagingType, len(types)),
	}
	for _, p := range types {
		if units != nil && !p.DeletionMark && !units.Has(p.BaseUnitID) {
			return nil, apperror.NewValidation("packaging type references unknown base unit").
				WithDetail("packaging_type_id", p.ID).
				WithDetail("base_unit_id", p.BaseUnitID)
		}
		if _, exists := c.byID[p.ID]; !exists {
			c.order = append(c.order, p.ID)
		}
		c.byID[p.ID] = p
	}
	return c, nil
}

// Get returns the packaging type with the given ID.
func (c *Catalog) Get(packagingTypeID id.ID) (PackagingType, error) {
	p, ok := c.byID[packagingTypeID]
	if !ok || p.DeletionMark {
		return PackagingType{}, apperror.NewNotFound("packaging type", packagingTypeID)
	}
	return p, nil
}

// Pair resolves a source and a target packaging type in one call.
func (c *Catalog) Pair(sourceID, targetID id.ID) (PackagingType, PackagingType, error) {
	source, err := c.Get(sourceID)
	if err != nil {
		return PackagingType{}, PackagingType{}, err
	}
	target, err := c.Get(targetID)
	if err != nil {
		return PackagingType{}, PackagingType{}, err
	}
	return source, target, nil
}

// Compatible reports whether two packaging types share a base unit.
func (c *Catalog) Compatible(aID, bID id.ID) (bool, error) {
	a, b, err := c.Pair(aID, bID)
	if err != nil {
		return false, err
	}
	return a.CompatibleWith(b), nil
}

// CompatibleWith lists live packaging types sharing a base unit with the
// given one, excluding itself. Used to offer repack targets.
func (c *Catalog) CompatibleWith(packagingTypeID id.ID) ([]PackagingType, error) {
	p, err := c.Get(packagingTypeID)
	if err != nil {
		return nil, err
	}
	var out []PackagingType
	for _, other := range c.List() {
		if other.ID != p.ID && other.CompatibleWith(p) {
			out = append(out, other)
		}
	}
	return out, nil
}

// List returns live packaging types ordered by name.
func (c *Catalog) List() []PackagingType {
	out := make([]PackagingType, 0, len(c.order))
	for _, pid := range c.order {
		if p := c.byID[pid]; !p.DeletionMark {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
