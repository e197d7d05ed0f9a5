package unit

import (
	"sort"

	"depot/internal/core/apperror"
	"depot/internal/core/id"
)

// Catalog is an immutable in-memory registry of base units keyed by ID.
type Catalog struct {
	byID  map[id.ID]BaseUnit
	order []id.ID
}

// NewCatalog builds a registry. Later duplicates of an ID replace earlier ones.
func NewCatalog(units []BaseUnit) *Catalog {
	c := &Catalog{byID: make(map[id.ID]BaseUnit, len(units))}
	for _, u := range units {
		if _, exists := c.byID[u.ID]; !exists {
			c.order = append(c.order, u.ID)
		}
		c.byID[u.ID] = u
	}
	return c
}

// Get returns the unit with the given ID.
func (c *Catalog) Get(unitID id.ID) (BaseUnit, error) {
	u, ok := c.byID[unitID]
	if !ok || u.DeletionMark {
		return BaseUnit{}, apperror.NewNotFound("base unit", unitID)
	}
	return u, nil
}

// Has reports whether a live unit with the given ID exists.
func (c *Catalog) Has(unitID id.ID) bool {
	_, err := c.Get(unitID)
	return err == nil
}

// List returns live units ordered by name.
func (c *Catalog) List() []BaseUnit {
	out := make([]BaseUnit, 0, len(c.order))
	for _, uid := range c.order {
		if u := c.byID[uid]; !u.DeletionMark {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
