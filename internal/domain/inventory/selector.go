package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"depot/internal/core/id"
)

// LotsFor returns the live lots of a variant at a warehouse, optionally
// narrowed to one packaging type, largest quantity first.
//
// This is the allocation policy wherever a batch has to be picked without
// the user choosing one. Ties keep their input order.
func LotsFor(lots []Lot, variantID, warehouseID id.ID, packagingTypeID *id.ID) []Lot {
	out := make([]Lot, 0, len(lots))
	for _, l := range lots {
		if !l.IsLive() || l.VariantID != variantID || l.WarehouseID != warehouseID {
			continue
		}
		if packagingTypeID != nil && l.PackagingTypeID != *packagingTypeID {
			continue
		}
		out = append(out, l)
	}
	SortLargestFirst(out)
	return out
}

// Best returns the implicit choice for a request: the first lot of LotsFor.
func Best(lots []Lot, variantID, warehouseID id.ID, packagingTypeID *id.ID) (Lot, bool) {
	candidates := LotsFor(lots, variantID, warehouseID, packagingTypeID)
	if len(candidates) == 0 {
		return Lot{}, false
	}
	return candidates[0], true
}

// Available sums the live quantity of a variant at a warehouse.
func Available(lots []Lot, variantID, warehouseID id.ID, packagingTypeID *id.ID) decimal.Decimal {
	total := decimal.Zero
	for _, l := range LotsFor(lots, variantID, warehouseID, packagingTypeID) {
		total = total.Add(l.Quantity)
	}
	return total
}

// SortLargestFirst orders lots by descending quantity, stable on ties.
func SortLargestFirst(lots []Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		return lots[i].Quantity.GreaterThan(lots[j].Quantity)
	})
}

// PackagingGroup is the lots of one packaging type inside a DateGroup.
type PackagingGroup struct {
	PackagingTypeID id.ID           `json:"packagingTypeId"`
	Total           decimal.Decimal `json:"total"`
	Lots            []Lot           `json:"lots"`
}

// DateGroup is the lots sharing a production date. A nil date is the
// "no date" bucket.
type DateGroup struct {
	ProductionDate *time.Time       `json:"productionDate"`
	Packaging      []PackagingGroup `json:"packaging"`
}

// GroupByProductionDateThenPackaging builds the breakdown shown on inventory
// detail views. Date groups are ordered oldest first with the "no date"
// bucket last; packaging groups keep first-appearance order; lots inside a
// packaging group are largest first. Removed lots are skipped.
func GroupByProductionDateThenPackaging(lots []Lot) []DateGroup {
	type dateKey struct {
		set bool
		day time.Time
	}

	var (
		groups  []DateGroup
		dateIdx = map[dateKey]int{}
		packIdx = map[dateKey]map[id.ID]int{}
	)

	for _, l := range lots {
		if !l.IsLive() {
			continue
		}
		d := NormalizeDate(l.ProductionDate)
		key := dateKey{}
		if d != nil {
			key = dateKey{set: true, day: *d}
		}

		gi, ok := dateIdx[key]
		if !ok {
			gi = len(groups)
			dateIdx[key] = gi
			packIdx[key] = map[id.ID]int{}
			groups = append(groups, DateGroup{ProductionDate: d})
		}

		pi, ok := packIdx[key][l.PackagingTypeID]
		if !ok {
			pi = len(groups[gi].Packaging)
			packIdx[key][l.PackagingTypeID] = pi
			groups[gi].Packaging = append(groups[gi].Packaging, PackagingGroup{
				PackagingTypeID: l.PackagingTypeID,
				Total:           decimal.Zero,
			})
		}

		pg := &groups[gi].Packaging[pi]
		pg.Lots = append(pg.Lots, l)
		pg.Total = pg.Total.Add(l.Quantity)
	}

	for gi := range groups {
		for pi := range groups[gi].Packaging {
			SortLargestFirst(groups[gi].Packaging[pi].Lots)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].ProductionDate, groups[j].ProductionDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return groups
}
