package grid

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// COMPLETION ENGINE - Dense date x SKU grid with zero-fill
// =============================================================================

// Grid is the Cartesian product of a date range and a SKU set.
type Grid struct {
	Range DateRange
	SKUs  []string // sorted, distinct
}

// Len is the number of cells: days x SKUs.
func (g Grid) Len() int { return g.Range.Len() * len(g.SKUs) }

// Keys lists every cell ordered by date then SKU.
func (g Grid) Keys() []Key {
	keys := make([]Key, 0, g.Len())
	for _, d := range g.Range.Days() {
		for _, sku := range g.SKUs {
			keys = append(keys, Key{Date: d, SKU: sku})
		}
	}
	return keys
}

// Contains reports whether k is a cell of the grid.
func (g Grid) Contains(k Key) bool {
	if !g.Range.Contains(k.Date) {
		return false
	}
	i := sort.SearchStrings(g.SKUs, k.SKU)
	return i < len(g.SKUs) && g.SKUs[i] == k.SKU
}

// BuildGrid derives the grid from usable rows: the span [min, max] of their
// sale dates crossed with their distinct SKUs.
func BuildGrid(rows []CanonicalRow) (Grid, error) {
	var dates []Date
	seen := make(map[string]bool)
	var skus []string
	for _, r := range rows {
		if !r.Usable() {
			continue
		}
		dates = append(dates, r.SaleDate.Value)
		if !seen[r.SKU] {
			seen[r.SKU] = true
			skus = append(skus, r.SKU)
		}
	}

	rng, ok := RangeOf(dates)
	if !ok {
		return Grid{}, &EmptyDatasetError{RowsRead: len(rows), Reason: "no row has a valid sale date"}
	}
	if len(skus) == 0 {
		return Grid{}, &EmptyDatasetError{RowsRead: len(rows), Reason: "no row has a SKU"}
	}
	sort.Strings(skus)
	return Grid{Range: rng, SKUs: skus}, nil
}

// Fill left-joins aggregates onto the grid. Cells without an aggregate get
// quantity and cost 0 and are marked Filled. Aggregates outside the grid
// are ignored.
func Fill(g Grid, aggregates []AggregateRow) []ResultRow {
	byKey := make(map[Key]AggregateRow, len(aggregates))
	for _, a := range aggregates {
		byKey[a.Key()] = a
	}

	keys := g.Keys()
	out := make([]ResultRow, len(keys))
	for i, k := range keys {
		if a, ok := byKey[k]; ok {
			out[i] = ResultRow{Date: k.Date, SKU: k.SKU, Quantity: a.Quantity, Cost: a.Cost}
			continue
		}
		out[i] = ResultRow{Date: k.Date, SKU: k.SKU, Quantity: decimal.Zero, Cost: decimal.Zero, Filled: true}
	}
	return out
}

// Complete builds the grid from rows and fills it with aggregates.
func Complete(rows []CanonicalRow, aggregates []AggregateRow) ([]ResultRow, Grid, error) {
	g, err := BuildGrid(rows)
	if err != nil {
		return nil, Grid{}, err
	}
	return Fill(g, aggregates), g, nil
}
