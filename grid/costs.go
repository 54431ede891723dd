package grid

// =============================================================================
// COST EDITING - User overrides before the daily summary is recomputed
// =============================================================================

// ApplyCostEdits returns a copy of result with the edited cells' costs
// replaced. Edits apply in order, so a later edit of the same cell wins.
// An edit outside the grid fails the whole batch and result is untouched.
// Callers recompute the summary with Rollup afterwards.
func ApplyCostEdits(result []ResultRow, edits []CostEdit) ([]ResultRow, error) {
	index := make(map[Key]int, len(result))
	for i, r := range result {
		index[r.Key()] = i
	}
	for _, e := range edits {
		k := Key{Date: e.Date, SKU: e.SKU}
		if _, ok := index[k]; !ok {
			return nil, &UnknownCellError{Key: k}
		}
	}

	out := make([]ResultRow, len(result))
	copy(out, result)
	for _, e := range edits {
		out[index[Key{Date: e.Date, SKU: e.SKU}]].Cost = e.Cost
	}
	return out, nil
}
