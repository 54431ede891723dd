package grid

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AGGREGATOR - Group by (date, sku), sum quantity and cost
// =============================================================================

// Aggregate sums quantity and cost of usable rows per (date, sku).
// Unparseable quantities and costs count as 0 but still create the key.
// Output has exactly one row per key, ordered by date then SKU.
func Aggregate(rows []CanonicalRow) []AggregateRow {
	sums := make(map[Key]*AggregateRow)
	for _, r := range rows {
		if !r.Usable() {
			continue
		}
		k := Key{Date: r.SaleDate.Value, SKU: r.SKU}
		agg, ok := sums[k]
		if !ok {
			agg = &AggregateRow{Date: k.Date, SKU: k.SKU, Quantity: decimal.Zero, Cost: decimal.Zero}
			sums[k] = agg
		}
		agg.Quantity = agg.Quantity.Add(OrZero(r.Quantity))
		agg.Cost = agg.Cost.Add(OrZero(r.Cost))
	}

	out := make([]AggregateRow, 0, len(sums))
	for _, agg := range sums {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}

// =============================================================================
// ROLL-UP - Result table to per-date totals
// =============================================================================

// Rollup groups result rows by date, summing quantity and cost across all
// SKUs, zero-filled cells included. It is always a full recompute.
func Rollup(result []ResultRow) []DailySummaryRow {
	byDate := make(map[Date]*DailySummaryRow)
	var order []Date
	for _, r := range result {
		s, ok := byDate[r.Date]
		if !ok {
			s = &DailySummaryRow{Date: r.Date, Quantity: decimal.Zero, Cost: decimal.Zero}
			byDate[r.Date] = s
			order = append(order, r.Date)
		}
		s.Quantity = s.Quantity.Add(r.Quantity)
		s.Cost = s.Cost.Add(r.Cost)
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })
	out := make([]DailySummaryRow, len(order))
	for i, d := range order {
		out[i] = *byDate[d]
	}
	return out
}

// TotalQuantity sums quantity over result rows.
func TotalQuantity(result []ResultRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range result {
		total = total.Add(r.Quantity)
	}
	return total
}
