package grid_test

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/sales-grid/grid"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func jan(day int) grid.Date {
	return grid.NewDate(2024, time.January, day)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// sale builds a usable row with a parsed quantity and zero cost.
func sale(date grid.Date, sku, qty string) grid.CanonicalRow {
	return grid.CanonicalRow{
		SKU:      sku,
		Quantity: grid.Parsed(dec(qty), qty),
		SaleDate: grid.Parsed(date, date.String()),
		Cost:     grid.Parsed(decimal.Zero, ""),
	}
}

func costedSale(date grid.Date, sku, qty, cost string) grid.CanonicalRow {
	r := sale(date, sku, qty)
	r.Cost = grid.Parsed(dec(cost), cost)
	return r
}

func delimitedText() grid.Variant {
	return grid.Variant{
		Name:       "delimited_text",
		Input:      "csv",
		DateLayout: "2/1/2006",
		DateFormat: "%d/%m/%Y",
		Renames:    grid.DefaultRenames,
		Required:   grid.RequiredFields,
	}
}

func costLedger() grid.Variant {
	v := delimitedText()
	v.Name = "cost_ledger"
	v.Renames = map[string]string{
		"cantidad del producto": grid.FieldQuantity,
		"fecha":                 grid.FieldSaleDate,
		"sku":                   grid.FieldSKU,
		"costo":                 grid.FieldCost,
	}
	v.HasCost = true
	v.EditableCosts = true
	return v
}

// cells indexes result rows by key for lookups in assertions.
func cells(rows []grid.ResultRow) map[grid.Key]grid.ResultRow {
	m := make(map[grid.Key]grid.ResultRow, len(rows))
	for _, r := range rows {
		m[r.Key()] = r
	}
	return m
}
