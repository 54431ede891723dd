package factory

import (
	"fmt"

	"github.com/warp/sales-grid/grid"
)

// =============================================================================
// BUILT-IN VARIANTS
// =============================================================================

const (
	VariantDelimitedText = "delimited_text"
	VariantSpreadsheet   = "spreadsheet"
	VariantCostLedger    = "cost_ledger"
)

// DelimitedTextJSON is the ';'-separated ISO-8859-1 export with dd/mm/yyyy dates.
func DelimitedTextJSON() string {
	return fmt.Sprintf(`{
		"name": %q,
		"description": "CSV export: quantity per SKU and sale date, full date range",
		"input": "csv",
		"date_format": "%%d/%%m/%%Y",
		"columns": {
			"cantidad del producto": %q,
			"fecha": %q,
			"sku": %q
		},
		"required": [%q, %q, %q]
	}`, VariantDelimitedText,
		grid.FieldQuantity, grid.FieldSaleDate, grid.FieldSKU,
		grid.FieldSKU, grid.FieldQuantity, grid.FieldSaleDate)
}

// SpreadsheetJSON is the .xlsx export with yyyy-mm-dd dates.
func SpreadsheetJSON() string {
	return fmt.Sprintf(`{
		"name": %q,
		"description": "Spreadsheet export: quantity per SKU and sale date, full date range",
		"input": "xlsx",
		"date_format": "%%Y-%%m-%%d",
		"columns": {
			"cantidad del producto": %q,
			"fecha": %q,
			"sku": %q
		}
	}`, VariantSpreadsheet,
		grid.FieldQuantity, grid.FieldSaleDate, grid.FieldSKU)
}

// CostLedgerJSON carries a cost column whose per-cell values the user can
// override before the daily cost summary is recomputed.
func CostLedgerJSON() string {
	return fmt.Sprintf(`{
		"name": %q,
		"description": "CSV export with costs: editable cost per SKU and day, daily cost totals",
		"input": "csv",
		"date_format": "%%d/%%m/%%Y",
		"columns": {
			"cantidad del producto": %q,
			"fecha": %q,
			"sku": %q,
			"costo": %q,
			"costo del producto": %q,
			"costo total": %q
		},
		"cost": true,
		"editable_costs": true
	}`, VariantCostLedger,
		grid.FieldQuantity, grid.FieldSaleDate, grid.FieldSKU,
		grid.FieldCost, grid.FieldCost, grid.FieldCost)
}

// Presets returns the JSON of every built-in variant.
func Presets() []string {
	return []string{DelimitedTextJSON(), SpreadsheetJSON(), CostLedgerJSON()}
}
