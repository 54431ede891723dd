/*
Package export serializes result tables for download.

PURPOSE:
  The way out of the pipeline. Tables are written as UTF-8
  comma-separated text or as a single-sheet .xlsx workbook, with the
  column titles the sales team expects.

FORMATS:
  Result table:  Fecha de Venta, SKU, Cantidad Total [, Costo Total]
  Daily summary: Fecha de Venta, Costo Total por Día

  Dates are written yyyy-mm-dd and numbers in plain decimal notation,
  so the same table always serializes to the same bytes.

SEE ALSO:
  - ingest/: The way in
  - api/handlers.go: Export endpoint
*/
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/warp/sales-grid/grid"
)

const (
	HeaderDate          = "Fecha de Venta"
	HeaderSKU           = "SKU"
	HeaderQuantityTotal = "Cantidad Total"
	HeaderCostTotal     = "Costo Total"
	HeaderDailyCost     = "Costo Total por Día"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	TableResult  = "result"
	TableSummary = "summary"

	// Default download names.
	ResultFileName  = "cantidad_por_sku_y_fecha_completo"
	SummaryFileName = "costo_total_por_dia"
)

// ResultHeaders returns the column titles of the result table.
func ResultHeaders(withCost bool) []string {
	h := []string{HeaderDate, HeaderSKU, HeaderQuantityTotal}
	if withCost {
		h = append(h, HeaderCostTotal)
	}
	return h
}

// SummaryHeaders returns the column titles of the daily summary.
func SummaryHeaders() []string {
	return []string{HeaderDate, HeaderDailyCost}
}

// Table is a header row plus cells. Cells are strings or decimal.Decimal,
// so spreadsheet output can keep numbers numeric.
type Table struct {
	Headers []string
	Rows    [][]any
}

// ResultTable lays out the completed grid for export.
func ResultTable(rows []grid.ResultRow, withCost bool) Table {
	t := Table{Headers: ResultHeaders(withCost), Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		rec := []any{r.Date.String(), r.SKU, r.Quantity}
		if withCost {
			rec = append(rec, r.Cost)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t
}

// SummaryTable lays out the daily cost summary for export.
func SummaryTable(rows []grid.DailySummaryRow) Table {
	t := Table{Headers: SummaryHeaders(), Rows: make([][]any, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Date.String(), r.Cost})
	}
	return t
}

// Records renders every cell as text, header first.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Headers...))
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, c := range row {
			rec[i] = cellText(c)
		}
		out = append(out, rec)
	}
	return out
}

func cellText(c any) string {
	switch v := c.(type) {
	case string:
		return v
	case decimal.Decimal:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if format == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName returns the download name for a table in a format.
func FileName(table, format string) string {
	base := ResultFileName
	if table == TableSummary {
		base = SummaryFileName
	}
	return base + "." + format
}

// Write serializes t in the given format.
func Write(w io.Writer, format string, t Table) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatXLSX:
		return WriteXLSX(w, t)
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}
}
