package grid

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TYPE COERCER - Row-level soft failures
// =============================================================================

// ParseQuantity parses a numeric cell. Blank or non-numeric text yields the
// unparseable marker, never an error.
func ParseQuantity(raw string) Field[decimal.Decimal] {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Unparseable[decimal.Decimal](raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Unparseable[decimal.Decimal](raw)
	}
	return Parsed(d, raw)
}

// ParseSaleDate parses a date cell with the variant's fixed layout.
func ParseSaleDate(layout, raw string) Field[Date] {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Unparseable[Date](raw)
	}
	d, err := ParseDate(layout, s)
	if err != nil {
		return Unparseable[Date](raw)
	}
	return Parsed(d, raw)
}

// Coerce converts the data rows of a normalized table into CanonicalRows.
// headers must already be normalized and validated. Every row is returned,
// usable or not; warnings describe each cell that failed.
func Coerce(headers []string, rows [][]string, v Variant) ([]CanonicalRow, []CellCoercionWarning) {
	skuCol := columnIndex(headers, FieldSKU)
	qtyCol := columnIndex(headers, FieldQuantity)
	dateCol := columnIndex(headers, FieldSaleDate)
	costCol := -1
	if v.HasCost {
		costCol = columnIndex(headers, FieldCost)
	}

	dateHint := v.DateFormat
	if v.DateExample != "" {
		dateHint += " (e.g. " + v.DateExample + ")"
	}

	out := make([]CanonicalRow, 0, len(rows))
	var warnings []CellCoercionWarning
	warn := func(line int, field, value, reason string) {
		warnings = append(warnings, CellCoercionWarning{Line: line, Field: field, Value: value, Reason: reason})
	}

	for i, row := range rows {
		line := i + 1
		if isBlankRow(row) {
			continue
		}

		cr := CanonicalRow{
			Line:     line,
			SKU:      strings.TrimSpace(cell(row, skuCol)),
			Quantity: ParseQuantity(cell(row, qtyCol)),
			SaleDate: ParseSaleDate(v.DateLayout, cell(row, dateCol)),
			Cost:     Parsed(decimal.Zero, ""),
		}
		if costCol >= 0 {
			cr.Cost = ParseQuantity(cell(row, costCol))
			if !cr.Cost.Valid {
				warn(line, FieldCost, cr.Cost.Raw, "not a number, counted as 0")
			}
		}

		if cr.SKU == "" {
			warn(line, FieldSKU, cell(row, skuCol), "blank, row excluded")
		}
		if !cr.Quantity.Valid {
			warn(line, FieldQuantity, cr.Quantity.Raw, "not a number, counted as 0")
		}
		if !cr.SaleDate.Valid {
			warn(line, FieldSaleDate, cr.SaleDate.Raw, "does not match "+dateHint+", row excluded")
		}

		out = append(out, cr)
	}
	return out, warnings
}

// Usable filters rows down to those with a sale date and a SKU.
func Usable(rows []CanonicalRow) []CanonicalRow {
	out := make([]CanonicalRow, 0, len(rows))
	for _, r := range rows {
		if r.Usable() {
			out = append(out, r)
		}
	}
	return out
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
