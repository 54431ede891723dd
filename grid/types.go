/*
Package grid provides the sales aggregation and date/SKU completion engine.

PURPOSE:
  Turns a raw sales export into a dense table with one row per
  (sale date, SKU) pair across the whole observed date span. Days on which
  a SKU sold nothing appear with quantity 0 instead of being absent.

PIPELINE:
  raw rows -> NormalizeHeaders -> ValidateSchema -> Coerce
           -> Aggregate -> Complete -> (Rollup) -> export

  Every stage is a pure function of its input. Pipeline.Run chains them
  for a given Variant.

KEY CONCEPTS IN THIS FILE (types.go):
  - RawTable: headers + string cells as read from a file
  - Field: a parsed cell value or an explicit "unparseable" marker
  - CanonicalRow: one sale with sku / quantity / sale_date / cost
  - AggregateRow: quantities summed per (date, sku), unique per Key
  - ResultRow: one grid cell after the zero-filling left join
  - DailySummaryRow: ResultRows rolled up by date

DESIGN PRINCIPLES:
  1. Precision: quantities and costs use decimal.Decimal
  2. Soft cells: a bad cell never aborts a run, it becomes a marker
  3. Determinism: output is ordered by date, then SKU

SEE ALSO:
  - complete.go: the Completion Engine
  - aggregate.go: group-by-sum and daily roll-up
  - pipeline.go: Variant and Pipeline
*/
package grid

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// CANONICAL FIELD NAMES
// =============================================================================

const (
	FieldSKU      = "sku"
	FieldQuantity = "quantity"
	FieldSaleDate = "sale_date"
	FieldCost     = "cost"
)

// RequiredFields is the default required canonical schema.
var RequiredFields = []string{FieldSKU, FieldQuantity, FieldSaleDate}

// =============================================================================
// RAW TABLE - What the ingest layer hands us
// =============================================================================

// RawTable is an uploaded sheet before any interpretation.
// Rows may be shorter than Headers; missing cells read as "".
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// =============================================================================
// FIELD - Parsed value or "unparseable" marker
// =============================================================================

// Field holds the outcome of coercing one cell.
// Valid is false when the raw text could not be parsed; Raw keeps the text.
type Field[T any] struct {
	Value T
	Valid bool
	Raw   string
}

func Parsed[T any](v T, raw string) Field[T] { return Field[T]{Value: v, Valid: true, Raw: raw} }
func Unparseable[T any](raw string) Field[T] { return Field[T]{Raw: raw} }

// OrZero returns the value for decimal fields, zero for the marker.
func OrZero(f Field[decimal.Decimal]) decimal.Decimal {
	if !f.Valid {
		return decimal.Zero
	}
	return f.Value
}

// =============================================================================
// ROWS
// =============================================================================

// CanonicalRow is one input sale after normalization and coercion.
type CanonicalRow struct {
	Line     int // 1-based data row number in the source (header excluded)
	SKU      string
	Quantity Field[decimal.Decimal]
	SaleDate Field[Date]
	Cost     Field[decimal.Decimal]
}

// Usable reports whether the row takes part in aggregation and completion.
func (r CanonicalRow) Usable() bool {
	return r.SaleDate.Valid && r.SKU != ""
}

// Key identifies one grid cell.
type Key struct {
	Date Date
	SKU  string
}

func (k Key) Less(other Key) bool {
	if !k.Date.Equal(other.Date) {
		return k.Date.Before(other.Date)
	}
	return k.SKU < other.SKU
}

// AggregateRow holds the sums for one observed (date, sku).
type AggregateRow struct {
	Date     Date            `json:"date"`
	SKU      string          `json:"sku"`
	Quantity decimal.Decimal `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

func (a AggregateRow) Key() Key { return Key{Date: a.Date, SKU: a.SKU} }

// ResultRow is one grid cell. Filled is true when no sale was observed for
// the cell and the zeros come from the left join.
type ResultRow struct {
	Date     Date            `json:"date"`
	SKU      string          `json:"sku"`
	Quantity decimal.Decimal `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
	Filled   bool            `json:"filled"`
}

func (r ResultRow) Key() Key { return Key{Date: r.Date, SKU: r.SKU} }

// DailySummaryRow totals every SKU for one date.
type DailySummaryRow struct {
	Date     Date            `json:"date"`
	Quantity decimal.Decimal `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

// CostEdit overrides the cost of one grid cell.
type CostEdit struct {
	Date Date            `json:"date"`
	SKU  string          `json:"sku"`
	Cost decimal.Decimal `json:"cost"`
}
