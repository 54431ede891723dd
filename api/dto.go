/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the grid engine's types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Variants:  VariantDTO
  Uploads:   UploadDTO, ResultRowDTO, WarningDTO
  Summary:   SummaryDTO, DailySummaryDTO
  Costs:     EditCostsRequest, CostEditDTO
  Errors:    ErrorResponse

NUMBERS:
  Quantities and costs are exact decimals in the engine and float64 here.
  Dates are YYYY-MM-DD strings.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/sales-grid/grid"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// VariantDTO describes a registered variant.
type VariantDTO struct {
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Input         string            `json:"input"`
	DateFormat    string            `json:"date_format"`
	DateExample   string            `json:"date_example"`
	Columns       map[string]string `json:"columns"`
	Required      []string          `json:"required"`
	Cost          bool              `json:"cost"`
	EditableCosts bool              `json:"editable_costs"`
}

// ResultRowDTO is one grid cell.
type ResultRowDTO struct {
	Date     string   `json:"date"`
	SKU      string   `json:"sku"`
	Quantity float64  `json:"quantity"`
	Cost     *float64 `json:"cost,omitempty"`
	Filled   bool     `json:"filled"`
}

// WarningDTO is a cell that could not be parsed.
type WarningDTO struct {
	Line   int    `json:"line"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// DailySummaryDTO is the total for one date.
type DailySummaryDTO struct {
	Date     string  `json:"date"`
	Quantity float64 `json:"quantity"`
	Cost     float64 `json:"cost"`
}

// UploadDTO is returned after an upload and by GET /api/uploads/{id}.
type UploadDTO struct {
	ID                string            `json:"id"`
	Variant           string            `json:"variant"`
	FileName          string            `json:"file_name,omitempty"`
	DetectedColumns   []string          `json:"detected_columns,omitempty"`
	NormalizedColumns []string          `json:"normalized_columns,omitempty"`
	RangeStart        string            `json:"range_start"`
	RangeEnd          string            `json:"range_end"`
	Days              int               `json:"days"`
	SKUs              []string          `json:"skus"`
	RowsRead          int               `json:"rows_read,omitempty"`
	RowsUsed          int               `json:"rows_used,omitempty"`
	Warnings          []WarningDTO      `json:"warnings"`
	Result            []ResultRowDTO    `json:"result"`
	Summary           []DailySummaryDTO `json:"summary,omitempty"`
	Edited            bool              `json:"edited"`
	CreatedAt         string            `json:"created_at"`
	ExpiresAt         string            `json:"expires_at,omitempty"`
}

// SummaryDTO wraps the daily summary of a session.
type SummaryDTO struct {
	ID      string            `json:"id"`
	Edited  bool              `json:"edited"`
	Summary []DailySummaryDTO `json:"summary"`
}

// CostEditDTO overrides the cost of one grid cell.
type CostEditDTO struct {
	Date string  `json:"date"`
	SKU  string  `json:"sku"`
	Cost float64 `json:"cost"`
}

// EditCostsRequest is the body of PUT /api/uploads/{id}/costs.
type EditCostsRequest struct {
	Edits []CostEditDTO `json:"edits"`
}

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details string   `json:"details,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toVariantDTO(v grid.Variant) VariantDTO {
	return VariantDTO{
		Name:          v.Name,
		Description:   v.Description,
		Input:         v.Input,
		DateFormat:    v.DateFormat,
		DateExample:   v.DateExample,
		Columns:       v.Renames,
		Required:      v.Required,
		Cost:          v.HasCost,
		EditableCosts: v.EditableCosts,
	}
}

func toResultRowDTOs(rows []grid.ResultRow, withCost bool) []ResultRowDTO {
	dtos := make([]ResultRowDTO, len(rows))
	for i, r := range rows {
		dtos[i] = ResultRowDTO{
			Date:     r.Date.String(),
			SKU:      r.SKU,
			Quantity: r.Quantity.InexactFloat64(),
			Filled:   r.Filled,
		}
		if withCost {
			c := r.Cost.InexactFloat64()
			dtos[i].Cost = &c
		}
	}
	return dtos
}

func toWarningDTOs(warnings []grid.CellCoercionWarning) []WarningDTO {
	dtos := make([]WarningDTO, len(warnings))
	for i, w := range warnings {
		dtos[i] = WarningDTO{Line: w.Line, Field: w.Field, Value: w.Value, Reason: w.Reason}
	}
	return dtos
}

func toDailySummaryDTOs(rows []grid.DailySummaryRow) []DailySummaryDTO {
	dtos := make([]DailySummaryDTO, len(rows))
	for i, r := range rows {
		dtos[i] = DailySummaryDTO{
			Date:     r.Date.String(),
			Quantity: r.Quantity.InexactFloat64(),
			Cost:     r.Cost.InexactFloat64(),
		}
	}
	return dtos
}

func toUploadDTO(s *grid.Session, v grid.Variant) UploadDTO {
	dto := UploadDTO{
		ID:         s.ID,
		Variant:    s.Variant,
		FileName:   s.FileName,
		RangeStart: s.Range.Start.String(),
		RangeEnd:   s.Range.End.String(),
		Days:       s.Range.Len(),
		SKUs:       s.SKUs,
		Warnings:   toWarningDTOs(s.Warnings),
		Result:     toResultRowDTOs(s.Result, v.HasCost),
		Edited:     s.Edited,
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
	}
	if v.HasCost {
		dto.Summary = toDailySummaryDTOs(grid.Rollup(s.Result))
	}
	if !s.ExpiresAt.IsZero() {
		dto.ExpiresAt = s.ExpiresAt.Format(time.RFC3339)
	}
	return dto
}

func fromCostEditDTOs(dtos []CostEditDTO) ([]grid.CostEdit, error) {
	edits := make([]grid.CostEdit, len(dtos))
	for i, d := range dtos {
		date, err := grid.ParseDate(grid.DateLayout, d.Date)
		if err != nil {
			return nil, err
		}
		edits[i] = grid.CostEdit{Date: date, SKU: d.SKU, Cost: decimal.NewFromFloat(d.Cost)}
	}
	return edits, nil
}
