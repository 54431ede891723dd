/*
pipeline.go - One linear pass from raw table to result table

PURPOSE:
  Chains the stages for one upload:
    1. NormalizeHeaders  (rename table of the Variant)
    2. ValidateSchema    (fatal SchemaError)
    3. Coerce            (soft CellCoercionWarnings)
    4. Aggregate         (sum per date/SKU)
    5. Complete          (dense grid, fatal EmptyDatasetError)
    6. Rollup            (only for variants that carry costs)

  Nothing is read back from a later stage. A Report holds everything the
  upload/display/download layer needs.

VARIANTS:
  A Variant fixes the date layout, the rename table, the required fields
  and whether a cost column is carried. They are normally built by the
  factory package from JSON.

SEE ALSO:
  - factory/variant.go: JSON -> Variant
  - api/handlers.go: Runs a Pipeline per upload
*/
package grid

import (
	"errors"

	"github.com/rs/zerolog"
)

// Variant is the fixed configuration for one kind of sales export.
type Variant struct {
	Name          string
	Description   string
	Input         string            // expected upload format: "csv" or "xlsx"
	DateLayout    string            // Go layout for sale_date cells
	DateFormat    string            // same layout in strftime form, for messages
	DateExample   string            // a sample date written in DateFormat
	Renames       map[string]string // trimmed lowercase header -> canonical name
	Required      []string
	HasCost       bool // cost column is read and summed
	EditableCosts bool // grid cell costs may be overridden by the user
}

// Report is the outcome of one successful run.
type Report struct {
	Variant           string                `json:"variant"`
	DetectedColumns   []string              `json:"detected_columns"`
	NormalizedColumns []string              `json:"normalized_columns"`
	Range             DateRange             `json:"range"`
	SKUs              []string              `json:"skus"`
	RowsRead          int                   `json:"rows_read"`
	RowsUsed          int                   `json:"rows_used"`
	Warnings          []CellCoercionWarning `json:"warnings"`
	Aggregates        []AggregateRow        `json:"-"`
	Result            []ResultRow           `json:"result"`
	Summary           []DailySummaryRow     `json:"summary,omitempty"`
}

// Pipeline runs uploads through one Variant.
type Pipeline struct {
	variant Variant
	logger  zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for warnings and run statistics.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline for v. Logging is off unless WithLogger is given.
func NewPipeline(v Variant, opts ...Option) *Pipeline {
	if len(v.Required) == 0 {
		v.Required = RequiredFields
	}
	if v.Renames == nil {
		v.Renames = DefaultRenames
	}
	p := &Pipeline{variant: v, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Variant returns the pipeline's configuration.
func (p *Pipeline) Variant() Variant { return p.variant }

// Run processes one table. A returned error is always fatal for the upload
// and is one of *SchemaError or *EmptyDatasetError.
func (p *Pipeline) Run(table RawTable) (*Report, error) {
	log := p.logger.With().Str("variant", p.variant.Name).Logger()

	headers := NormalizeHeaders(table.Headers, p.variant.Renames)
	if err := ValidateSchema(headers, p.variant.Required); err != nil {
		log.Warn().Err(err).Strs("columns", headers).Msg("schema validation failed")
		return nil, err
	}

	rows, warnings := Coerce(headers, table.Rows, p.variant)
	for _, w := range warnings {
		log.Debug().Int("line", w.Line).Str("field", w.Field).Str("value", w.Value).Msg(w.Reason)
	}

	usable := Usable(rows)
	aggregates := Aggregate(usable)
	result, g, err := Complete(usable, aggregates)
	if err != nil {
		var empty *EmptyDatasetError
		if errors.As(err, &empty) {
			empty.RowsRead = len(table.Rows)
		}
		log.Warn().Err(err).Msg("nothing to complete")
		return nil, err
	}

	if warnings == nil {
		warnings = []CellCoercionWarning{}
	}

	report := &Report{
		Variant:           p.variant.Name,
		DetectedColumns:   append([]string(nil), table.Headers...),
		NormalizedColumns: headers,
		Range:             g.Range,
		SKUs:              g.SKUs,
		RowsRead:          len(table.Rows),
		RowsUsed:          len(usable),
		Warnings:          warnings,
		Aggregates:        aggregates,
		Result:            result,
	}
	if p.variant.HasCost {
		report.Summary = Rollup(result)
	}

	log.Info().
		Int("rows_read", report.RowsRead).
		Int("rows_used", report.RowsUsed).
		Int("days", g.Range.Len()).
		Int("skus", len(g.SKUs)).
		Int("warnings", len(warnings)).
		Msg("sales grid completed")
	return report, nil
}
