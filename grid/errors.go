/*
errors.go - Centralized error types for the grid engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers branch with errors.Is on the sentinels or errors.As on the
  structured types to get the details.

ERROR CATEGORIES:
  1. Fatal pipeline errors - ReadError, SchemaError, EmptyDatasetError.
     The run stops and the message is shown to the user as-is.
  2. Soft cell failures - CellCoercionWarning. Collected, never returned
     as an error.
  3. Session errors - lookup and editing of stored uploads.

SEE ALSO:
  - coerce.go: Produces CellCoercionWarning
  - complete.go: Produces EmptyDatasetError
  - api/handlers.go: Maps these to HTTP status codes
*/
package grid

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRead is returned when the input cannot be parsed at all.
	ErrRead = errors.New("input could not be read")

	// ErrSchema is returned when required canonical fields are missing.
	ErrSchema = errors.New("required columns missing")

	// ErrEmptyDataset is returned when no row has a usable sale date and SKU.
	ErrEmptyDataset = errors.New("no usable rows")

	// ErrSessionNotFound is returned when an upload session doesn't exist or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUnknownCell is returned when a cost edit targets a cell outside the grid.
	ErrUnknownCell = errors.New("cell not in grid")

	// ErrCostsNotEditable is returned when editing costs on a variant without costs.
	ErrCostsNotEditable = errors.New("variant does not carry editable costs")

	// ErrNoSummary is returned when asking a variant without costs for a daily cost summary.
	ErrNoSummary = errors.New("variant has no daily cost summary")

	// ErrUnknownVariant is returned when a variant name isn't registered.
	ErrUnknownVariant = errors.New("unknown variant")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ReadError wraps a parser failure (encoding, delimiter, corrupt file).
type ReadError struct {
	Source string // file name or "-" for stdin
	Err    error
}

func (e *ReadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("could not read file: %v", e.Err)
	}
	return fmt.Sprintf("could not read file %s: %v", e.Source, e.Err)
}

func (e *ReadError) Unwrap() []error { return []error{ErrRead, e.Err} }

// SchemaError lists every required field absent after normalization,
// in the order they were required.
type SchemaError struct {
	Missing []string
	Found   []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: [%s]", strings.Join(quoteAll(e.Missing), ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// EmptyDatasetError means no grid can be built.
type EmptyDatasetError struct {
	RowsRead int
	Reason   string
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("no usable rows: %s (%d rows read)", e.Reason, e.RowsRead)
}

func (e *EmptyDatasetError) Unwrap() error { return ErrEmptyDataset }

// UnknownCellError names the edit that missed the grid.
type UnknownCellError struct {
	Key Key
}

func (e *UnknownCellError) Error() string {
	return fmt.Sprintf("cell not in grid: %s / %q", e.Key.Date, e.Key.SKU)
}

func (e *UnknownCellError) Unwrap() error { return ErrUnknownCell }

// =============================================================================
// SOFT FAILURES
// =============================================================================

// CellCoercionWarning records a cell that failed to parse. The row is kept
// with the field marked unparseable.
type CellCoercionWarning struct {
	Line   int    `json:"line"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (w CellCoercionWarning) String() string {
	return fmt.Sprintf("line %d: %s %q: %s", w.Line, w.Field, w.Value, w.Reason)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is caused by the uploaded data or
// the request rather than by the service.
func IsClientError(err error) bool {
	return errors.Is(err, ErrRead) ||
		errors.Is(err, ErrSchema) ||
		errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrUnknownCell) ||
		errors.Is(err, ErrCostsNotEditable) ||
		errors.Is(err, ErrNoSummary) ||
		errors.Is(err, ErrUnknownVariant)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
