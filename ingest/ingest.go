/*
Package ingest turns uploaded files into grid.RawTable values.

PURPOSE:
  The only place that knows about file formats on the way in. Delimited
  text exports are ';'-separated, '"'-quoted and ISO-8859-1 encoded.
  Spreadsheets are .xlsx workbooks whose first sheet holds the table.

ERRORS:
  Any failure to parse is returned as *grid.ReadError; the upload is
  rejected as a whole. Cell contents are not interpreted here.

SEE ALSO:
  - grid/pipeline.go: Consumes RawTable
  - export/: The way out
*/
package ingest

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/warp/sales-grid/grid"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ErrNoHeader is returned when the file has no header row.
var ErrNoHeader = errors.New("file has no header row")

// FormatFor picks the reader from the file extension, falling back to the
// variant's expected input.
func FormatFor(fileName, fallback string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".csv", ".txt":
		return FormatCSV
	}
	if fallback == FormatXLSX {
		return FormatXLSX
	}
	return FormatCSV
}

// Read parses r in the given format. name is only used in error messages.
func Read(r io.Reader, name, format string) (grid.RawTable, error) {
	if format == FormatXLSX {
		return ReadXLSX(r, name)
	}
	return ReadCSV(r, name, DefaultCSVOptions())
}

func readError(name string, err error) error {
	return &grid.ReadError{Source: name, Err: err}
}
