package ingest

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/warp/sales-grid/grid"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVOptions describes the dialect of a delimited export.
type CSVOptions struct {
	Delimiter rune
	Encoding  encoding.Encoding // nil reads the bytes as UTF-8
}

// DefaultCSVOptions matches the sales export: ';', ISO-8859-1.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Delimiter: ';', Encoding: charmap.ISO8859_1}
}

// UTF8CSVOptions reads UTF-8 text, skipping a leading byte order mark.
func UTF8CSVOptions(delimiter rune) CSVOptions {
	return CSVOptions{Delimiter: delimiter, Encoding: unicode.UTF8BOM}
}

// ReadCSV decodes and parses a delimited export. Rows may have fewer or more
// fields than the header; the grid layer treats missing cells as blank. A
// quote inside an unquoted field is kept as a literal character.
func ReadCSV(r io.Reader, name string, opts CSVOptions) (grid.RawTable, error) {
	if opts.Encoding != nil {
		r = transform.NewReader(r, opts.Encoding.NewDecoder())
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return grid.RawTable{}, readError(name, ErrNoHeader)
	}
	if err != nil {
		return grid.RawTable{}, readError(name, err)
	}

	table := grid.RawTable{Headers: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return grid.RawTable{}, readError(name, err)
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}
