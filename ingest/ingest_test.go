package ingest_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sales-grid/grid"
	"github.com/warp/sales-grid/ingest"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// =============================================================================
// DELIMITED TEXT
// =============================================================================

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(b)
}

func TestReadCSV_DecodesLatin1(t *testing.T) {
	// GIVEN: An ISO-8859-1 export with an accented SKU and a quoted cell
	data := latin1(t, "Fecha;SKU;Cantidad del producto\n01/01/2024;CAFÉ;3\n02/01/2024;\"AÑO;2\";1\n")

	// WHEN: Reading with the default dialect
	table, err := ingest.ReadCSV(bytes.NewReader(data), "ventas.csv", ingest.DefaultCSVOptions())

	// THEN: Text comes back as UTF-8, the quoted ';' stays in the cell
	require.NoError(t, err)
	assert.Equal(t, []string{"Fecha", "SKU", "Cantidad del producto"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "CAFÉ", table.Rows[0][1])
	assert.Equal(t, "AÑO;2", table.Rows[1][1])
}

func TestReadCSV_RaggedRows(t *testing.T) {
	data := "fecha;sku;cantidad del producto\n01/01/2024;A\n01/01/2024;B;1;extra\n"

	table, err := ingest.ReadCSV(strings.NewReader(data), "ragged.csv", ingest.DefaultCSVOptions())

	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Len(t, table.Rows[0], 2)
	assert.Len(t, table.Rows[1], 4)
}

func TestReadCSV_UTF8WithBOM(t *testing.T) {
	data := "\ufefffecha,sku,cantidad del producto\n01/01/2024,A,1\n"

	table, err := ingest.ReadCSV(strings.NewReader(data), "utf8.csv", ingest.UTF8CSVOptions(','))

	require.NoError(t, err)
	assert.Equal(t, "fecha", table.Headers[0])
}

func TestReadCSV_BareQuoteIsLiteral(t *testing.T) {
	// GIVEN: A product name carrying an inch mark in an unquoted field
	data := latin1(t, "fecha;sku;cantidad del producto\n01/01/2024;TV 32\";1\n02/01/2024;\"B\";2\n")

	// WHEN: Reading with the default dialect
	table, err := ingest.ReadCSV(bytes.NewReader(data), "ventas.csv", ingest.DefaultCSVOptions())

	// THEN: The quote stays in the SKU and the next row still parses
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"01/01/2024", "TV 32\"", "1"}, table.Rows[0])
	assert.Equal(t, "B", table.Rows[1][1])
}

func TestReadCSV_FailingSourceIsReadError(t *testing.T) {
	// GIVEN: A source that breaks mid-read
	r := iotest.ErrReader(errors.New("connection reset"))

	// WHEN: Reading
	_, err := ingest.ReadCSV(r, "broken.csv", ingest.DefaultCSVOptions())

	// THEN: The whole file is rejected
	assert.ErrorIs(t, err, grid.ErrRead)
	var readErr *grid.ReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "broken.csv", readErr.Source)
}

func TestReadCSV_EmptyFile(t *testing.T) {
	_, err := ingest.ReadCSV(strings.NewReader(""), "empty.csv", ingest.DefaultCSVOptions())

	assert.ErrorIs(t, err, grid.ErrRead)
	assert.ErrorIs(t, err, ingest.ErrNoHeader)
}

// =============================================================================
// SPREADSHEET
// =============================================================================

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", axis, &row))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestReadXLSX_FirstSheet(t *testing.T) {
	// GIVEN: A workbook with a header row and two data rows
	buf := workbook(t,
		[]any{"Fecha", "SKU", "Cantidad del producto"},
		[]any{"2024-01-01", "A", 3},
		[]any{"2024-01-03", "B", 1.5},
	)

	// WHEN: Reading it
	table, err := ingest.ReadXLSX(buf, "ventas.xlsx")

	// THEN: Headers and cell text come back
	require.NoError(t, err)
	assert.Equal(t, []string{"Fecha", "SKU", "Cantidad del producto"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2024-01-01", "A", "3"}, table.Rows[0])
	assert.Equal(t, "1.5", table.Rows[1][2])
}

func TestReadXLSX_DateCellsWithoutStyle(t *testing.T) {
	// GIVEN: Sale dates written as real date values, default date style
	buf := workbook(t,
		[]any{"Fecha", "SKU", "Cantidad del producto"},
		[]any{time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "X", 1500},
		[]any{time.Date(2024, time.January, 3, 18, 30, 0, 0, time.UTC), "X", 2},
	)

	// WHEN: Reading it
	table, err := ingest.ReadXLSX(buf, "ventas.xlsx")

	// THEN: Dates come back as yyyy-mm-dd without the time of day
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2024-01-01", "X", "1500"}, table.Rows[0])
	assert.Equal(t, "2024-01-03", table.Rows[1][0])
}

func TestReadXLSX_FormattedCellsReadAsStored(t *testing.T) {
	// GIVEN: Dates shown as dd/mm/yyyy and quantities shown with a thousands separator
	f := excelize.NewFile()
	defer f.Close()
	dateFmt := "dd/mm/yyyy"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	require.NoError(t, err)
	qtyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	require.NoError(t, err)

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Fecha", "SKU", "Cantidad del producto"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), "X", 1500}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), "X", 12.5}))
	require.NoError(t, f.SetCellStyle("Sheet1", "A2", "A3", dateStyle))
	require.NoError(t, f.SetCellStyle("Sheet1", "C2", "C3", qtyStyle))
	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)

	// WHEN: Reading it
	table, err := ingest.ReadXLSX(&buf, "ventas.xlsx")

	// THEN: Display formats are ignored
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2024-01-01", "X", "1500"}, table.Rows[0])
	assert.Equal(t, []string{"2024-01-02", "X", "12.5"}, table.Rows[1])
}

func TestReadXLSX_HeaderOnly(t *testing.T) {
	buf := workbook(t, []any{"fecha", "sku", "cantidad del producto"})

	table, err := ingest.ReadXLSX(buf, "vacio.xlsx")

	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	_, err := ingest.ReadXLSX(strings.NewReader("fecha;sku\n"), "ventas.xlsx")

	assert.ErrorIs(t, err, grid.ErrRead)
}

func TestReadXLSX_EmptySheet(t *testing.T) {
	_, err := ingest.ReadXLSX(workbook(t), "vacio.xlsx")

	assert.ErrorIs(t, err, ingest.ErrNoHeader)
}

// =============================================================================
// FORMAT SELECTION
// =============================================================================

func TestFormatFor(t *testing.T) {
	assert.Equal(t, ingest.FormatXLSX, ingest.FormatFor("Ventas.XLSX", ingest.FormatCSV))
	assert.Equal(t, ingest.FormatCSV, ingest.FormatFor("ventas.csv", ingest.FormatXLSX))
	assert.Equal(t, ingest.FormatXLSX, ingest.FormatFor("upload", ingest.FormatXLSX))
	assert.Equal(t, ingest.FormatCSV, ingest.FormatFor("upload", ""))
}

func TestRead_DispatchesOnFormat(t *testing.T) {
	buf := workbook(t, []any{"fecha", "sku", "cantidad del producto"}, []any{"2024-01-01", "A", 1})

	table, err := ingest.Read(buf, "x", ingest.FormatXLSX)

	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}
