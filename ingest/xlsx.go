package ingest

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/warp/sales-grid/grid"
	"github.com/xuri/excelize/v2"
)

// ErrNoSheet is returned for a workbook without worksheets.
var ErrNoSheet = errors.New("workbook has no sheets")

// ReadXLSX reads the first sheet of a workbook. Cells are read as stored,
// not as displayed: numbers keep their raw value whatever their number
// format, and numeric cells styled as dates become yyyy-mm-dd. Text cells
// are returned as typed.
func ReadXLSX(r io.Reader, name string) (grid.RawTable, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return grid.RawTable{}, readError(name, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return grid.RawTable{}, readError(name, ErrNoSheet)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return grid.RawTable{}, readError(name, err)
	}
	if len(rows) == 0 {
		return grid.RawTable{}, readError(name, ErrNoHeader)
	}

	dates := newDateCells(f)
	for i := 1; i < len(rows); i++ {
		for j, raw := range rows[i] {
			if d, ok := dates.value(sheet, j+1, i+1, raw); ok {
				rows[i][j] = d
			}
		}
	}
	return grid.RawTable{Headers: rows[0], Rows: rows[1:]}, nil
}

// =============================================================================
// DATE CELLS
// =============================================================================

// dateCells converts date serial numbers, caching the verdict per style.
type dateCells struct {
	f        *excelize.File
	date1904 bool
	styles   map[int]bool
}

func newDateCells(f *excelize.File) *dateCells {
	d := &dateCells{f: f, styles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

// value returns the cell as yyyy-mm-dd when it holds a serial number under
// a date number format. The time of day is dropped.
func (d *dateCells) value(sheet string, col, row int, raw string) (string, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", false
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", false
	}
	styleID, err := d.f.GetCellStyle(sheet, axis)
	if err != nil {
		return "", false
	}
	isDate, ok := d.styles[styleID]
	if !ok {
		if style, err := d.f.GetStyle(styleID); err == nil {
			isDate = isDateStyle(style)
		}
		d.styles[styleID] = isDate
	}
	if !isDate {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return "", false
	}
	return t.Format(grid.DateLayout), true
}

// Built-in number formats that carry a calendar date (time-only formats
// such as h:mm are left out).
var dateNumFmts = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

func isDateStyle(style *excelize.Style) bool {
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return dateNumFmts[style.NumFmt]
}

// isDateFormatCode reports whether a custom format code shows a day or a
// year. Quoted literals, escaped characters and [...] sections are ignored.
func isDateFormatCode(code string) bool {
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			inBracket = c != ']'
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\':
			i++
		case c == 'd', c == 'D', c == 'y', c == 'Y':
			return true
		}
	}
	return false
}
