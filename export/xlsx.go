package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the only sheet of an exported workbook.
const SheetName = "Sheet1"

// WriteXLSX writes t as a single-sheet workbook. Decimal cells become
// numeric cells; everything else is written as text.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(SheetName, "A1", &t.Headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, c := range row {
			if d, ok := c.(decimal.Decimal); ok {
				cells[j] = d.InexactFloat64()
				continue
			}
			cells[j] = cellText(c)
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, axis, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
