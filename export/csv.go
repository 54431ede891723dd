package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes t as UTF-8, comma-separated text with a header row.
func WriteCSV(w io.Writer, t Table) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
