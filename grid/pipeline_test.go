package grid_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sales-grid/grid"
)

// =============================================================================
// END-TO-END PIPELINE
// =============================================================================

func TestPipeline_Run_DelimitedText(t *testing.T) {
	// GIVEN: A raw export with synonyms, a bad quantity and a gap day
	table := grid.RawTable{
		Headers: []string{"Fecha", " SKU ", "Cantidad del producto", "Sucursal"},
		Rows: [][]string{
			{"01/01/2024", "X", "1", "Centro"},
			{"01/01/2024", "Y", "2", "Centro"},
			{"03/01/2024", "X", "bad", "Norte"},
			{"03/01/2024", "Y", "4", "Norte"},
			{"", "", "", ""},
		},
	}

	// WHEN: Running the pipeline
	report, err := grid.NewPipeline(delimitedText()).Run(table)
	require.NoError(t, err)

	// THEN: The grid is complete and the warning surfaced
	assert.Equal(t, []string{"sale_date", "sku", "quantity", "sucursal"}, report.NormalizedColumns)
	assert.Equal(t, table.Headers, report.DetectedColumns)
	assert.Equal(t, 5, report.RowsRead)
	assert.Equal(t, 4, report.RowsUsed)
	assert.Len(t, report.Result, 6)
	assert.Equal(t, 3, report.Range.Len())
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, 3, report.Warnings[0].Line)
	assert.Nil(t, report.Summary, "no cost, no summary")

	x3 := cells(report.Result)[grid.Key{Date: jan(3), SKU: "X"}]
	assert.True(t, x3.Quantity.IsZero())
	assert.False(t, x3.Filled, "observed with a bad quantity is not a filled cell")
}

func TestPipeline_Run_SchemaErrorStopsEarly(t *testing.T) {
	table := grid.RawTable{
		Headers: []string{"Fecha", "Cantidad del producto"},
		Rows:    [][]string{{"01/01/2024", "1"}},
	}

	report, err := grid.NewPipeline(delimitedText()).Run(table)

	assert.Nil(t, report)
	var schemaErr *grid.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"sku"}, schemaErr.Missing)
}

func TestPipeline_Run_EmptyDatasetCountsRowsRead(t *testing.T) {
	// GIVEN: Every date is in the wrong format
	table := grid.RawTable{
		Headers: []string{"fecha", "sku", "cantidad del producto"},
		Rows: [][]string{
			{"2024-01-01", "A", "1"},
			{"2024-01-02", "A", "1"},
		},
	}

	_, err := grid.NewPipeline(delimitedText()).Run(table)

	var empty *grid.EmptyDatasetError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, 2, empty.RowsRead)
}

func TestPipeline_Run_CostLedgerHasSummary(t *testing.T) {
	table := grid.RawTable{
		Headers: []string{"fecha", "sku", "cantidad del producto", "costo"},
		Rows: [][]string{
			{"01/01/2024", "A", "1", "10"},
			{"01/01/2024", "B", "1", "2.5"},
			{"02/01/2024", "A", "1", "x"},
		},
	}

	report, err := grid.NewPipeline(costLedger()).Run(table)
	require.NoError(t, err)

	require.Len(t, report.Summary, 2)
	assert.True(t, dec("12.5").Equal(report.Summary[0].Cost))
	assert.True(t, report.Summary[1].Cost.IsZero())
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "cost", report.Warnings[0].Field)
}

func TestPipeline_Run_LogsCompletion(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	table := grid.RawTable{
		Headers: []string{"fecha", "sku", "cantidad del producto"},
		Rows:    [][]string{{"01/01/2024", "A", "1"}},
	}

	_, err := grid.NewPipeline(delimitedText(), grid.WithLogger(logger)).Run(table)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"sales grid completed"`)
	assert.Contains(t, buf.String(), `"variant":"delimited_text"`)
}

func TestNewPipeline_DefaultsRequiredAndRenames(t *testing.T) {
	p := grid.NewPipeline(grid.Variant{Name: "bare", DateLayout: "2006-01-02"})

	assert.Equal(t, grid.RequiredFields, p.Variant().Required)
	assert.Equal(t, grid.DefaultRenames, p.Variant().Renames)
}
