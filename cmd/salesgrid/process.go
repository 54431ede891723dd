package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/warp/sales-grid/export"
	"github.com/warp/sales-grid/factory"
	"github.com/warp/sales-grid/grid"
	"github.com/warp/sales-grid/ingest"
)

type processOptions struct {
	input   string
	variant string
	output  string
	summary string
	format  string
}

func newProcessCmd(root *rootOptions, defaultVariant string) *cobra.Command {
	var opts processOptions

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Build the complete date x SKU table from one sales export",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.OutOrStdout(), root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "Input file, or - for stdin (required)")
	cmd.Flags().StringVar(&opts.variant, "variant", defaultVariant, "Variant name (see: salesgrid variants)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Result file, - for stdout (default: "+export.ResultFileName+".<format>)")
	cmd.Flags().StringVar(&opts.summary, "summary", "", "Daily cost summary file (cost variants only)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format: csv or xlsx (default: from --output extension, else csv)")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runProcess(stdout io.Writer, root *rootOptions, opts processOptions) error {
	logger := root.logger

	v, err := factory.DefaultRegistry().Get(opts.variant)
	if err != nil {
		return withCode(exitUsage, err)
	}
	if opts.summary != "" && !v.HasCost {
		return withCode(exitUsage, fmt.Errorf("--summary: %w", grid.ErrNoSummary))
	}
	if opts.output == "-" && opts.summary == "-" {
		return withCode(exitUsage, errors.New("--output and --summary cannot both write to stdout"))
	}

	format, err := outputFormat(opts.format, opts.output)
	if err != nil {
		return withCode(exitUsage, err)
	}

	table, err := readInput(opts.input, v)
	if err != nil {
		return withCode(exitData, err)
	}

	report, err := grid.NewPipeline(v, grid.WithLogger(logger)).Run(table)
	if err != nil {
		return withCode(exitData, err)
	}

	for _, w := range report.Warnings {
		logger.Warn().Int("line", w.Line).Str("field", w.Field).Str("value", w.Value).Msg(w.Reason)
	}

	output := opts.output
	if output == "" {
		output = export.FileName(export.TableResult, format)
	}
	if err := writeTable(stdout, output, format, export.ResultTable(report.Result, v.HasCost)); err != nil {
		return withCode(exitData, err)
	}

	if opts.summary != "" {
		summaryFormat := format
		if ext := formatFromExt(opts.summary); ext != "" {
			summaryFormat = ext
		}
		if err := writeTable(stdout, opts.summary, summaryFormat, export.SummaryTable(report.Summary)); err != nil {
			return withCode(exitData, err)
		}
	}

	logger.Info().
		Str("variant", v.Name).
		Str("range", report.Range.String()).
		Int("skus", len(report.SKUs)).
		Int("rows", len(report.Result)).
		Int("warnings", len(report.Warnings)).
		Str("output", output).
		Msg("done")
	return nil
}

func readInput(path string, v grid.Variant) (grid.RawTable, error) {
	if path == "-" {
		return ingest.Read(os.Stdin, "-", v.Input)
	}
	f, err := os.Open(path)
	if err != nil {
		return grid.RawTable{}, &grid.ReadError{Source: path, Err: err}
	}
	defer f.Close()
	return ingest.Read(f, filepath.Base(path), ingest.FormatFor(path, v.Input))
}

func writeTable(stdout io.Writer, path, format string, t export.Table) error {
	if path == "-" {
		return export.Write(stdout, format, t)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, format, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func outputFormat(flagValue, output string) (string, error) {
	switch strings.ToLower(flagValue) {
	case export.FormatCSV:
		return export.FormatCSV, nil
	case export.FormatXLSX:
		return export.FormatXLSX, nil
	case "":
		if ext := formatFromExt(output); ext != "" {
			return ext, nil
		}
		return export.FormatCSV, nil
	default:
		return "", errors.New("unsupported --format: " + flagValue)
	}
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return export.FormatXLSX
	case ".csv":
		return export.FormatCSV
	}
	return ""
}
