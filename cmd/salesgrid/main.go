/*
main.go - Offline entry point

PURPOSE:
  Runs the sales grid pipeline on a local file without the server:
  read, normalize, validate, coerce, aggregate, complete, write.

COMMANDS:
  process   Build the complete date x SKU table from one export
  variants  List the registered variants

EXIT CODES:
  0  success (warnings are logged, not fatal)
  1  the file could not be turned into a grid (read, schema, empty)
  2  bad command-line usage

EXAMPLES:
  salesgrid process --input ventas.csv --output grid.csv
  salesgrid process --input costos.csv --variant cost_ledger \
      --output grid.xlsx --format xlsx --summary por_dia.xlsx

SEE ALSO:
  - cmd/server/main.go: HTTP entry point
  - grid/pipeline.go: The pipeline itself
*/
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/warp/sales-grid/config"
	"github.com/warp/sales-grid/logging"
)

const (
	exitOK    = 0
	exitData  = 1
	exitUsage = 2
)

// exitError carries the process exit code alongside the message.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

type rootOptions struct {
	logLevel  string
	logFormat string
	logger    zerolog.Logger
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "salesgrid",
		Short:         "Complete date x SKU sales tables from raw exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(os.Stderr, opts.logLevel, opts.logFormat)
			if err != nil {
				return withCode(exitUsage, err)
			}
			opts.logger = logger
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "Log format: json or console")

	cmd.AddCommand(newProcessCmd(opts, cfg.DefaultVariant))
	cmd.AddCommand(newVariantsCmd())
	return cmd
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return exitUsage
	}
	return exitOK
}
