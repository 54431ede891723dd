package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/warp/sales-grid/factory"
)

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List the registered variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tINPUT\tDATE FORMAT\tEXAMPLE\tCOST\tDESCRIPTION")
			for _, v := range factory.DefaultRegistry().List() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n", v.Name, v.Input, v.DateFormat, v.DateExample, v.HasCost, v.Description)
			}
			return w.Flush()
		},
	}
}
