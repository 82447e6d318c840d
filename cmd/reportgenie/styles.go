package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sant0-9/reportgenie/internal/style"
)

func newStylesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "List the available report styles",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STYLE\tCAPTION\tOUTPUT\tDESCRIPTION")
			for _, info := range style.All() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", info.Slug, info.Caption, info.Filename, info.Description)
			}
			return w.Flush()
		},
	}
}
