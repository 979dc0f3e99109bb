package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/supercuts/supercuts/internal/orchestration"
	"github.com/supercuts/supercuts/internal/projectconfig"
	"github.com/supercuts/supercuts/internal/reporting"
)

func newSummaryCommand() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "summary <significances.json>",
		Short: "Rank the combinations of an existing results file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := orchestration.LoadResults(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d combinations in %s\n\n%s", len(results), args[0], reporting.FormatTop(results, top)) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", projectconfig.DefaultTop, "Number of combinations to show (0 for all)")

	return cmd
}
