package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supercuts",
		Short: "Supercuts - brute-force cut optimization for signal selection",
		Long: `Supercuts sweeps every combination of a set of selection cuts over a
signal dataset and records the selected yield of each combination.

Combinations are identified by a stable hash, so results from different runs
can be compared and a hash can be looked up again to recover its cuts.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output with per-combination progress")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newOptimizeCommand())
	cmd.AddCommand(newHashCommand())
	cmd.AddCommand(newGenerateCommand())
	cmd.AddCommand(newSummaryCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newCacheCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
