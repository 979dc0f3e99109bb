package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/supercuts/supercuts/internal/cache"
	"github.com/supercuts/supercuts/internal/projectconfig"
	"github.com/supercuts/supercuts/internal/utils"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the sweep cache",
		Long: `Manage the sweep cache.

The cache stores complete sweep outcomes so that repeating a sweep with the
same inputs is instant. Entries are keyed by the supercuts file, the contents
of the signal files, the event weight field and the scale factor.`,
	}

	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheClearCommand() *cobra.Command {
	var cacheDir string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the sweep cache",
		Long: `Clear all cached sweeps.

The next optimize run with --cache will sweep from scratch. The directory
defaults to cache.dir from .supercuts.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("cache-dir") {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("getting working directory: %w", err)
				}
				cfg, err := projectconfig.Load(wd)
				if err != nil {
					return err
				}
				cacheDir = utils.ResolvePath(cfg.Cache.Dir, cfg.Dir)
			}
			return cacheClearE(cmd, cacheDir)
		},
	}

	cmd.Flags().StringVar(&cacheDir, "cache-dir", projectconfig.DefaultCacheDir, "Cache directory to clear")

	return cmd
}

func cacheClearE(cmd *cobra.Command, dir string) error {
	// Resolve to absolute path
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving cache directory: %w", err)
	}

	c := cache.New(absDir)
	if err := c.Clear(); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", absDir) //nolint:errcheck
	return nil
}
