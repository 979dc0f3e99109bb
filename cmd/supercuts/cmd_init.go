package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/supercuts/supercuts/internal/projectconfig"
	"github.com/supercuts/supercuts/internal/wizard"
	"golang.org/x/term"
)

const supercutsFileName = "supercuts.json"

func newInitCommand() *cobra.Command {
	var (
		useDefaults bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a starter supercuts.json and .supercuts.yaml",
		Long: `Create a starter supercuts.json with example cuts and a .supercuts.yaml
holding project defaults.

When stdin is a terminal a short wizard asks for the cuts, the event weight
field and the weights file. Use --defaults to skip it.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			interactive := !useDefaults && isTerminal(cmd.InOrStdin())
			return initCommandE(cmd, dir, interactive, force)
		},
	}

	cmd.Flags().BoolVar(&useDefaults, "defaults", false, "Write the example setup without asking")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}

func initCommandE(cmd *cobra.Command, dir string, interactive, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	cutsPath := filepath.Join(dir, supercutsFileName)
	configPath := filepath.Join(dir, projectconfig.FileName)
	if !force {
		for _, p := range []string{cutsPath, configPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", p)
			} else if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", p, err)
			}
		}
	}

	spec := wizard.DefaultSpec()
	if interactive {
		var err error
		spec, err = wizard.RunInitWizard(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
	}

	cuts, err := wizard.RenderSupercuts(spec.Definitions)
	if err != nil {
		return err
	}
	config, err := wizard.RenderProjectConfig(spec)
	if err != nil {
		return err
	}

	if err := os.WriteFile(cutsPath, cuts, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cutsPath, err)
	}
	if err := os.WriteFile(configPath, config, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `Created %[1]s
Created %[2]s

Next steps:
  1. Edit the cuts in %[1]s
  2. Add your sample to %[3]s
  3. Run: supercuts optimize --signal <file> --supercuts %[1]s
`, cutsPath, configPath, spec.WeightsFile) //nolint:errcheck
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
