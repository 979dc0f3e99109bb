package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/supercuts/supercuts/internal/identity"
	"github.com/supercuts/supercuts/internal/models"
	"github.com/supercuts/supercuts/internal/supercuts"
)

// listedCombination is one entry of 'generate --list' output.
type listedCombination struct {
	Cuts models.Combination `json:"cuts"`
	Hash string             `json:"hash"`
}

func newGenerateCommand() *cobra.Command {
	var (
		supercutsPath string
		list          bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Count the combinations a supercuts file expands to",
		Long: `Validate a supercuts file and print how many combinations it expands to,
without reading any events.

With --list, every combination is printed as JSON together with its hash.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateCommandE(cmd, supercutsPath, list)
		},
	}

	cmd.Flags().StringVar(&supercutsPath, "supercuts", "", "JSON file with the cut definitions")
	cmd.Flags().BoolVar(&list, "list", false, "Print every combination as JSON")
	_ = cmd.MarkFlagRequired("supercuts")

	return cmd
}

func generateCommandE(cmd *cobra.Command, supercutsPath string, list bool) error {
	defs, err := supercuts.Load(supercutsPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !list {
		n, err := supercuts.Count(defs)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d cuts, %d combinations\n", len(defs), n) //nolint:errcheck
		return nil
	}

	seq, err := supercuts.Generate(defs)
	if err != nil {
		return err
	}
	listed := []listedCombination{}
	for c := range seq {
		listed = append(listed, listedCombination{Cuts: c, Hash: identity.Hash(c)})
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "    ")
	if err := enc.Encode(listed); err != nil {
		return fmt.Errorf("encoding combinations: %w", err)
	}
	return nil
}
