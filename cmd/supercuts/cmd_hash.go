package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/supercuts/supercuts/internal/identity"
	"github.com/supercuts/supercuts/internal/models"
	"github.com/supercuts/supercuts/internal/supercuts"
)

func newHashCommand() *cobra.Command {
	var supercutsPath string

	cmd := &cobra.Command{
		Use:   "hash [hash...]",
		Short: "Show the cuts behind combination hashes",
		Long: `Print every combination of a supercuts file with its hash.

When hashes are given, print only the combinations they identify. A hash may
be abbreviated to any unique prefix, such as the one shown by 'summary'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return hashCommandE(cmd, supercutsPath, args)
		},
	}

	cmd.Flags().StringVar(&supercutsPath, "supercuts", "", "JSON file with the cut definitions")
	_ = cmd.MarkFlagRequired("supercuts")

	return cmd
}

func hashCommandE(cmd *cobra.Command, supercutsPath string, wanted []string) error {
	defs, err := supercuts.Load(supercutsPath)
	if err != nil {
		return err
	}
	seq, err := supercuts.Generate(defs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	found := make(map[string]bool, len(wanted))
	for c := range seq {
		h := identity.Hash(c)
		if len(wanted) > 0 {
			matched := matchPrefixes(h, wanted)
			if len(matched) == 0 {
				continue
			}
			for _, p := range matched {
				found[p] = true
			}
		}
		fmt.Fprintf(out, "%s  %s\n", h, describe(c)) //nolint:errcheck
	}

	var missing []string
	for _, w := range wanted {
		if !found[w] {
			missing = append(missing, w)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no combination has hash %s", strings.Join(missing, ", "))
	}
	return nil
}

// matchPrefixes returns every prefix that hash starts with.
func matchPrefixes(hash string, prefixes []string) []string {
	var matched []string
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(hash, strings.TrimSuffix(p, "…")) {
			matched = append(matched, p)
		}
	}
	return matched
}

// describe renders a combination as "met > 100, jet_pt > 25".
func describe(c models.Combination) string {
	parts := make([]string, len(c))
	for i, cut := range c {
		parts[i] = cut.String()
	}
	return strings.Join(parts, ", ")
}
