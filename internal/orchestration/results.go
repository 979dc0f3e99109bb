package orchestration

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/supercuts/supercuts/internal/models"
)

// SortByHash orders results by hash, descending.
func SortByHash(results []models.Result) {
	slices.SortStableFunc(results, func(a, b models.Result) int {
		return cmp.Compare(b.Hash, a.Hash)
	})
}

// Top returns the n results with the largest scaled yield, ties broken by
// hash descending. results is not modified. n <= 0 returns every result.
func Top(results []models.Result, n int) []models.Result {
	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b models.Result) int {
		if c := cmp.Compare(b.Details.Scaled, a.Details.Scaled); c != 0 {
			return c
		}
		return cmp.Compare(b.Hash, a.Hash)
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// WriteResults writes results as an indented JSON array.
func WriteResults(w io.Writer, results []models.Result) error {
	if results == nil {
		results = []models.Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(results)
}

// SaveResults writes results to path. The file only appears once it is
// completely written.
func SaveResults(path string, results []models.Result) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := WriteResults(tmp, results); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// LoadResults reads a file written by SaveResults.
func LoadResults(path string) ([]models.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.DataSourceError{Source: path, Err: err}
	}
	var results []models.Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, &models.DataSourceError{Source: path, Err: err}
	}
	return results, nil
}
