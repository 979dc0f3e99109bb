package utils

import (
	"errors"
	"path/filepath"

	"github.com/supercuts/supercuts/internal/models"
)

var errNoMatch = errors.New("pattern matches no files")

// ResolvePath returns path unchanged when it is absolute or empty, and
// joined onto baseDir otherwise.
func ResolvePath(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResolvePaths applies ResolvePath to every entry.
func ResolvePaths(paths []string, baseDir string) []string {
	if len(paths) == 0 {
		return nil
	}
	resolved := make([]string, 0, len(paths))
	for _, path := range paths {
		resolved = append(resolved, ResolvePath(path, baseDir))
	}
	return resolved
}

// ExpandGlobs expands shell patterns into file paths, keeping the order of
// the patterns and dropping duplicates. A literal path without glob
// metacharacters is kept even if it does not exist, so the reader reports
// it. A pattern that matches nothing is a DataSourceError.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			add(pattern)
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, &models.DataSourceError{Source: pattern, Err: err}
		}
		if len(matches) == 0 {
			return nil, &models.DataSourceError{Source: pattern, Err: errNoMatch}
		}
		for _, m := range matches {
			add(m)
		}
	}
	return out, nil
}

func hasMeta(path string) bool {
	for _, c := range path {
		switch c {
		case '*', '?', '[', '\\':
			return true
		}
	}
	return false
}
