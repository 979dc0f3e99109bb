// Package cache stores completed sweep outcomes on disk, keyed by a digest
// of every input that affects them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/supercuts/supercuts/internal/models"
)

// Cache provides caching for sweep outcomes
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key generates the cache key of a sweep. The key covers:
// - the supercuts document
// - the event weight field and scale factor
// - the contents of every dataset file
func Key(supercutsData []byte, datasetPaths []string, weightField string, scaleFactor float64) (string, error) {
	h := sha256.New()

	if _, err := h.Write(supercutsData); err != nil {
		return "", err
	}
	if err := writeString(h, ""); err != nil {
		return "", err
	}
	if err := writeString(h, weightField); err != nil {
		return "", err
	}
	if err := writeString(h, strconv.FormatFloat(scaleFactor, 'g', -1, 64)); err != nil {
		return "", err
	}
	if err := hashDatasets(h, datasetPaths); err != nil {
		return "", fmt.Errorf("hashing datasets: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached outcome if it exists
func (c *Cache) Get(key string) (*models.SweepOutcome, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		// Cache miss
		return nil, false
	}

	var outcome models.SweepOutcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &outcome, true
}

// Put stores an outcome in the cache
func (c *Cache) Put(key string, outcome *models.SweepOutcome) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshaling outcome: %w", err)
	}

	if err := os.WriteFile(c.cachePath(key), data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached outcomes
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Only remove directories that look like ours.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if filepath.Ext(entry.Name()) != ".json" {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func writeString(w io.Writer, s string) error {
	// Null byte delimiter prevents collisions between adjacent fields.
	_, err := w.Write([]byte(s + "\x00"))
	return err
}

func hashDatasets(h io.Writer, paths []string) error {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	for _, p := range sorted {
		if err := writeString(h, filepath.Base(p)); err != nil {
			return err
		}
		if err := hashFile(h, p); err != nil {
			return fmt.Errorf("hashing %s: %w", p, err)
		}
		if err := writeString(h, ""); err != nil {
			return err
		}
	}
	return nil
}

func hashFile(h io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	_, err = io.Copy(h, f)
	return err
}
