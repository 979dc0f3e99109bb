// Package dataset provides read-only columnar event data.
package dataset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/supercuts/supercuts/internal/models"
)

//go:generate go tool mockgen -source=source.go -destination=source_mock.go -package=dataset

// ErrNoColumn is wrapped by the DataSourceError returned for an absent column.
var ErrNoColumn = errors.New("no such column")

// Source exposes event columns by name. All columns have Len() entries and
// must not be modified by callers.
type Source interface {
	Column(name string) ([]float64, error)
	Len() int
}

// Columns is an in-memory Source.
type Columns struct {
	name string
	n    int
	cols map[string][]float64
}

// NewColumns builds a Source from equally long columns. name identifies the
// data in error messages.
func NewColumns(name string, cols map[string][]float64) (*Columns, error) {
	c := &Columns{name: name, n: -1, cols: make(map[string][]float64, len(cols))}
	for _, field := range sortedKeys(cols) {
		values := cols[field]
		if c.n >= 0 && len(values) != c.n {
			return nil, &models.DataSourceError{
				Source: name,
				Field:  field,
				Err:    fmt.Errorf("has %d entries, expected %d", len(values), c.n),
			}
		}
		c.n = len(values)
		c.cols[field] = values
	}
	if c.n < 0 {
		c.n = 0
	}
	return c, nil
}

// Column returns the named column or a DataSourceError if it is absent.
func (c *Columns) Column(name string) ([]float64, error) {
	values, ok := c.cols[name]
	if !ok {
		return nil, &models.DataSourceError{Source: c.name, Field: name, Err: ErrNoColumn}
	}
	return values, nil
}

// Len returns the number of events.
func (c *Columns) Len() int {
	return c.n
}

// Fields lists the column names in sorted order.
func (c *Columns) Fields() []string {
	return sortedKeys(c.cols)
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
