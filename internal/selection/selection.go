// Package selection turns cut combinations into event masks and counts the
// events they keep.
package selection

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/supercuts/supercuts/internal/dataset"
	"github.com/supercuts/supercuts/internal/models"
)

// Mask marks which events pass a selection.
type Mask []bool

// Count returns the number of selected events.
func (m Mask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

func allTrue(n int) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = true
	}
	return m
}

// ApplyCut compares every value against pivot. A nil pivot or an
// unrecognized direction keeps every event.
func ApplyCut(values []float64, pivot *float64, dir models.Direction) Mask {
	if pivot == nil {
		return allTrue(len(values))
	}

	p := *pivot
	m := make(Mask, len(values))
	switch dir {
	case models.DirectionLess:
		for i, v := range values {
			m[i] = v < p
		}
	case models.DirectionLessEqual:
		for i, v := range values {
			m[i] = v <= p
		}
	case models.DirectionGreater:
		for i, v := range values {
			m[i] = v > p
		}
	case models.DirectionGreaterEqual:
		for i, v := range values {
			m[i] = v >= p
		}
	default:
		if dir != models.DirectionNone {
			slog.Debug("Unrecognized cut direction, passing all events", "direction", string(dir))
		}
		return allTrue(len(values))
	}
	return m
}

// ApplySelection ANDs the masks of every cut in c. A cut on a field the
// dataset lacks is a SchemaError.
func ApplySelection(ds dataset.Source, c models.Combination) (Mask, error) {
	m := allTrue(ds.Len())
	for _, cut := range c {
		values, err := ds.Column(cut.Field)
		if err != nil {
			if errors.Is(err, dataset.ErrNoColumn) {
				return nil, &models.SchemaError{Field: cut.Field, Reason: "not present in the dataset"}
			}
			return nil, fmt.Errorf("reading column %s: %w", cut.Field, err)
		}
		if len(values) != len(m) {
			return nil, &models.DataSourceError{
				Field: cut.Field,
				Err:   fmt.Errorf("has %d entries, dataset has %d", len(values), len(m)),
			}
		}

		cm := ApplyCut(values, cut.Pivot, cut.Direction)
		for i := range m {
			m[i] = m[i] && cm[i]
		}
	}
	return m, nil
}

// CountEvents returns how many events m selects and the sum of their
// weights.
func CountEvents(ds dataset.Source, m Mask, weightField string) (int, float64, error) {
	weights, err := ds.Column(weightField)
	if err != nil {
		return 0, 0, fmt.Errorf("event weight: %w", err)
	}
	if len(weights) != len(m) {
		return 0, 0, &models.DataSourceError{
			Field: weightField,
			Err:   fmt.Errorf("has %d entries, mask has %d", len(weights), len(m)),
		}
	}

	n := 0
	sum := 0.0
	for i, keep := range m {
		if keep {
			n++
			sum += weights[i]
		}
	}
	return n, sum, nil
}
