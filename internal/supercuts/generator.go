package supercuts

import (
	"fmt"
	"iter"
	"math"

	"github.com/supercuts/supercuts/internal/models"
)

// maxDomainSize bounds a single sweep dimension.
const maxDomainSize = 1 << 24

// Domain returns the pivots a definition takes: the pivot itself for a
// fixed cut, or start, start+step, ... up to but excluding stop for a swept
// one. A sweep whose step never reaches stop is a SchemaError.
func Domain(def models.CutDefinition) ([]float64, error) {
	mode, err := def.Mode()
	if err != nil {
		return nil, err
	}
	if mode == models.ModeFixed {
		return []float64{*def.Pivot}, nil
	}

	start, stop, step := *def.Start, *def.Stop, *def.Step
	n := math.Ceil((stop - start) / step)
	if math.IsNaN(n) || n <= 0 {
		return nil, &models.SchemaError{
			Field:  def.Field,
			Reason: fmt.Sprintf("step %g does not move from %g toward %g", step, start, stop),
		}
	}
	if n > maxDomainSize {
		return nil, &models.SchemaError{Field: def.Field, Reason: fmt.Sprintf("sweep has too many values (%g)", n)}
	}

	// start + i*step rather than accumulating, so rounding error does not grow.
	values := make([]float64, int(n))
	for i := range values {
		values[i] = start + float64(i)*step
	}
	// rounding in the count can reach stop itself; pivots stay strictly before it
	for len(values) > 0 && !before(values[len(values)-1], stop, step) {
		values = values[:len(values)-1]
	}
	if len(values) == 0 {
		return nil, &models.SchemaError{
			Field:  def.Field,
			Reason: fmt.Sprintf("step %g does not move from %g toward %g", step, start, stop),
		}
	}
	return values, nil
}

// before reports whether v lies strictly on the start side of stop.
func before(v, stop, step float64) bool {
	if step > 0 {
		return v < stop
	}
	return v > stop
}

// Count returns the number of combinations the definitions expand to.
func Count(defs []models.CutDefinition) (int, error) {
	total := 1
	for _, def := range defs {
		d, err := Domain(def)
		if err != nil {
			return 0, err
		}
		if total > math.MaxInt/len(d) {
			return 0, &models.SchemaError{Field: def.Field, Reason: "combination count overflows"}
		}
		total *= len(d)
	}
	return total, nil
}

// Generate validates every definition and returns a lazy sequence over all
// combinations. Dimensions follow definition order with the last one varying
// fastest; each dimension's values follow generation order. The sequence
// can be ranged over any number of times. Each yielded Combination is a new
// value the caller may keep or modify.
func Generate(defs []models.CutDefinition) (iter.Seq[models.Combination], error) {
	domains := make([][]float64, len(defs))
	fixed := make([]bool, len(defs))
	for i, def := range defs {
		d, err := Domain(def)
		if err != nil {
			return nil, err
		}
		domains[i] = d
		fixed[i] = def.Pivot != nil
	}

	return func(yield func(models.Combination) bool) {
		idx := make([]int, len(defs))
		for {
			combo := make(models.Combination, len(defs))
			for i, def := range defs {
				pivot := domains[i][idx[i]]
				combo[i] = models.Cut{
					Field:     def.Field,
					Direction: def.Direction,
					Pivot:     &pivot,
					Fixed:     fixed[i],
				}
			}
			if !yield(combo) {
				return
			}

			// advance the odometer
			pos := len(idx) - 1
			for ; pos >= 0; pos-- {
				idx[pos]++
				if idx[pos] < len(domains[pos]) {
					break
				}
				idx[pos] = 0
			}
			if pos < 0 {
				return
			}
		}
	}, nil
}

// Expand materializes every combination.
func Expand(defs []models.CutDefinition) ([]models.Combination, error) {
	n, err := Count(defs)
	if err != nil {
		return nil, err
	}
	seq, err := Generate(defs)
	if err != nil {
		return nil, err
	}
	out := make([]models.Combination, 0, n)
	for c := range seq {
		out = append(out, c)
	}
	return out, nil
}
