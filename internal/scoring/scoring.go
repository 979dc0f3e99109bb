// Package scoring turns event counts into significance records.
package scoring

import (
	"github.com/supercuts/supercuts/internal/dataset"
	"github.com/supercuts/supercuts/internal/models"
	"github.com/supercuts/supercuts/internal/selection"
)

// Score builds a record from raw and weighted counts. The scaled yield is
// weighted × scaleFactor; scaleFactor is not validated.
func Score(raw int, weighted, scaleFactor float64) models.SignificanceRecord {
	return models.SignificanceRecord{
		Raw:      raw,
		Weighted: weighted,
		Scaled:   weighted * scaleFactor,
	}
}

// Evaluate selects events with c and scores them.
func Evaluate(ds dataset.Source, c models.Combination, weightField string, scaleFactor float64) (models.SignificanceRecord, error) {
	mask, err := selection.ApplySelection(ds, c)
	if err != nil {
		return models.SignificanceRecord{}, err
	}
	raw, weighted, err := selection.CountEvents(ds, mask, weightField)
	if err != nil {
		return models.SignificanceRecord{}, err
	}
	return Score(raw, weighted, scaleFactor), nil
}
