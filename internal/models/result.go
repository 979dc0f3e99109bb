package models

import "github.com/supercuts/supercuts/internal/metrics"

// SignificanceRecord holds the yields of one combination. Raw is the number
// of selected events, Weighted the sum of their weights and Scaled the
// weighted sum multiplied by the dataset scale factor.
//
// Fields are declared in JSON key order so serialized output has sorted keys.
type SignificanceRecord struct {
	Raw      int     `json:"signal"`
	Scaled   float64 `json:"signalScaled"`
	Weighted float64 `json:"signalWeighted"`
}

// Result pairs a combination's identity hash with its record.
type Result struct {
	Details SignificanceRecord `json:"details"`
	Hash    string             `json:"hash"`
}

// SweepSummary describes a completed sweep.
type SweepSummary struct {
	Combinations int                  `json:"combinations"`
	Best         *Result              `json:"best,omitempty"`
	Yield        metrics.YieldSummary `json:"scaled_yield"`
	ScaleFactor  float64              `json:"scale_factor"`
	DurationMs   int64                `json:"duration_ms"`
}

// SweepOutcome is the complete result of a sweep: every record sorted by
// hash in descending order, plus a summary.
type SweepOutcome struct {
	Results []Result     `json:"results"`
	Summary SweepSummary `json:"summary"`
}
