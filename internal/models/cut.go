package models

import "fmt"

// Direction is the comparison applied between an event value and a pivot.
// The empty direction means the cut passes every event.
type Direction string

// Direction constants
const (
	DirectionNone         Direction = ""
	DirectionLess         Direction = "<"
	DirectionLessEqual    Direction = "<="
	DirectionGreater      Direction = ">"
	DirectionGreaterEqual Direction = ">="
)

// Valid reports whether d is one of the supported comparison operators or empty.
func (d Direction) Valid() bool {
	switch d {
	case DirectionNone, DirectionLess, DirectionLessEqual, DirectionGreater, DirectionGreaterEqual:
		return true
	}
	return false
}

// CutMode tells whether a definition has a single pivot or sweeps a range.
type CutMode int

const (
	ModeFixed CutMode = iota + 1
	ModeSwept
)

// CutDefinition is one entry of a supercuts file: a selection boundary on
// one field, either at a fixed pivot or swept over [Start, Stop) by Step.
type CutDefinition struct {
	Field     string    `json:"branch" mapstructure:"branch"`
	Direction Direction `json:"signal_direction,omitempty" mapstructure:"signal_direction"`
	Pivot     *float64  `json:"pivot,omitempty" mapstructure:"pivot"`
	Start     *float64  `json:"start,omitempty" mapstructure:"start"`
	Stop      *float64  `json:"stop,omitempty" mapstructure:"stop"`
	Step      *float64  `json:"step,omitempty" mapstructure:"step"`
}

// Mode returns the definition's mode. A definition must carry either a
// pivot or the complete start/stop/step triple, never both.
func (d CutDefinition) Mode() (CutMode, error) {
	hasPivot := d.Pivot != nil
	rangeParts := 0
	for _, p := range []*float64{d.Start, d.Stop, d.Step} {
		if p != nil {
			rangeParts++
		}
	}

	switch {
	case hasPivot && rangeParts == 0:
		return ModeFixed, nil
	case !hasPivot && rangeParts == 3:
		return ModeSwept, nil
	case hasPivot:
		return 0, &SchemaError{Field: d.Field, Reason: "pivot cannot be combined with start/stop/step"}
	case rangeParts == 0:
		return 0, &SchemaError{Field: d.Field, Reason: "needs either pivot or start/stop/step"}
	default:
		return 0, &SchemaError{Field: d.Field, Reason: "start, stop and step must all be set"}
	}
}

// Cut is one resolved entry of a Combination.
type Cut struct {
	Field     string    `json:"branch"`
	Direction Direction `json:"signal_direction,omitempty"`
	Pivot     *float64  `json:"pivot"`
	Fixed     bool      `json:"fixed"`
}

// String renders the cut as e.g. "met > 100".
func (c Cut) String() string {
	if c.Pivot == nil || c.Direction == DirectionNone {
		return c.Field + " (pass)"
	}
	return fmt.Sprintf("%s %s %g", c.Field, c.Direction, *c.Pivot)
}

// Combination is a fully concrete set of cuts, one per definition, in
// definition order.
type Combination []Cut

// Clone returns a deep copy that shares no memory with c.
func (c Combination) Clone() Combination {
	out := make(Combination, len(c))
	for i, cut := range c {
		out[i] = cut
		if cut.Pivot != nil {
			v := *cut.Pivot
			out[i].Pivot = &v
		}
	}
	return out
}
