package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestDirectionValid(t *testing.T) {
	for _, d := range []Direction{"", "<", "<=", ">", ">="} {
		assert.True(t, d.Valid(), "direction %q", d)
	}
	for _, d := range []Direction{"=", "==", "=>", "gt", " >"} {
		assert.False(t, d.Valid(), "direction %q", d)
	}
}

func TestCutDefinitionMode(t *testing.T) {
	tests := []struct {
		name    string
		def     CutDefinition
		want    CutMode
		wantErr string
	}{
		{name: "fixed", def: CutDefinition{Field: "met", Pivot: f(100)}, want: ModeFixed},
		{name: "swept", def: CutDefinition{Field: "met", Start: f(0), Stop: f(200), Step: f(100)}, want: ModeSwept},
		{name: "empty", def: CutDefinition{Field: "met"}, wantErr: "needs either pivot"},
		{name: "partial triple", def: CutDefinition{Field: "met", Start: f(0), Stop: f(10)}, wantErr: "must all be set"},
		{name: "both forms", def: CutDefinition{Field: "met", Pivot: f(1), Step: f(1)}, wantErr: "cannot be combined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.def.Mode()
			if tt.wantErr != "" {
				require.Error(t, err)
				var schemaErr *SchemaError
				require.True(t, errors.As(err, &schemaErr))
				assert.Equal(t, "met", schemaErr.Field)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCombinationClone(t *testing.T) {
	orig := Combination{
		{Field: "met", Direction: DirectionGreater, Pivot: f(100)},
		{Field: "jets", Fixed: true},
	}

	cp := orig.Clone()
	*cp[0].Pivot = 500
	cp[1].Field = "changed"

	assert.Equal(t, 100.0, *orig[0].Pivot)
	assert.Equal(t, "jets", orig[1].Field)
	assert.Nil(t, cp[1].Pivot)
}

func TestCutString(t *testing.T) {
	assert.Equal(t, "met > 100", Cut{Field: "met", Direction: ">", Pivot: f(100)}.String())
	assert.Equal(t, "met (pass)", Cut{Field: "met", Direction: ">"}.String())
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "supercuts: met: duplicate definition", (&SchemaError{Field: "met", Reason: "duplicate definition"}).Error())
	assert.Equal(t, "configuration: 123456: num events is 0", (&ConfigurationError{Identifier: "123456", Reason: "num events is 0"}).Error())

	inner := errors.New("no such file")
	err := &DataSourceError{Source: "signal.csv", Field: "met", Err: inner}
	assert.Equal(t, `data source signal.csv: column "met": no such file`, err.Error())
	assert.ErrorIs(t, err, inner)
}
