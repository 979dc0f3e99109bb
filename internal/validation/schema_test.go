package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSupercuts = `[
  {"branch": "met", "signal_direction": ">", "start": 0, "stop": 200, "step": 100},
  {"field": "n_jets", "signal_direction": ">=", "pivot": 4},
  {"branch": "weight_sys"}
]`

func TestValidateSupercutsBytes_Valid(t *testing.T) {
	errs := ValidateSupercutsBytes([]byte(validSupercuts))
	require.Empty(t, errs, "valid supercuts should have no errors")
}

func TestValidateSupercutsBytes_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantLoc string
	}{
		{name: "not an array", doc: `{"branch": "met"}`, wantLoc: "/"},
		{name: "empty array", doc: `[]`, wantLoc: "/"},
		{name: "missing branch", doc: `[{"pivot": 1}]`, wantLoc: "/0"},
		{name: "bad direction", doc: `[{"branch": "met", "signal_direction": "=>", "pivot": 1}]`, wantLoc: "/0/signal_direction"},
		{name: "string pivot", doc: `[{"branch": "met", "pivot": "high"}]`, wantLoc: "/0/pivot"},
		{name: "zero step", doc: `[{"branch": "met", "start": 0, "stop": 1, "step": 0}]`, wantLoc: "/0/step"},
		{name: "empty branch", doc: `[{"branch": "", "pivot": 1}]`, wantLoc: "/0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateSupercutsBytes([]byte(tt.doc))
			require.NotEmpty(t, errs)

			found := false
			for _, e := range errs {
				if strings.HasPrefix(e, tt.wantLoc) {
					found = true
				}
			}
			assert.True(t, found, "expected an error at %s, got %v", tt.wantLoc, errs)
		})
	}
}

func TestValidateSupercutsBytes_MalformedJSON(t *testing.T) {
	errs := ValidateSupercutsBytes([]byte(`[{"branch": "met",`))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "JSON parse error")
}
