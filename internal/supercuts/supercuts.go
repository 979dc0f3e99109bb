// Package supercuts loads cut specifications and expands them into every
// concrete cut combination.
package supercuts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/supercuts/supercuts/internal/models"
	"github.com/supercuts/supercuts/internal/validation"
)

// Load reads a supercuts JSON file and returns its validated definitions.
func Load(path string) ([]models.CutDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.DataSourceError{Source: path, Err: err}
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return defs, nil
}

// Parse validates a supercuts document and decodes it. Every definition is
// checked here, so a returned slice can always be expanded.
func Parse(data []byte) ([]models.CutDefinition, error) {
	if errs := validation.ValidateSupercutsBytes(data); len(errs) > 0 {
		return nil, &models.SchemaError{Reason: strings.Join(errs, "; ")}
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &models.SchemaError{Reason: fmt.Sprintf("decoding: %v", err)}
	}

	defs := make([]models.CutDefinition, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, obj := range raw {
		def, err := decodeDefinition(obj)
		if err != nil {
			return nil, fmt.Errorf("definition %d: %w", i, err)
		}
		if seen[def.Field] {
			return nil, &models.SchemaError{Field: def.Field, Reason: "found more than one supercut definition"}
		}
		seen[def.Field] = true

		if _, err := Domain(def); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// decodeDefinition accepts both "branch" and "field" as the field key.
func decodeDefinition(obj map[string]any) (models.CutDefinition, error) {
	var def models.CutDefinition

	branch, hasBranch := obj["branch"].(string)
	field, hasField := obj["field"].(string)
	if hasBranch && hasField && branch != field {
		return def, &models.SchemaError{Field: branch, Reason: fmt.Sprintf("branch and field disagree (%q)", field)}
	}
	if !hasBranch && hasField {
		obj["branch"] = field
	}

	if err := mapstructure.Decode(obj, &def); err != nil {
		return def, &models.SchemaError{Field: def.Field, Reason: err.Error()}
	}
	if !def.Direction.Valid() {
		return def, &models.SchemaError{Field: def.Field, Reason: fmt.Sprintf("unsupported signal_direction %q", def.Direction)}
	}
	return def, nil
}
