// Package weights reads per-dataset normalization metadata and derives the
// scale factor that converts weighted event counts into expected yields.
package weights

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/supercuts/supercuts/internal/models"
	"gopkg.in/yaml.v3"
)

// LuminosityKey is the top-level key holding the integrated luminosity.
const LuminosityKey = "global_luminosity"

// luminosityUnits converts luminosity (fb^-1) to match cross sections in pb.
const luminosityUnits = 1000

var didPattern = regexp.MustCompile(`\d{6,8}`)

// Entry is the normalization metadata of one dataset.
type Entry struct {
	NumEvents        *float64 `yaml:"num events"`
	CrossSection     *float64 `yaml:"cross section"`
	FilterEfficiency *float64 `yaml:"filter efficiency"`
	KFactor          *float64 `yaml:"k-factor"`
}

// File is a parsed weights file.
type File struct {
	Luminosity *float64
	Entries    map[string]Entry

	logger *slog.Logger
}

// Option configures a File.
type Option func(*File)

// WithLogger sets the logger used to trace scale factor computations.
func WithLogger(l *slog.Logger) Option {
	return func(f *File) {
		f.logger = l
	}
}

// Load reads a weights YAML file.
func Load(path string, opts ...Option) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.DataSourceError{Source: path, Err: err}
	}
	f, err := Parse(data, opts...)
	if err != nil {
		return nil, &models.DataSourceError{Source: path, Err: err}
	}
	return f, nil
}

// Parse decodes weights YAML. Every top-level key other than
// global_luminosity is a dataset identifier.
func Parse(data []byte, opts ...Option) (*File, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing weights: %w", err)
	}

	f := &File{Entries: make(map[string]Entry, len(raw)), logger: slog.Default()}
	for _, o := range opts {
		o(f)
	}

	for key, node := range raw {
		if key == LuminosityKey {
			var lumi float64
			if err := node.Decode(&lumi); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", LuminosityKey, err)
			}
			f.Luminosity = &lumi
			continue
		}
		var e Entry
		if err := node.Decode(&e); err != nil {
			return nil, fmt.Errorf("parsing weights for %s: %w", key, err)
		}
		f.Entries[key] = e
	}
	return f, nil
}

// ExtractDID returns the dataset identifier embedded in a file name: the
// first run of six to eight digits in its base name.
func ExtractDID(filename string) (string, error) {
	did := didPattern.FindString(filepath.Base(filename))
	if did == "" {
		return "", &models.ConfigurationError{Identifier: filename, Reason: "can't figure out the DID"}
	}
	return did, nil
}

// ScaleFactor computes
//
//	(1 / num events) × cross section × filter efficiency × k-factor × luminosity × 1000
//
// for the given dataset identifier.
func (f *File) ScaleFactor(did string) (float64, error) {
	e, ok := f.Entries[did]
	if !ok {
		return 0, &models.ConfigurationError{Identifier: did, Reason: "could not find the weights"}
	}
	if f.Luminosity == nil {
		return 0, &models.ConfigurationError{Identifier: LuminosityKey, Reason: "missing from weights file"}
	}

	factors := []struct {
		name  string
		value *float64
	}{
		{"num events", e.NumEvents},
		{"cross section", e.CrossSection},
		{"filter efficiency", e.FilterEfficiency},
		{"k-factor", e.KFactor},
	}
	for _, fc := range factors {
		if fc.value == nil {
			return 0, &models.ConfigurationError{Identifier: did, Reason: fc.name + " is missing"}
		}
	}
	if *e.NumEvents == 0 {
		return 0, &models.ConfigurationError{Identifier: did, Reason: "num events is 0"}
	}

	scale := 1.0 / *e.NumEvents
	f.logger.Debug("Scale factor", "did", did, "step", "cutflow", "num_events", *e.NumEvents, "scale", scale)
	scale *= *e.CrossSection
	f.logger.Debug("Scale factor", "did", did, "step", "cross section", "value", *e.CrossSection, "scale", scale)
	scale *= *e.FilterEfficiency
	f.logger.Debug("Scale factor", "did", did, "step", "filter efficiency", "value", *e.FilterEfficiency, "scale", scale)
	scale *= *e.KFactor
	f.logger.Debug("Scale factor", "did", did, "step", "k-factor", "value", *e.KFactor, "scale", scale)
	scale *= *f.Luminosity * luminosityUnits
	f.logger.Debug("Scale factor", "did", did, "step", "luminosity", "value", *f.Luminosity, "scale", scale)

	return scale, nil
}

// ScaleFactorForFile extracts the dataset identifier from filename and
// returns its scale factor.
func (f *File) ScaleFactorForFile(filename string) (float64, error) {
	did, err := ExtractDID(filename)
	if err != nil {
		return 0, err
	}
	return f.ScaleFactor(did)
}
