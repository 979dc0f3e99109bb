// Package projectconfig provides the ProjectConfig struct and loader for
// .supercuts.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".supercuts.yaml"

// Default values for project configuration.
const (
	DefaultEventWeight = "event_weight"
	DefaultWeightsFile = "weights.yml"
	DefaultOutput      = "significances.json"
	DefaultWorkers     = 4
	DefaultTop         = 10

	DefaultCacheDir = ".supercuts-cache"
)

// DefaultsConfig holds default sweep parameters.
type DefaultsConfig struct {
	EventWeight string `yaml:"event_weight,omitempty"`
	WeightsFile string `yaml:"weights_file,omitempty"`
	Output      string `yaml:"output,omitempty"`
	Parallel    *bool  `yaml:"parallel,omitempty"`
	Workers     int    `yaml:"workers,omitempty"`
	Top         int    `yaml:"top,omitempty"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .supercuts.yaml.
type ProjectConfig struct {
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`

	// Dir is the directory relative paths in the file are resolved
	// against: the one holding the file, or the start directory when no
	// file was found.
	Dir string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Defaults: DefaultsConfig{
			EventWeight: DefaultEventWeight,
			WeightsFile: DefaultWeightsFile,
			Output:      DefaultOutput,
			Parallel:    boolPtr(false),
			Workers:     DefaultWorkers,
			Top:         DefaultTop,
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
	}
}

// Load finds .supercuts.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()
	if abs, err := filepath.Abs(startDir); err == nil {
		cfg.Dir = abs
	}

	data, path, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Marshal renders cfg as YAML.
func (c *ProjectConfig) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// findConfigFile walks up from dir looking for .supercuts.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if src.Defaults.EventWeight != "" {
		dst.Defaults.EventWeight = src.Defaults.EventWeight
	}
	if src.Defaults.WeightsFile != "" {
		dst.Defaults.WeightsFile = src.Defaults.WeightsFile
	}
	if src.Defaults.Output != "" {
		dst.Defaults.Output = src.Defaults.Output
	}
	if src.Defaults.Parallel != nil {
		dst.Defaults.Parallel = src.Defaults.Parallel
	}
	if src.Defaults.Workers != 0 {
		dst.Defaults.Workers = src.Defaults.Workers
	}
	if src.Defaults.Top != 0 {
		dst.Defaults.Top = src.Defaults.Top
	}

	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
}

func boolPtr(b bool) *bool {
	return &b
}
