// Package config loads the run configuration used by the labml command line.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/beyu9918/labml/internal/tracker/indicators"
)

// RunConfig describes a simulated training run.
type RunConfig struct {
	// Name is shown in the console header
	Name string `json:"name" yaml:"name"`

	// Epochs is the number of training epochs
	Epochs int `json:"epochs" yaml:"epochs"`

	// StepsPerEpoch is the number of training batches per epoch
	StepsPerEpoch int `json:"stepsPerEpoch" yaml:"stepsPerEpoch"`

	// WriteEvery writes the tracker state every N steps
	WriteEvery int `json:"writeEvery" yaml:"writeEvery"`

	// TestSamples is the number of samples scored at the end of each epoch
	TestSamples int `json:"testSamples" yaml:"testSamples"`

	// BatchSize is the number of samples per test batch
	BatchSize int `json:"batchSize" yaml:"batchSize"`

	// Seed makes the simulated values reproducible
	Seed int64 `json:"seed" yaml:"seed"`

	// Indicators are registered before the run starts. Names that are
	// stored without a definition become printable scalars.
	Indicators []indicators.Definition `json:"indicators,omitempty" yaml:"indicators,omitempty"`

	Output OutputConfig `json:"output" yaml:"output"`
}

// OutputConfig selects where the run writes.
type OutputConfig struct {
	// Log is a JSON Lines file receiving one record per write
	Log string `json:"log,omitempty" yaml:"log,omitempty"`

	// IndicatorsFile receives indicator definitions on every registration
	IndicatorsFile string `json:"indicatorsFile,omitempty" yaml:"indicatorsFile,omitempty"`

	// ArtifactsFile receives artifact definitions on every registration
	ArtifactsFile string `json:"artifactsFile,omitempty" yaml:"artifactsFile,omitempty"`

	// Async writes the log from a background goroutine
	Async bool `json:"async,omitempty" yaml:"async,omitempty"`
}

// LoadConfig loads a run configuration from a file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
func LoadConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data, path)
}

// ParseConfig parses configuration data, applies defaults and validates it.
//
// The format is determined by the file extension in path, or defaults to YAML
// if the path is empty or has an unknown extension.
func ParseConfig(data []byte, path string) (*RunConfig, error) {
	var config RunConfig

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		// Try YAML by default
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config (unknown format %s): %w", ext, err)
		}
	}

	ApplyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns a configuration with defaults applied.
func Default() *RunConfig {
	config := &RunConfig{}
	ApplyDefaults(config)
	return config
}

// ApplyDefaults fills in unset fields.
func ApplyDefaults(config *RunConfig) {
	if config.Name == "" {
		config.Name = "simulation"
	}
	if config.Epochs == 0 {
		config.Epochs = 3
	}
	if config.StepsPerEpoch == 0 {
		config.StepsPerEpoch = 200
	}
	if config.WriteEvery == 0 {
		config.WriteEvery = 50
	}
	if config.TestSamples == 0 {
		config.TestSamples = 100
	}
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}
	if config.Seed == 0 {
		config.Seed = 1
	}
	for i := range config.Indicators {
		if config.Indicators[i].Kind == indicators.KindQueue && config.Indicators[i].QueueSize == 0 {
			config.Indicators[i].QueueSize = indicators.DefaultQueueSize
		}
	}
}

// Validate checks a configuration for consistency.
func Validate(config *RunConfig) error {
	if config.Epochs < 0 {
		return fmt.Errorf("epochs must be positive, got %d", config.Epochs)
	}
	if config.StepsPerEpoch < 0 {
		return fmt.Errorf("stepsPerEpoch must be positive, got %d", config.StepsPerEpoch)
	}
	if config.WriteEvery < 0 {
		return fmt.Errorf("writeEvery must be positive, got %d", config.WriteEvery)
	}
	if config.BatchSize < 0 || config.TestSamples < 0 {
		return fmt.Errorf("testSamples and batchSize must be positive")
	}

	seen := make(map[string]bool)
	for i, def := range config.Indicators {
		if def.Name == "" {
			return fmt.Errorf("indicator %d has no name", i)
		}
		if !def.Kind.Valid() {
			return fmt.Errorf("indicator %s: unknown kind %q", def.Name, def.Kind)
		}
		if seen[def.Name] {
			return fmt.Errorf("indicator %s defined twice", def.Name)
		}
		seen[def.Name] = true
	}

	return nil
}
