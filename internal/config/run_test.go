package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beyu9918/labml/internal/tracker/indicators"
)

func TestParseConfig_YAML(t *testing.T) {
	data := []byte(`
name: mnist
epochs: 2
stepsPerEpoch: 100
writeEvery: 10
indicators:
  - kind: Queue
    name: train_loss
    isPrint: true
  - kind: IndexedScalar
    name: test_sample_loss
output:
  log: run.jsonl
  indicatorsFile: indicators.yaml
`)

	config, err := ParseConfig(data, "run.yaml")
	require.NoError(t, err)

	assert.Equal(t, "mnist", config.Name)
	assert.Equal(t, 2, config.Epochs)
	assert.Equal(t, 100, config.StepsPerEpoch)
	assert.Equal(t, 10, config.WriteEvery)
	assert.Equal(t, 100, config.TestSamples)
	assert.Equal(t, "run.jsonl", config.Output.Log)
	require.Len(t, config.Indicators, 2)
	assert.Equal(t, indicators.DefaultQueueSize, config.Indicators[0].QueueSize)
	assert.True(t, config.Indicators[0].IsPrint)
}

func TestParseConfig_JSON(t *testing.T) {
	data := []byte(`{"name": "json-run", "seed": 7, "indicators": [{"kind": "Histogram", "name": "weights"}]}`)

	config, err := ParseConfig(data, "run.json")
	require.NoError(t, err)
	assert.Equal(t, "json-run", config.Name)
	assert.Equal(t, int64(7), config.Seed)
	assert.Equal(t, indicators.KindHistogram, config.Indicators[0].Kind)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{"bad yaml", "epochs: [", "run.yaml"},
		{"bad json", "{", "run.json"},
		{"negative epochs", "epochs: -1", "run.yaml"},
		{"unknown kind", "indicators:\n  - kind: Gauge\n    name: g\n", "run.yaml"},
		{"missing name", "indicators:\n  - kind: Scalar\n", "run.yml"},
		{"duplicate", "indicators:\n  - {kind: Scalar, name: a}\n  - {kind: Queue, name: a}\n", "run.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data), tt.path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("epochs: 1\n"), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1, config.Epochs)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	config := Default()
	assert.Equal(t, "simulation", config.Name)
	assert.NoError(t, Validate(config))
}
