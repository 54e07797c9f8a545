package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "simulate")
	assert.Contains(t, out, "inspect")
	assert.Contains(t, out, "definitions")
}

func TestSimulate(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "run.jsonl")
	indPath := filepath.Join(dir, "indicators.yaml")
	artPath := filepath.Join(dir, "artifacts.json")

	out, err := execute(t, "simulate",
		"--epochs", "1",
		"--steps", "4",
		"--write-every", "2",
		"--test-samples", "5",
		"--batch-size", "5",
		"--log", logPath,
		"--indicators-file", indPath,
		"--artifacts-file", artPath,
		"--no-color",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "simulation: 1 epochs x 4 steps")
	assert.Contains(t, out, "train_loss.mean:")
	assert.Contains(t, out, "Finished after 4 steps (3 writes)")

	// Writes at steps 1 and 3 during training plus one at the end of the epoch.
	assert.Len(t, readLines(t, logPath), 3)

	out, err = execute(t, "definitions", "validate", indPath, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "test_sample_loss")
	assert.Contains(t, out, "IndexedScalar")
	assert.Contains(t, out, "is valid")

	out, err = execute(t, "definitions", "validate", artPath, "--kind", "artifacts", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "epochs")
	assert.Contains(t, out, "Table")
}

func TestSimulate_ConfigWithOverrides(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "run.jsonl")
	configPath := filepath.Join(dir, "run.yaml")

	config := `name: from-file
epochs: 3
stepsPerEpoch: 3
writeEvery: 10
testSamples: 4
batchSize: 2
output:
  log: ` + logPath + `
  async: true
indicators:
  - kind: Scalar
    name: train_loss
    isPrint: true
`
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	out, err := execute(t, "simulate", "--config", configPath, "--epochs", "1", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "from-file: 1 epochs x 3 steps")
	assert.Contains(t, out, "Finished after 3 steps (2 writes)")
	// A Scalar has no ".mean" suffix.
	assert.Contains(t, out, "train_loss:")
	assert.Len(t, readLines(t, logPath), 2)
}

func TestSimulate_InvalidConfig(t *testing.T) {
	_, err := execute(t, "simulate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "simulate", "--epochs", "-1")
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "run.jsonl")

	_, err := execute(t, "simulate",
		"--epochs", "2",
		"--steps", "4",
		"--write-every", "2",
		"--test-samples", "6",
		"--batch-size", "3",
		"--log", logPath,
		"--no-color",
	)
	require.NoError(t, err)

	out, err := execute(t, "inspect", logPath, `$.metrics["train_loss.mean"]`)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "STEP"))
	assert.True(t, strings.HasPrefix(lines[1], "1 "))

	out, err = execute(t, "inspect", logPath, "$.indexed.test_sample_loss.indices", "--last")
	require.NoError(t, err)
	assert.Contains(t, out, "[0,1,2,3,4,5]")
	assert.Contains(t, out, "8 ")

	out, err = execute(t, "inspect", logPath, `$.metrics["accuracy.mean"]`, "--summary", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "count 2")
	assert.Contains(t, out, "p50")

	out, err = execute(t, "inspect", logPath, `$.summaries["fc.weight"].count`, "--last", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"step": 8`)
	assert.Contains(t, out, `"value": 64`)

	_, err = execute(t, "inspect", logPath, "$.step", "--format", "xml")
	assert.Error(t, err)

	_, err = execute(t, "inspect", logPath, "$.metrics.nothing")
	assert.Error(t, err)
}

func TestDefinitionsValidate_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indicators.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loss:\n  kind: Gauge\n  name: loss\n"), 0o644))

	out, err := execute(t, "definitions", "validate", path, "--no-color")
	assert.Error(t, err)
	assert.Contains(t, out, "✗")

	_, err = execute(t, "definitions", "validate", path, "--kind", "widgets")
	assert.Error(t, err)
}
