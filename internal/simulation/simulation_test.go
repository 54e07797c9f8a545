package simulation

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beyu9918/labml/internal/config"
	"github.com/beyu9918/labml/internal/tracker/artifacts"
	"github.com/beyu9918/labml/internal/tracker/indicators"
	"github.com/beyu9918/labml/internal/tracker/store"
	"github.com/beyu9918/labml/internal/tracker/writers"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type capture struct {
	steps   []int64
	indices [][]int
	tables  []int
}

func (c *capture) Write(step int64, inds map[string]*indicators.Indicator, arts map[string]artifacts.Artifact) error {
	c.steps = append(c.steps, step)

	idx, _, err := inds["test_sample_loss"].IndexMean()
	if err == nil {
		c.indices = append(c.indices, idx)
	}
	if table, ok := arts[EpochsArtifact].(*artifacts.Table); ok && !table.IsEmpty() {
		c.tables = append(c.tables, len(table.Rows()))
	}
	return nil
}

func testConfig() *config.RunConfig {
	cfg := &config.RunConfig{
		Epochs:        2,
		StepsPerEpoch: 10,
		WriteEvery:    5,
		TestSamples:   25,
		BatchSize:     10,
		Seed:          3,
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func newRun(t *testing.T, cfg *config.RunConfig, w writers.Writer) (*Simulation, *store.Store) {
	t.Helper()
	st := store.New(store.WithLogger(quietLogger()))
	sim := New(cfg, st, w, quietLogger())
	require.NoError(t, sim.Register())
	return sim, st
}

func TestRun(t *testing.T) {
	rec := &capture{}
	sim, st := newRun(t, testConfig(), rec)

	result, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(20), result.Steps)
	assert.Equal(t, 6, result.Writes)
	assert.Equal(t, []int64{1, 6, 10, 11, 16, 20}, rec.steps)
	assert.GreaterOrEqual(t, result.Accuracy, 0.0)
	assert.LessOrEqual(t, result.Accuracy, 1.0)
	assert.Greater(t, result.TestLoss, 0.0)

	// Per-sample losses are only present on the end-of-epoch write.
	require.Len(t, rec.indices, 2)
	expected := make([]int, 25)
	for i := range expected {
		expected[i] = i
	}
	assert.Equal(t, expected, rec.indices[0])
	assert.Equal(t, []int{1, 1}, rec.tables)

	for name, ind := range st.Indicators() {
		assert.True(t, ind.IsEmpty(), "%s not cleared", name)
	}
}

func TestRun_Deterministic(t *testing.T) {
	first, _ := newRun(t, testConfig(), writers.Multi{})
	second, _ := newRun(t, testConfig(), writers.Multi{})

	a, err := first.Run(context.Background())
	require.NoError(t, err)
	b, err := second.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestRun_Cancelled(t *testing.T) {
	sim, _ := newRun(t, testConfig(), writers.Multi{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegister_KeepsConfiguredDefinitions(t *testing.T) {
	cfg := testConfig()
	cfg.Indicators = []indicators.Definition{
		{Kind: indicators.KindQueue, Name: "train_loss", IsPrint: true, QueueSize: 3},
		{Kind: indicators.KindScalar, Name: "lr", IsPrint: true},
	}

	_, st := newRun(t, cfg, writers.Multi{})

	loss, ok := st.Indicator("train_loss")
	require.True(t, ok)
	assert.Equal(t, 3, loss.QueueSize())

	_, ok = st.Indicator("lr")
	assert.True(t, ok)

	for _, def := range DefaultIndicators() {
		_, ok := st.Indicator(def.Name)
		assert.True(t, ok, def.Name)
	}
	_, ok = st.Artifact(EpochsArtifact)
	assert.True(t, ok)
}

func TestRegister_Twice(t *testing.T) {
	sim, _ := newRun(t, testConfig(), writers.Multi{})
	assert.ErrorIs(t, sim.Register(), store.ErrDuplicateName)
}
