package indicators

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary_Histogram(t *testing.T) {
	h := NewHistogram("latency", false)
	for i := 1; i <= 100; i++ {
		require.NoError(t, h.Collect(float64(i)/10))
	}

	s, err := h.Summary()
	require.NoError(t, err)

	assert.Equal(t, int64(100), s.Count)
	assert.Equal(t, 0.1, s.Min)
	assert.Equal(t, 10.0, s.Max)
	assert.InDelta(t, 5.05, s.Mean, 1e-9)
	assert.InDelta(t, 5.0, s.P50, 0.1)
	assert.InDelta(t, 9.0, s.P90, 0.1)
	assert.InDelta(t, 9.9, s.P99, 0.1)
	assert.LessOrEqual(t, s.P99, s.Max)
}

func TestSummary_NegativeValuesAndConstant(t *testing.T) {
	h := NewHistogram("delta", false)
	require.NoError(t, h.Collect([]float64{-3, -1, 1, 3}))

	s, err := h.Summary()
	require.NoError(t, err)
	assert.Equal(t, -3.0, s.Min)
	assert.InDelta(t, 0.0, s.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(5), s.StdDev, 1e-9)

	c := NewQueue("const", 3, false)
	require.NoError(t, c.Collect(2))
	require.NoError(t, c.Collect(2))
	s, err = c.Summary()
	require.NoError(t, err)
	assert.Equal(t, 2.0, s.P50)
	assert.Equal(t, 2.0, s.P99)
}

func TestSummary_Errors(t *testing.T) {
	_, err := NewHistogram("h", false).Summary()
	assert.True(t, errors.Is(err, ErrEmptyAggregation))

	s := NewScalar("s", true)
	require.NoError(t, s.Collect(1))
	_, err = s.Summary()
	assert.Error(t, err)
}

func TestSummary_SkipsNonFinite(t *testing.T) {
	h := NewHistogram("h", false)
	require.NoError(t, h.Collect([]float64{1, math.NaN(), 3, math.Inf(1)}))

	s, err := h.Summary()
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Count)
	assert.Equal(t, 2.0, s.Mean)
}
