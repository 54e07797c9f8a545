package indicators

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meansByIndex(t *testing.T, ind *Indicator) map[int]float64 {
	t.Helper()

	indices, means, err := ind.IndexMean()
	require.NoError(t, err)
	require.Len(t, means, len(indices))

	out := make(map[int]float64, len(indices))
	for i, idx := range indices {
		out[idx] = means[i]
	}
	return out
}

func TestIndexedScalar_GroupsAcrossShapes(t *testing.T) {
	ind := NewIndexedScalar("sample_loss")

	require.NoError(t, ind.Collect([2]any{[]int{0, 1}, []float64{10, 20}}))
	require.NoError(t, ind.Collect([2]any{0, 5}))

	assert.Equal(t, map[int]float64{0: 7.5, 1: 20}, meansByIndex(t, ind))

	indices, _, err := ind.IndexMean()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, indices)
}

func TestIndexedScalar_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  map[int]float64
	}{
		{"pair", Pair{Index: 3, Value: 1.5}, map[int]float64{3: 1.5}},
		{"pair slice", []Pair{{0, 1}, {0, 3}, {2, 4}}, map[int]float64{0: 2, 2: 4}},
		{"indexed values", IndexedValues{Indices: []int{1, 1}, Values: []float64{2, 4}}, map[int]float64{1: 3}},
		{"tuple", [2]any{4, 0.25}, map[int]float64{4: 0.25}},
		{"tuple of lists", [2]any{[]int{5, 6}, []float32{1, 2}}, map[int]float64{5: 1, 6: 2}},
		{"list of tuples", []any{[2]any{0, 1}, [2]any{1, 2}, [2]any{0, 3}}, map[int]float64{0: 2, 1: 2}},
		{"list of int pairs", [][2]int{{7, 8}, {7, 10}}, map[int]float64{7: 9}},
		{"list of pairs", []any{Pair{9, 1}, []any{9, 3}}, map[int]float64{9: 2}},
		{"slice tuple", []any{4, 0.25}, map[int]float64{4: 0.25}},
		{"int slice tuple", []int{2, 7}, map[int]float64{2: 7}},
		{"slice of two int slices is a pair list", []any{[]int{0, 1}, []int{10, 20}}, map[int]float64{0: 1, 10: 20}},
		{"large unsigned index", [2]any{uint64(math.MaxInt), 1}, map[int]float64{math.MaxInt: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := NewIndexedScalar("is")
			require.NoError(t, ind.Collect(tt.input))
			assert.Equal(t, tt.want, meansByIndex(t, ind))
		})
	}
}

func TestIndexedScalar_SliceTupleOrder(t *testing.T) {
	ind := NewIndexedScalar("is")
	require.NoError(t, ind.Collect([]any{[]int{0, 1}, []int{10, 20}}))

	indices, means, err := ind.IndexMean()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10}, indices)
	assert.Equal(t, []float64{1, 20}, means)
}

func TestIndexedScalar_MalformedIsAtomic(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"scalar", 3},
		{"nil", nil},
		{"three tuple", [3]any{1, 2, 3}},
		{"float index", [2]any{1.5, 2}},
		{"length mismatch", [2]any{[]int{0, 1}, []float64{1}}},
		{"indexed values mismatch", IndexedValues{Indices: []int{0}, Values: []float64{1, 2}}},
		{"list with bad element", []any{[2]any{0, 1}, 5}},
		{"vector value", [2]any{0, []float64{1, 2}}},
		{"non-integer in index list", [2]any{[]any{0, "a"}, []float64{1, 2}}},
		{"slice tuple with vector value", []any{0, []float64{1, 2}}},
		{"slice of three", []any{0, 1, 2}},
		{"unsigned index overflows int", [2]any{uint64(math.MaxUint64), 1}},
		{"unsigned index list overflows int", [2]any{[]uint64{math.MaxInt + 1}, []float64{1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := NewIndexedScalar("is")
			require.NoError(t, ind.Collect(Pair{Index: 0, Value: 1}))

			err := ind.Collect(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedIndexedInput), "got %v", err)

			assert.Equal(t, len(ind.indices), len(ind.raw))
			assert.Equal(t, map[int]float64{0: 1}, meansByIndex(t, ind))
		})
	}
}

func TestIndexedScalar_Empty(t *testing.T) {
	ind := NewIndexedScalar("is")
	assert.True(t, ind.IsEmpty())
	assert.False(t, ind.IsPrint())

	_, _, err := ind.IndexMean()
	assert.True(t, errors.Is(err, ErrEmptyAggregation))

	_, err = ind.Mean()
	assert.True(t, errors.Is(err, ErrEmptyAggregation))
}

func TestIndexedScalar_MeanAndClear(t *testing.T) {
	ind := NewIndexedScalar("is")
	require.NoError(t, ind.Collect(IndexedValues{Indices: []int{0, 1, 2}, Values: []float64{1, 2, 6}}))

	mean, err := ind.Mean()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, mean, 1e-9)

	ind.Clear()
	assert.True(t, ind.IsEmpty())
}

func TestIndexMean_NonIndexedKinds(t *testing.T) {
	s := NewScalar("s", true)
	require.NoError(t, s.Collect(1))

	indices, means, err := s.IndexMean()
	assert.NoError(t, err)
	assert.Nil(t, indices)
	assert.Nil(t, means)
}
