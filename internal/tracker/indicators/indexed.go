package indicators

import (
	"fmt"
	"math"
	"reflect"

	"github.com/beyu9918/labml/internal/tracker/value"
)

// parseIndexed interprets v as (index, value) observations without
// touching any indicator state.
//
// Accepted shapes:
//   - Pair, []Pair, IndexedValues
//   - a two-element Go array (a tuple) holding (int, number)
//   - a two-element Go array holding (index list, value list) of equal length
//   - a two-element slice whose first element is an integer, read as (int, number)
//   - any other slice, read as a list of tuples, Pairs or two-element slices
//
// A slice is only a tuple when its first element is an integer, so a slice
// holding two int slices, such as []any{[]int{0, 1}, []int{10, 20}}, is a
// list of the pairs (0, 1) and (10, 20). Use a Go array or IndexedValues to
// pass (indices, values).
func parseIndexed(v any) ([]int, []float64, error) {
	switch x := v.(type) {
	case Pair:
		return []int{x.Index}, []float64{x.Value}, nil
	case []Pair:
		indices := make([]int, len(x))
		values := make([]float64, len(x))
		for i, p := range x {
			indices[i] = p.Index
			values[i] = p.Value
		}
		return indices, values, nil
	case IndexedValues:
		if len(x.Indices) != len(x.Values) {
			return nil, nil, fmt.Errorf("%w: %d indices for %d values",
				ErrMalformedIndexedInput, len(x.Indices), len(x.Values))
		}
		return append([]int(nil), x.Indices...), append([]float64(nil), x.Values...), nil
	}

	rv := elem(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Array:
		return parseTuple(rv)
	case reflect.Slice:
		if rv.Len() == 2 {
			if _, ok := toIndex(elem(rv.Index(0))); ok {
				return parseTuple(rv)
			}
		}
		return parsePairList(rv)
	}

	return nil, nil, fmt.Errorf("%w: got %T", ErrMalformedIndexedInput, v)
}

// parseTuple handles (index, value) and (indices, values).
func parseTuple(rv reflect.Value) ([]int, []float64, error) {
	if rv.Len() != 2 {
		return nil, nil, fmt.Errorf("%w: tuple has %d elements, want 2", ErrMalformedIndexedInput, rv.Len())
	}

	first, second := elem(rv.Index(0)), elem(rv.Index(1))

	if idx, ok := toIndex(first); ok {
		num, err := toNumber(second)
		if err != nil {
			return nil, nil, err
		}
		return []int{idx}, []float64{num}, nil
	}

	if !isList(first) || !isList(second) {
		return nil, nil, fmt.Errorf("%w: tuple must hold (int, value) or (indices, values)", ErrMalformedIndexedInput)
	}
	if first.Len() != second.Len() {
		return nil, nil, fmt.Errorf("%w: %d indices for %d values", ErrMalformedIndexedInput, first.Len(), second.Len())
	}

	indices := make([]int, first.Len())
	values := make([]float64, second.Len())
	for i := range indices {
		idx, ok := toIndex(elem(first.Index(i)))
		if !ok {
			return nil, nil, fmt.Errorf("%w: index %d is not an integer", ErrMalformedIndexedInput, i)
		}
		num, err := toNumber(elem(second.Index(i)))
		if err != nil {
			return nil, nil, err
		}
		indices[i] = idx
		values[i] = num
	}

	return indices, values, nil
}

// parsePairList handles a list of (index, value) pairs.
func parsePairList(rv reflect.Value) ([]int, []float64, error) {
	indices := make([]int, 0, rv.Len())
	values := make([]float64, 0, rv.Len())

	for i := 0; i < rv.Len(); i++ {
		item := elem(rv.Index(i))

		if item.IsValid() && item.Type() == reflect.TypeOf(Pair{}) {
			p := item.Interface().(Pair)
			indices = append(indices, p.Index)
			values = append(values, p.Value)
			continue
		}

		if !isList(item) || item.Len() != 2 {
			return nil, nil, fmt.Errorf("%w: element %d is not an (index, value) pair", ErrMalformedIndexedInput, i)
		}
		idx, ok := toIndex(elem(item.Index(0)))
		if !ok {
			return nil, nil, fmt.Errorf("%w: element %d has a non-integer index", ErrMalformedIndexedInput, i)
		}
		num, err := toNumber(elem(item.Index(1)))
		if err != nil {
			return nil, nil, err
		}
		indices = append(indices, idx)
		values = append(values, num)
	}

	return indices, values, nil
}

func elem(rv reflect.Value) reflect.Value {
	for rv.IsValid() && rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func isList(rv reflect.Value) bool {
	return rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array)
}

func toIndex(rv reflect.Value) (int, bool) {
	if !rv.IsValid() {
		return 0, false
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < math.MinInt || i > math.MaxInt {
			return 0, false
		}
		return int(i), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt {
			return 0, false
		}
		return int(u), true
	}
	return 0, false
}

// toNumber coerces a single observation; it must flatten to exactly one number.
func toNumber(rv reflect.Value) (float64, error) {
	if !rv.IsValid() {
		return 0, fmt.Errorf("%w: missing value", ErrMalformedIndexedInput)
	}

	flat, err := value.Flatten(rv.Interface())
	if err != nil {
		return 0, err
	}
	if len(flat) != 1 {
		return 0, fmt.Errorf("%w: value has %d elements, want 1", ErrMalformedIndexedInput, len(flat))
	}
	return flat[0], nil
}
