// Package value converts numeric-like observations into flat float64 sequences.
//
// Every accepted input shape has an adapter implementing Flattener. Inputs
// without an adapter are rejected with an UnsupportedValueTypeError.
package value

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnsupportedValueType is matched by every UnsupportedValueTypeError.
var ErrUnsupportedValueType = errors.New("unsupported value type")

// UnsupportedValueTypeError reports a value with no numeric flattening.
type UnsupportedValueTypeError struct {
	TypeName string
}

func (e *UnsupportedValueTypeError) Error() string {
	return fmt.Sprintf("unsupported value type: %s", e.TypeName)
}

// Is lets errors.Is match ErrUnsupportedValueType.
func (e *UnsupportedValueTypeError) Is(target error) bool {
	return target == ErrUnsupportedValueType
}

// Flattener is implemented by every accepted input shape.
type Flattener interface {
	Flatten() []float64
}

// TensorLike is an object that can hand over a host-side numeric array,
// for example a tensor living on an accelerator.
type TensorLike interface {
	HostArray() (*Array, error)
}

// Scalar is a single number.
type Scalar float64

// Flatten implements Flattener.
func (s Scalar) Flatten() []float64 {
	return []float64{float64(s)}
}

// List is a homogeneous list of numbers.
type List []float64

// Flatten implements Flattener.
func (l List) Flatten() []float64 {
	out := make([]float64, len(l))
	copy(out, l)
	return out
}

// Array is a dense multi-dimensional array stored in row-major order.
type Array struct {
	Shape []int
	Data  []float64
}

// NewArray builds an array and checks that data matches the shape.
func NewArray(shape []int, data []float64) (*Array, error) {
	size := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative dimension %d in shape %v", d, shape)
		}
		size *= d
	}
	if size != len(data) {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, size, len(data))
	}
	return &Array{Shape: append([]int(nil), shape...), Data: append([]float64(nil), data...)}, nil
}

// Flatten implements Flattener. Data is already row-major.
func (a *Array) Flatten() []float64 {
	out := make([]float64, len(a.Data))
	copy(out, a.Data)
	return out
}

// Flatten converts v into a one-dimensional sequence.
func Flatten(v any) ([]float64, error) {
	f, err := Adapt(v)
	if err != nil {
		return nil, err
	}
	return f.Flatten(), nil
}

// Adapt selects the adapter for v.
func Adapt(v any) (Flattener, error) {
	switch x := v.(type) {
	case nil:
		return nil, &UnsupportedValueTypeError{TypeName: "nil"}
	case Flattener:
		if a, ok := x.(*Array); ok && a == nil {
			return nil, &UnsupportedValueTypeError{TypeName: "*value.Array(nil)"}
		}
		return x, nil
	case TensorLike:
		arr, err := x.HostArray()
		if err != nil {
			return nil, fmt.Errorf("tensor %T to host array: %w", v, err)
		}
		if arr == nil {
			return nil, &UnsupportedValueTypeError{TypeName: fmt.Sprintf("%T", v)}
		}
		return arr, nil
	case []float64:
		return List(x), nil
	}

	if s, ok := scalar(v); ok {
		return Scalar(s), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		var data []float64
		if err := flattenInto(rv, &data, fmt.Sprintf("%T", v)); err != nil {
			return nil, err
		}
		return List(data), nil
	}

	return nil, &UnsupportedValueTypeError{TypeName: fmt.Sprintf("%T", v)}
}

// flattenInto walks nested slices in row-major order.
func flattenInto(rv reflect.Value, data *[]float64, typeName string) error {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := flattenInto(rv.Index(i), data, typeName); err != nil {
				return err
			}
		}
		return nil
	case reflect.Interface:
		if rv.IsNil() {
			return &UnsupportedValueTypeError{TypeName: typeName}
		}
		return flattenInto(rv.Elem(), data, typeName)
	}

	s, ok := scalarValue(rv)
	if !ok {
		return &UnsupportedValueTypeError{TypeName: typeName}
	}
	*data = append(*data, s)
	return nil
}

func scalar(v any) (float64, bool) {
	return scalarValue(reflect.ValueOf(v))
}

func scalarValue(rv reflect.Value) (float64, bool) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
