package indicators

import (
	"fmt"
	"math"

	"github.com/beyu9918/labml/internal/tracker/value"
)

// Indicator is a named aggregation unit. The kind selects how observations
// are collected and reported.
type Indicator struct {
	kind    Kind
	name    string
	isPrint bool

	// KindQueue
	window *window

	// KindHistogram, KindScalar
	values [][]float64

	// KindIndexedScalar; indices[i] pairs with raw[i]
	indices []int
	raw     []float64
}

// NewQueue creates a rolling window indicator holding the last size observations.
// A non-positive size falls back to DefaultQueueSize.
func NewQueue(name string, size int, isPrint bool) *Indicator {
	return &Indicator{kind: KindQueue, name: name, isPrint: isPrint, window: newWindow(size)}
}

// NewHistogram creates an indicator that keeps every observation and reports
// its distribution.
func NewHistogram(name string, isPrint bool) *Indicator {
	return &Indicator{kind: KindHistogram, name: name, isPrint: isPrint}
}

// NewScalar creates an indicator that keeps every observation and reports
// the mean.
func NewScalar(name string, isPrint bool) *Indicator {
	return &Indicator{kind: KindScalar, name: name, isPrint: isPrint}
}

// NewIndexedScalar creates an indicator grouping values by an integer index.
// Indexed scalars are never printed.
func NewIndexedScalar(name string) *Indicator {
	return &Indicator{kind: KindIndexedScalar, name: name}
}

// FromDefinition rebuilds an empty indicator from its definition.
func FromDefinition(def Definition) (*Indicator, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("definition of kind %q has no name", def.Kind)
	}

	switch def.Kind {
	case KindQueue:
		return NewQueue(def.Name, def.QueueSize, def.IsPrint), nil
	case KindHistogram:
		return NewHistogram(def.Name, def.IsPrint), nil
	case KindScalar:
		return NewScalar(def.Name, def.IsPrint), nil
	case KindIndexedScalar:
		return NewIndexedScalar(def.Name), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, def.Kind)
}

// Name returns the indicator name.
func (ind *Indicator) Name() string { return ind.name }

// Kind returns the aggregation kind.
func (ind *Indicator) Kind() Kind { return ind.kind }

// IsPrint reports whether a human-readable summary should be shown.
func (ind *Indicator) IsPrint() bool { return ind.isPrint }

// QueueSize returns the window capacity, or 0 for kinds without a window.
func (ind *Indicator) QueueSize() int {
	if ind.kind != KindQueue {
		return 0
	}
	return ind.window.size
}

// MeanKey is the label the mean is reported under. Distribution kinds report
// a derived statistic, so they get a ".mean" suffix.
func (ind *Indicator) MeanKey() string {
	switch ind.kind {
	case KindQueue, KindHistogram:
		return ind.name + ".mean"
	}
	return ind.name
}

// Definition returns the declarative shape of the indicator.
func (ind *Indicator) Definition() Definition {
	def := Definition{Kind: ind.kind, Name: ind.name, IsPrint: ind.isPrint}
	if ind.kind == KindQueue {
		def.QueueSize = ind.window.size
	}
	return def
}

// Collect ingests one observation. On error the indicator is unchanged.
func (ind *Indicator) Collect(v any) error {
	switch ind.kind {
	case KindQueue:
		flat, err := value.Flatten(v)
		if err != nil {
			return fmt.Errorf("indicator %s: %w", ind.name, err)
		}
		ind.window.push(flat)
	case KindHistogram, KindScalar:
		flat, err := value.Flatten(v)
		if err != nil {
			return fmt.Errorf("indicator %s: %w", ind.name, err)
		}
		ind.values = append(ind.values, flat)
	case KindIndexedScalar:
		indices, raw, err := parseIndexed(v)
		if err != nil {
			return fmt.Errorf("indicator %s: %w", ind.name, err)
		}
		ind.indices = append(ind.indices, indices...)
		ind.raw = append(ind.raw, raw...)
	}
	return nil
}

// Clear empties accumulated state. A queue keeps its capacity.
func (ind *Indicator) Clear() {
	switch ind.kind {
	case KindQueue:
		ind.window.reset()
	case KindHistogram, KindScalar:
		ind.values = nil
	case KindIndexedScalar:
		ind.indices = nil
		ind.raw = nil
	}
}

// IsEmpty reports whether no number was collected since the last Clear.
// Zero-length observations are accepted but do not count, so IsEmpty is
// true exactly when Mean returns ErrEmptyAggregation.
func (ind *Indicator) IsEmpty() bool {
	switch ind.kind {
	case KindQueue:
		return !hasNumbers(ind.window.items())
	case KindIndexedScalar:
		return len(ind.raw) == 0
	}
	return !hasNumbers(ind.values)
}

func hasNumbers(vs [][]float64) bool {
	for _, v := range vs {
		if len(v) > 0 {
			return true
		}
	}
	return false
}

// Mean returns the arithmetic mean over every collected number.
// It returns ErrEmptyAggregation when there is nothing to average.
func (ind *Indicator) Mean() (float64, error) {
	var flat []float64
	switch ind.kind {
	case KindQueue:
		flat = concat(ind.window.items())
	case KindHistogram, KindScalar:
		flat = concat(ind.values)
	case KindIndexedScalar:
		flat = ind.raw
	}

	if len(flat) == 0 {
		return 0, fmt.Errorf("indicator %s: %w", ind.name, ErrEmptyAggregation)
	}
	return mean(flat), nil
}

// Histogram returns a copy of the stored observations for distribution
// kinds and nil for Scalar and IndexedScalar.
func (ind *Indicator) Histogram() [][]float64 {
	switch ind.kind {
	case KindQueue:
		return deepCopy(ind.window.items())
	case KindHistogram:
		return deepCopy(ind.values)
	}
	return nil
}

// IndexMean groups collected values by index and returns the mean of each
// group. Indices are ordered by first appearance. Kinds other than
// IndexedScalar return nil slices and no error.
func (ind *Indicator) IndexMean() ([]int, []float64, error) {
	if ind.kind != KindIndexedScalar {
		return nil, nil, nil
	}
	if len(ind.raw) == 0 {
		return nil, nil, fmt.Errorf("indicator %s: %w", ind.name, ErrEmptyAggregation)
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	var order []int

	for i, idx := range ind.indices {
		if _, seen := counts[idx]; !seen {
			order = append(order, idx)
		}
		sums[idx] += ind.raw[i]
		counts[idx]++
	}

	means := make([]float64, len(order))
	for i, idx := range order {
		means[i] = sums[idx] / float64(counts[idx])
	}

	return order, means, nil
}

// Clone returns a deep copy of the indicator including its collected state.
func (ind *Indicator) Clone() *Indicator {
	c := &Indicator{
		kind:    ind.kind,
		name:    ind.name,
		isPrint: ind.isPrint,
		values:  deepCopy(ind.values),
		indices: append([]int(nil), ind.indices...),
		raw:     append([]float64(nil), ind.raw...),
	}

	if ind.window != nil {
		c.window = &window{
			entries: deepCopy(ind.window.entries),
			head:    ind.window.head,
			count:   ind.window.count,
			size:    ind.window.size,
		}
	}

	return c
}

func concat(vs [][]float64) []float64 {
	n := 0
	for _, v := range vs {
		n += len(v)
	}

	out := make([]float64, 0, n)
	for _, v := range vs {
		out = append(out, v...)
	}
	return out
}

func deepCopy(vs [][]float64) [][]float64 {
	if vs == nil {
		return nil
	}

	out := make([][]float64, len(vs))
	for i, v := range vs {
		if v != nil {
			out[i] = append([]float64(nil), v...)
		}
	}
	return out
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdDev(xs []float64, m float64) float64 {
	var sos float64
	for _, x := range xs {
		sos += (x - m) * (x - m)
	}
	return math.Sqrt(sos / float64(len(xs)))
}
