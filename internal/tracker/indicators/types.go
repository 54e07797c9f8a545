package indicators

import "errors"

var (
	// ErrEmptyAggregation is returned by Mean, IndexMean and Summary when
	// nothing has been collected since the last Clear.
	ErrEmptyAggregation = errors.New("empty aggregation")

	// ErrMalformedIndexedInput is returned when an IndexedScalar receives a
	// value it cannot interpret as (index, value) pairs.
	ErrMalformedIndexedInput = errors.New("malformed indexed input")

	// ErrUnknownKind is returned when a definition names an unknown kind.
	ErrUnknownKind = errors.New("unknown indicator kind")
)

// Kind tags the aggregation variant of an Indicator.
type Kind string

const (
	// KindQueue is a rolling window of the most recent observations
	KindQueue Kind = "Queue"

	// KindHistogram keeps every observation and reports a distribution
	KindHistogram Kind = "Histogram"

	// KindScalar keeps every observation and reports the mean
	KindScalar Kind = "Scalar"

	// KindIndexedScalar keeps (index, value) pairs and reports per-index means
	KindIndexedScalar Kind = "IndexedScalar"
)

// DefaultQueueSize is the window size used when none is given.
const DefaultQueueSize = 10

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindQueue, KindHistogram, KindScalar, KindIndexedScalar:
		return true
	}
	return false
}

// Definition is the declarative shape of an Indicator.
type Definition struct {
	Kind      Kind   `json:"kind" yaml:"kind"`
	Name      string `json:"name" yaml:"name"`
	IsPrint   bool   `json:"isPrint" yaml:"isPrint"`
	QueueSize int    `json:"queueSize,omitempty" yaml:"queueSize,omitempty"`
}

// Pair is a single (index, value) observation for an IndexedScalar.
type Pair struct {
	Index int
	Value float64
}

// IndexedValues is a pair of equal-length index and value lists.
type IndexedValues struct {
	Indices []int
	Values  []float64
}
