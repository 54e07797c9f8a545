// Package indicators implements the aggregation variants a tracker keeps per
// metric name.
//
// There are four kinds:
//
//   - Queue: a rolling window holding the most recent N observations
//   - Histogram: every observation since the last Clear, reported as a distribution
//   - Scalar: every observation since the last Clear, reported as a single mean
//   - IndexedScalar: (index, value) pairs, reported as a per-index mean
//
// All kinds share the Indicator type. Each operation dispatches on the kind in
// one place, so adding a kind means extending those switches.
//
// # Basic Usage
//
//	loss := indicators.NewQueue("loss", 20, true)
//	_ = loss.Collect(0.71)
//	_ = loss.Collect([]float64{0.69, 0.68})
//
//	mean, err := loss.Mean()
//	if errors.Is(err, indicators.ErrEmptyAggregation) {
//	    // nothing collected since the last Clear
//	}
//
//	acc := indicators.NewIndexedScalar("sample_loss")
//	_ = acc.Collect(indicators.IndexedValues{Indices: []int{0, 1}, Values: []float64{10, 20}})
//	_ = acc.Collect(indicators.Pair{Index: 0, Value: 5})
//	indices, means, _ := acc.IndexMean() // [0 1] [7.5 20]
//
// An Indicator is not safe for concurrent use; the owning store serializes
// access.
package indicators
