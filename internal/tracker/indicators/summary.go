package indicators

import (
	"fmt"
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// summaryResolution is the number of histogram units the observed range is
// spread over. With 3 significant figures this keeps percentiles within
// about 0.1% of the range.
const summaryResolution = 1_000_000

// Summary describes the distribution held by a Queue or Histogram.
type Summary struct {
	Count  int64   `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	P50    float64 `json:"p50"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	P99    float64 `json:"p99"`
}

// Summary computes distribution statistics for Queue and Histogram kinds.
// Non-finite numbers are skipped. Percentiles come from an HDR histogram and
// are approximate; min, max, mean and standard deviation are exact.
func (ind *Indicator) Summary() (Summary, error) {
	hist := ind.Histogram()
	if hist == nil && ind.kind != KindQueue && ind.kind != KindHistogram {
		return Summary{}, fmt.Errorf("indicator %s: kind %s has no distribution", ind.name, ind.kind)
	}

	var finite []float64
	for _, x := range concat(hist) {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			finite = append(finite, x)
		}
	}
	if len(finite) == 0 {
		return Summary{}, fmt.Errorf("indicator %s: %w", ind.name, ErrEmptyAggregation)
	}

	lo, hi := finite[0], finite[0]
	for _, x := range finite {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}

	m := mean(finite)
	s := Summary{
		Count:  int64(len(finite)),
		Min:    lo,
		Max:    hi,
		Mean:   m,
		StdDev: stdDev(finite, m),
	}

	if hi == lo {
		s.P50, s.P90, s.P95, s.P99 = lo, lo, lo, lo
		return s, nil
	}

	// Values are shifted by the minimum and scaled to integer units.
	scale := summaryResolution / (hi - lo)
	h := hdrhistogram.New(1, summaryResolution+1, 3)
	for _, x := range finite {
		if err := h.RecordValue(int64(math.Round((x - lo) * scale))); err != nil {
			return Summary{}, fmt.Errorf("indicator %s: record %v: %w", ind.name, x, err)
		}
	}

	at := func(q float64) float64 {
		return math.Min(hi, lo+float64(h.ValueAtQuantile(q))/scale)
	}
	s.P50 = at(50)
	s.P90 = at(90)
	s.P95 = at(95)
	s.P99 = at(99)

	return s, nil
}
