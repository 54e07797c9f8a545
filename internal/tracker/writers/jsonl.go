package writers

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/beyu9918/labml/internal/tracker/artifacts"
	"github.com/beyu9918/labml/internal/tracker/indicators"
)

// Record is one line of a JSON Lines log.
type Record struct {
	Step      int64                         `json:"step"`
	Timestamp time.Time                     `json:"timestamp"`
	Metrics   map[string]float64            `json:"metrics"`
	Indexed   map[string]IndexedRecord      `json:"indexed,omitempty"`
	Summaries map[string]indicators.Summary `json:"summaries,omitempty"`
	Artifacts map[string]any                `json:"artifacts,omitempty"`
}

// IndexedRecord holds per-index means of an IndexedScalar.
type IndexedRecord struct {
	Indices []int     `json:"indices"`
	Means   []float64 `json:"means"`
}

// JSONL appends one Record per write to a stream. Empty indicators and
// non-finite means are left out since JSON cannot carry NaN.
type JSONL struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
	now    func() time.Time
}

// NewJSONL writes records to w.
func NewJSONL(w io.Writer) *JSONL {
	return &JSONL{enc: json.NewEncoder(w), now: time.Now}
}

// OpenJSONL appends records to the file at path, creating it if needed.
func OpenJSONL(path string) (*JSONL, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	j := NewJSONL(f)
	j.closer = f
	return j, nil
}

// Write implements Writer.
func (j *JSONL) Write(step int64, inds map[string]*indicators.Indicator, arts map[string]artifacts.Artifact) error {
	rec := BuildRecord(step, j.now(), inds, arts)

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to write record for step %d: %w", step, err)
	}
	return nil
}

// Close closes the underlying file if JSONL opened it.
func (j *JSONL) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}

// BuildRecord converts tracker state into a Record.
func BuildRecord(step int64, ts time.Time, inds map[string]*indicators.Indicator, arts map[string]artifacts.Artifact) Record {
	rec := Record{
		Step:      step,
		Timestamp: ts,
		Metrics:   make(map[string]float64),
	}

	for _, ind := range inds {
		if ind.IsEmpty() {
			continue
		}

		if mean, err := ind.Mean(); err == nil && finite(mean) {
			rec.Metrics[ind.MeanKey()] = mean
		}

		switch ind.Kind() {
		case indicators.KindIndexedScalar:
			indices, means, err := ind.IndexMean()
			if err != nil || !allFinite(means) {
				continue
			}
			if rec.Indexed == nil {
				rec.Indexed = make(map[string]IndexedRecord)
			}
			rec.Indexed[ind.Name()] = IndexedRecord{Indices: indices, Means: means}
		case indicators.KindQueue, indicators.KindHistogram:
			s, err := ind.Summary()
			if err != nil {
				continue
			}
			if rec.Summaries == nil {
				rec.Summaries = make(map[string]indicators.Summary)
			}
			rec.Summaries[ind.Name()] = s
		}
	}

	for name, art := range arts {
		if art.IsEmpty() {
			continue
		}
		if rec.Artifacts == nil {
			rec.Artifacts = make(map[string]any)
		}
		rec.Artifacts[name] = artifactPayload(art)
	}

	return rec
}

func artifactPayload(art artifacts.Artifact) any {
	switch a := art.(type) {
	case *artifacts.Text:
		keys, values := a.Entries()
		out := make(map[string]string, len(keys))
		for i, k := range keys {
			out[k] = values[i]
		}
		return out
	case *artifacts.Table:
		out := make(map[string]map[string]string)
		for _, row := range a.Rows() {
			cells := make(map[string]string)
			for _, col := range a.Columns() {
				if v, ok := a.Cell(row, col); ok {
					cells[col] = v
				}
			}
			out[row] = cells
		}
		return out
	}
	return art.Definition()
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if !finite(x) {
			return false
		}
	}
	return true
}
