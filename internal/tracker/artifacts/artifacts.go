// Package artifacts holds non-numeric payloads that share the tracker's
// name space with indicators.
package artifacts

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrUnsupportedArtifactValue is returned when an artifact cannot store a value.
var ErrUnsupportedArtifactValue = errors.New("unsupported artifact value")

// Artifact is a named, non-numeric payload collected alongside indicators.
type Artifact interface {
	Name() string
	IsPrint() bool
	Clear()
	IsEmpty() bool

	// Collect stores value under key. A nil key lets the artifact pick one.
	Collect(key *string, value any) error

	Definition() Definition

	// Clone returns a deep copy, used when a snapshot outlives the call.
	Clone() Artifact
}

// Kind tags the artifact variant.
type Kind string

const (
	// KindText is an ordered list of keyed strings
	KindText Kind = "Text"

	// KindTable is a set of rows keyed by name, each mapping columns to strings
	KindTable Kind = "Table"
)

// Definition is the declarative shape of an Artifact.
type Definition struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Name    string `json:"name" yaml:"name"`
	IsPrint bool   `json:"isPrint" yaml:"isPrint"`
}

// FromDefinition rebuilds an empty artifact.
func FromDefinition(def Definition) (Artifact, error) {
	switch def.Kind {
	case KindText:
		return NewText(def.Name, def.IsPrint), nil
	case KindTable:
		return NewTable(def.Name, def.IsPrint), nil
	}
	return nil, fmt.Errorf("unknown artifact kind %q", def.Kind)
}

// Text stores string entries in insertion order.
type Text struct {
	name    string
	isPrint bool
	keys    []string
	values  map[string]string
}

// NewText creates an empty text artifact.
func NewText(name string, isPrint bool) *Text {
	return &Text{name: name, isPrint: isPrint, values: make(map[string]string)}
}

// Name returns the artifact name.
func (t *Text) Name() string { return t.name }

// IsPrint reports whether the console shows the artifact.
func (t *Text) IsPrint() bool { return t.isPrint }

// IsEmpty reports whether nothing was collected since the last Clear.
func (t *Text) IsEmpty() bool { return len(t.keys) == 0 }

// Clear drops every entry.
func (t *Text) Clear() {
	t.keys = nil
	t.values = make(map[string]string)
}

// Collect stores the string form of value. Without a key the entry is keyed
// by its position.
func (t *Text) Collect(key *string, value any) error {
	s, err := toText(value)
	if err != nil {
		return fmt.Errorf("artifact %s: %w", t.name, err)
	}

	k := strconv.Itoa(len(t.keys))
	if key != nil {
		k = *key
	}

	if _, exists := t.values[k]; !exists {
		t.keys = append(t.keys, k)
	}
	t.values[k] = s
	return nil
}

// Entries returns the keys and values in insertion order.
func (t *Text) Entries() ([]string, []string) {
	values := make([]string, len(t.keys))
	for i, k := range t.keys {
		values[i] = t.values[k]
	}
	return append([]string(nil), t.keys...), values
}

// Definition returns the declarative shape of the artifact.
func (t *Text) Definition() Definition {
	return Definition{Kind: KindText, Name: t.name, IsPrint: t.isPrint}
}

// Clone returns a deep copy including collected entries.
func (t *Text) Clone() Artifact {
	c := NewText(t.name, t.isPrint)
	c.keys = append([]string(nil), t.keys...)
	for k, v := range t.values {
		c.values[k] = v
	}
	return c
}

// Table stores rows of column values keyed by row name.
type Table struct {
	name    string
	isPrint bool
	rows    []string
	cells   map[string]map[string]string
}

// NewTable creates an empty table artifact.
func NewTable(name string, isPrint bool) *Table {
	return &Table{name: name, isPrint: isPrint, cells: make(map[string]map[string]string)}
}

// Name returns the artifact name.
func (t *Table) Name() string { return t.name }

// IsPrint reports whether the console shows the artifact.
func (t *Table) IsPrint() bool { return t.isPrint }

// IsEmpty reports whether nothing was collected since the last Clear.
func (t *Table) IsEmpty() bool { return len(t.rows) == 0 }

// Clear drops every entry.
func (t *Table) Clear() {
	t.rows = nil
	t.cells = make(map[string]map[string]string)
}

// Collect merges a map of column values into the row named by key.
func (t *Table) Collect(key *string, value any) error {
	row, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("artifact %s: %w: want map[string]any, got %T", t.name, ErrUnsupportedArtifactValue, value)
	}

	converted := make(map[string]string, len(row))
	for col, v := range row {
		s, err := toText(v)
		if err != nil {
			return fmt.Errorf("artifact %s column %s: %w", t.name, col, err)
		}
		converted[col] = s
	}

	k := strconv.Itoa(len(t.rows))
	if key != nil {
		k = *key
	}

	cells, exists := t.cells[k]
	if !exists {
		t.rows = append(t.rows, k)
		cells = make(map[string]string)
		t.cells[k] = cells
	}
	for col, s := range converted {
		cells[col] = s
	}
	return nil
}

// Rows returns row keys in insertion order.
func (t *Table) Rows() []string {
	return append([]string(nil), t.rows...)
}

// Columns returns the sorted union of column names.
func (t *Table) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, cells := range t.cells {
		for col := range cells {
			if !seen[col] {
				seen[col] = true
				cols = append(cols, col)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

// Cell returns the value at row, col.
func (t *Table) Cell(row, col string) (string, bool) {
	v, ok := t.cells[row][col]
	return v, ok
}

// Definition returns the declarative shape of the artifact.
func (t *Table) Definition() Definition {
	return Definition{Kind: KindTable, Name: t.name, IsPrint: t.isPrint}
}

// Clone returns a deep copy including collected entries.
func (t *Table) Clone() Artifact {
	c := NewTable(t.name, t.isPrint)
	c.rows = append([]string(nil), t.rows...)
	for row, cells := range t.cells {
		cc := make(map[string]string, len(cells))
		for col, v := range cells {
			cc[col] = v
		}
		c.cells[row] = cc
	}
	return c
}

func toText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x), nil
	}
	return "", fmt.Errorf("%w: %T", ErrUnsupportedArtifactValue, v)
}
