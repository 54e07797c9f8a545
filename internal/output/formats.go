package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/beyu9918/labml/internal/tracker/indicators"
	"github.com/beyu9918/labml/pkg/jsonpath"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable table
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a format name. An empty name means text.
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(name)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (text, json, yaml)", name)
}

// SeriesPoint is the structured form of one extracted value.
type SeriesPoint struct {
	Step  int64  `json:"step" yaml:"step"`
	Line  int    `json:"line" yaml:"line"`
	Value any    `json:"value" yaml:"value"`
	Raw   string `json:"-" yaml:"-"`
}

// SeriesData is a value series with its optional distribution summary.
type SeriesData struct {
	Path    string              `json:"path" yaml:"path"`
	Points  []SeriesPoint       `json:"points" yaml:"points"`
	Summary *indicators.Summary `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// NewSeriesData converts extracted points. Values that are valid JSON are
// decoded so numbers and arrays keep their type in JSON and YAML output.
func NewSeriesData(path string, points []jsonpath.Point) *SeriesData {
	data := &SeriesData{Path: path, Points: make([]SeriesPoint, 0, len(points))}
	for _, p := range points {
		var v any
		if err := json.Unmarshal([]byte(p.Value), &v); err != nil {
			v = p.Value
		}
		data.Points = append(data.Points, SeriesPoint{Step: p.Step, Line: p.Line, Value: v, Raw: p.Value})
	}
	return data
}

// FormatSeries renders a series in the requested format.
func FormatSeries(data *SeriesData, format OutputFormat, scheme *ColorScheme) (string, error) {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode series: %w", err)
		}
		return string(out) + "\n", nil
	case FormatYAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("failed to encode series: %w", err)
		}
		return string(out), nil
	case FormatText, "":
		return formatSeriesText(data, scheme), nil
	}
	return "", fmt.Errorf("unknown output format %q", format)
}

func formatSeriesText(data *SeriesData, scheme *ColorScheme) string {
	if scheme == nil {
		scheme = DefaultColorScheme()
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tVALUE")
	for _, p := range data.Points {
		fmt.Fprintf(tw, "%d\t%s\n", p.Step, p.Raw)
	}
	tw.Flush()

	if s := data.Summary; s != nil {
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "count %d  min %.4f  max %.4f  mean %s  std %.4f\n",
			s.Count, s.Min, s.Max, scheme.Value.Sprintf("%.4f", s.Mean), s.StdDev)
		fmt.Fprintf(&sb, "p50 %.4f  p90 %.4f  p95 %.4f  p99 %.4f\n", s.P50, s.P90, s.P95, s.P99)
	}
	return sb.String()
}
