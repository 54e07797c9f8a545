package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/beyu9918/labml/internal/tracker/indicators"
	"github.com/beyu9918/labml/pkg/jsonpath"
)

func TestColorSchemes(t *testing.T) {
	for _, scheme := range []*ColorScheme{DefaultColorScheme(), NoColorScheme(), Scheme(true), Scheme(false)} {
		assert.NotNil(t, scheme.Title)
		assert.NotNil(t, scheme.Step)
		assert.NotNil(t, scheme.Value)
		assert.NotNil(t, scheme.Success)
		assert.NotNil(t, scheme.Warning)
		assert.NotNil(t, scheme.Error)
		assert.NotNil(t, scheme.Muted)
	}

	assert.Equal(t, "title", NoColorScheme().Title.Sprint("title"))
}

func TestIcons(t *testing.T) {
	assert.Equal(t, "✓", SuccessIcon(true))
	assert.Equal(t, "✗", ErrorIcon(true))
	assert.Equal(t, "⚠", WarningIcon(true))

	assert.Contains(t, SuccessIcon(false), "✓")
	assert.Contains(t, ErrorIcon(false), "✗")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"junit", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func sampleSeries() *SeriesData {
	return NewSeriesData("$.metrics.loss", []jsonpath.Point{
		{Line: 1, Step: 10, Value: "0.5"},
		{Line: 2, Step: 20, Value: "[1,2]"},
		{Line: 3, Step: 30, Value: "high"},
	})
}

func TestNewSeriesData(t *testing.T) {
	data := sampleSeries()
	require.Len(t, data.Points, 3)
	assert.Equal(t, 0.5, data.Points[0].Value)
	assert.Equal(t, []any{1.0, 2.0}, data.Points[1].Value)
	assert.Equal(t, "high", data.Points[2].Value)
	assert.Equal(t, "[1,2]", data.Points[1].Raw)
}

func TestFormatSeries_Text(t *testing.T) {
	data := sampleSeries()
	data.Summary = &indicators.Summary{Count: 2, Min: 1, Max: 2, Mean: 1.5}

	out, err := FormatSeries(data, FormatText, NoColorScheme())
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "STEP  VALUE", lines[0])
	assert.Equal(t, "10    0.5", lines[1])
	assert.Equal(t, "20    [1,2]", lines[2])
	assert.Contains(t, out, "count 2  min 1.0000  max 2.0000  mean 1.5000")
}

func TestFormatSeries_JSON(t *testing.T) {
	out, err := FormatSeries(sampleSeries(), FormatJSON, nil)
	require.NoError(t, err)

	var decoded struct {
		Path   string `json:"path"`
		Points []struct {
			Step  int64 `json:"step"`
			Value any   `json:"value"`
		} `json:"points"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "$.metrics.loss", decoded.Path)
	assert.Equal(t, int64(20), decoded.Points[1].Step)
	assert.Equal(t, 0.5, decoded.Points[0].Value)
	assert.NotContains(t, out, "summary")
}

func TestFormatSeries_YAML(t *testing.T) {
	out, err := FormatSeries(sampleSeries(), FormatYAML, nil)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "$.metrics.loss", decoded["path"])
	assert.Len(t, decoded["points"], 3)
}

func TestFormatSeries_Unknown(t *testing.T) {
	_, err := FormatSeries(sampleSeries(), "xml", nil)
	assert.Error(t, err)
}
