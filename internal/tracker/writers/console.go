package writers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/beyu9918/labml/internal/tracker/artifacts"
	"github.com/beyu9918/labml/internal/tracker/indicators"
)

// ColorScheme defines the colors used for different parts of a console line
type ColorScheme struct {
	Step      *color.Color
	Key       *color.Color
	Value     *color.Color
	Empty     *color.Color
	Separator *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Step:      color.New(color.FgCyan, color.Bold),
		Key:       color.New(color.FgBlue),
		Value:     color.New(color.FgWhite, color.Bold),
		Empty:     color.New(color.FgYellow),
		Separator: color.New(color.Faint),
	}
}

func (s *ColorScheme) all() []*color.Color {
	return []*color.Color{s.Step, s.Key, s.Value, s.Empty, s.Separator}
}

// ConsoleConfig contains configuration for Console.
type ConsoleConfig struct {
	Writer      io.Writer
	ForceColors bool
	NoColor     bool

	// Inline rewrites the current line with a carriage return instead of
	// printing a new line per step. Only honored on a terminal.
	Inline bool

	// Precision is the number of decimals printed for values (default 4).
	Precision int
}

// Console prints printable indicators as a single line per step:
//
//	      1,200:  acc: 0.9120  loss.mean: 0.2345
type Console struct {
	writer    io.Writer
	scheme    *ColorScheme
	isTTY     bool
	inline    bool
	precision int

	mu sync.Mutex
}

// NewConsole creates a console writer.
func NewConsole(config ConsoleConfig) *Console {
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.Precision <= 0 {
		config.Precision = 4
	}

	isTTY := isTerminal(config.Writer)
	useColors := !config.NoColor && (config.ForceColors || (isTTY && supportsColors()))

	scheme := DefaultColorScheme()
	for _, c := range scheme.all() {
		if useColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return &Console{
		writer:    config.Writer,
		scheme:    scheme,
		isTTY:     isTTY,
		inline:    config.Inline && isTTY,
		precision: config.Precision,
	}
}

// Write implements Writer.
func (c *Console) Write(step int64, inds map[string]*indicators.Indicator, arts map[string]artifacts.Artifact) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := c.render(step, inds, arts)

	var err error
	if c.inline {
		_, err = fmt.Fprint(c.writer, "\r"+line)
	} else {
		_, err = fmt.Fprintln(c.writer, line)
	}
	return err
}

// NewLine ends an inline line so following output starts on a fresh line.
func (c *Console) NewLine() error {
	if !c.inline {
		return nil
	}
	_, err := fmt.Fprintln(c.writer)
	return err
}

func (c *Console) render(step int64, inds map[string]*indicators.Indicator, arts map[string]artifacts.Artifact) string {
	var parts []string

	for _, name := range sortedNames(inds) {
		ind := inds[name]
		if !ind.IsPrint() {
			continue
		}

		key := c.scheme.Key.Sprint(ind.MeanKey())
		mean, err := ind.Mean()
		switch {
		case errors.Is(err, indicators.ErrEmptyAggregation):
			parts = append(parts, fmt.Sprintf("%s: %s", key, c.scheme.Empty.Sprint("-")))
		case err != nil:
			parts = append(parts, fmt.Sprintf("%s: %s", key, c.scheme.Empty.Sprint("?")))
		default:
			parts = append(parts, fmt.Sprintf("%s: %s", key, c.scheme.Value.Sprint(c.formatValue(mean))))
		}
	}

	for _, name := range sortedNames(arts) {
		art := arts[name]
		if !art.IsPrint() || art.IsEmpty() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", c.scheme.Key.Sprint(name), c.scheme.Value.Sprint(describeArtifact(art))))
	}

	return fmt.Sprintf("%s:%s%s",
		c.scheme.Step.Sprintf("%11s", formatNumber(step)),
		c.scheme.Separator.Sprint("  "),
		strings.Join(parts, "  "))
}

func (c *Console) formatValue(v float64) string {
	return fmt.Sprintf("%.*f", c.precision, v)
}

func describeArtifact(art artifacts.Artifact) string {
	switch a := art.(type) {
	case *artifacts.Text:
		_, values := a.Entries()
		return values[len(values)-1]
	case *artifacts.Table:
		return fmt.Sprintf("%d rows", len(a.Rows()))
	}
	return "..."
}

// formatNumber formats a number with thousands separators.
func formatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, str = "-", str[1:]
	}
	if len(str) <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	offset := len(str) % 3
	if offset > 0 {
		result.WriteString(str[:offset])
	}
	for i := offset; i < len(str); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(str[i : i+3])
	}
	return result.String()
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
