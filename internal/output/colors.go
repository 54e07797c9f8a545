// Package output renders command results for the terminal.
package output

import (
	"github.com/fatih/color"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Title   *color.Color
	Step    *color.Color
	Value   *color.Color
	Success *color.Color
	Warning *color.Color
	Error   *color.Color
	Muted   *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Title:   color.New(color.Bold),
		Step:    color.New(color.FgCyan),
		Value:   color.New(color.FgWhite, color.Bold),
		Success: color.New(color.FgGreen),
		Warning: color.New(color.FgYellow),
		Error:   color.New(color.FgRed),
		Muted:   color.New(color.Faint),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()
	for _, c := range []*color.Color{
		scheme.Title, scheme.Step, scheme.Value,
		scheme.Success, scheme.Warning, scheme.Error, scheme.Muted,
	} {
		c.DisableColor()
	}
	return scheme
}

// Scheme picks the default or the colorless scheme.
func Scheme(noColor bool) *ColorScheme {
	if noColor {
		return NoColorScheme()
	}
	return DefaultColorScheme()
}

// SuccessIcon returns a checkmark symbol with appropriate color
func SuccessIcon(noColor bool) string {
	if noColor {
		return "✓"
	}
	return color.New(color.FgGreen).Sprint("✓")
}

// ErrorIcon returns an X symbol with appropriate color
func ErrorIcon(noColor bool) string {
	if noColor {
		return "✗"
	}
	return color.New(color.FgRed).Sprint("✗")
}

// WarningIcon returns a warning symbol with appropriate color
func WarningIcon(noColor bool) string {
	if noColor {
		return "⚠"
	}
	return color.New(color.FgYellow).Sprint("⚠")
}
