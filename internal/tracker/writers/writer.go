// Package writers provides sinks that receive a point-in-time view of a
// tracker's indicators and artifacts at a given step.
package writers

import (
	"errors"

	"github.com/beyu9918/labml/internal/tracker/artifacts"
	"github.com/beyu9918/labml/internal/tracker/indicators"
)

// Writer consumes the tracker state at a step.
//
// The maps and the indicators they hold are live: a Writer must finish
// reading them before Write returns and must not keep references. Writers
// that work in the background copy the state first (see Async).
type Writer interface {
	Write(step int64, inds map[string]*indicators.Indicator, arts map[string]artifacts.Artifact) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc func(step int64, inds map[string]*indicators.Indicator, arts map[string]artifacts.Artifact) error

// Write implements Writer.
func (f WriterFunc) Write(step int64, inds map[string]*indicators.Indicator, arts map[string]artifacts.Artifact) error {
	return f(step, inds, arts)
}

// Multi fans a write out to several writers. Every writer is called even if
// an earlier one fails; the errors are joined.
type Multi []Writer

// Write implements Writer.
func (m Multi) Write(step int64, inds map[string]*indicators.Indicator, arts map[string]artifacts.Artifact) error {
	var errs []error
	for _, w := range m {
		if err := w.Write(step, inds, arts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewLine forwards to every writer that keeps a line open, such as an
// inline Console.
func (m Multi) NewLine() error {
	var errs []error
	for _, w := range m {
		if nl, ok := w.(interface{ NewLine() error }); ok {
			if err := nl.NewLine(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
