package writers

import (
	"errors"
	"fmt"
	"sync"

	"github.com/beyu9918/labml/internal/tracker/artifacts"
	"github.com/beyu9918/labml/internal/tracker/indicators"
)

// ErrClosed is returned when writing to a closed Async writer.
var ErrClosed = errors.New("writer closed")

type job struct {
	step int64
	inds map[string]*indicators.Indicator
	arts map[string]artifacts.Artifact
}

// Async hands writes to a background goroutine. Each write deep-copies the
// state before returning, so the producer may keep storing and clearing
// while the wrapped writer works.
type Async struct {
	next Writer
	jobs chan job
	wg   sync.WaitGroup

	mu     sync.Mutex // guards closed and the send on jobs
	closed bool

	errMu sync.Mutex
	errs  []error
}

// NewAsync starts a background writer with a queue of the given depth.
// When the queue is full Write blocks.
func NewAsync(next Writer, depth int) *Async {
	if depth <= 0 {
		depth = 1
	}

	a := &Async{
		next: next,
		jobs: make(chan job, depth),
	}

	a.wg.Add(1)
	go a.run()

	return a
}

func (a *Async) run() {
	defer a.wg.Done()

	for j := range a.jobs {
		if err := a.next.Write(j.step, j.inds, j.arts); err != nil {
			a.errMu.Lock()
			a.errs = append(a.errs, fmt.Errorf("step %d: %w", j.step, err))
			a.errMu.Unlock()
		}
	}
}

// Write implements Writer.
func (a *Async) Write(step int64, inds map[string]*indicators.Indicator, arts map[string]artifacts.Artifact) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}

	j := job{
		step: step,
		inds: make(map[string]*indicators.Indicator, len(inds)),
		arts: make(map[string]artifacts.Artifact, len(arts)),
	}
	for name, ind := range inds {
		j.inds[name] = ind.Clone()
	}
	for name, art := range arts {
		j.arts[name] = art.Clone()
	}

	a.jobs <- j
	return nil
}

// Close drains pending writes and returns the errors they produced.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.jobs)
	a.mu.Unlock()

	a.wg.Wait()

	a.errMu.Lock()
	defer a.errMu.Unlock()
	return errors.Join(a.errs...)
}
