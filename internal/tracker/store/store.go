// Package store owns the indicators and artifacts of a run and routes
// observations to them by name.
//
// A Store is driven by a single producer: it stores values, writes the state
// to a writer at steps it chooses, and clears the accumulated values at
// boundaries it chooses. Registrations survive Clear.
//
// A Store is not safe for concurrent use.
package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/beyu9918/labml/internal/tracker/artifacts"
	"github.com/beyu9918/labml/internal/tracker/definitions"
	"github.com/beyu9918/labml/internal/tracker/indicators"
	"github.com/beyu9918/labml/internal/tracker/writers"
)

var (
	// ErrDuplicateName is returned when a name is already used by an
	// indicator or an artifact.
	ErrDuplicateName = errors.New("name already used")

	// ErrInvalidStoreCall is returned when Store receives arguments of the
	// wrong number or shape.
	ErrInvalidStoreCall = errors.New("invalid store call")

	// ErrUnknownName is returned by StrictPolicy for names never registered.
	ErrUnknownName = errors.New("unknown name")
)

// Policy creates the indicator for a name that was stored before being
// registered. The value is the first observation, which the policy may use
// to pick a kind.
type Policy func(name string, value any) (*indicators.Indicator, error)

// DefaultPolicy creates a printable Scalar whatever the value looks like.
// Paired (index, value) observations are therefore rejected by the new
// indicator; register an IndexedScalar up front for those.
func DefaultPolicy(name string, _ any) (*indicators.Indicator, error) {
	return indicators.NewScalar(name, true), nil
}

// StrictPolicy refuses to create indicators implicitly.
func StrictPolicy(name string, _ any) (*indicators.Indicator, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnknownName, name)
}

// KV is a named value for StoreKV.
type KV struct {
	Name  string
	Value any
}

// Option configures a Store.
type Option func(*Store)

// WithPolicy sets the policy for implicitly created indicators.
func WithPolicy(p Policy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

// WithIndicatorsFile persists indicator definitions to path on every
// registration.
func WithIndicatorsFile(path string) Option {
	return func(s *Store) {
		s.indicatorsFile = path
	}
}

// WithArtifactsFile persists artifact definitions to path on every
// registration.
func WithArtifactsFile(path string) Option {
	return func(s *Store) {
		s.artifactsFile = path
	}
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// Store is the registry of indicators and artifacts.
type Store struct {
	indicators map[string]*indicators.Indicator
	artifacts  map[string]artifacts.Artifact

	policy         Policy
	indicatorsFile string
	artifactsFile  string
	log            logrus.FieldLogger
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		indicators: make(map[string]*indicators.Indicator),
		artifacts:  make(map[string]artifacts.Artifact),
		policy:     DefaultPolicy,
		log:        logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SaveIndicators sets the indicator definitions file and writes it now.
func (s *Store) SaveIndicators(path string) error {
	s.indicatorsFile = path
	return s.persistIndicators()
}

// SaveArtifacts sets the artifact definitions file and writes it now.
func (s *Store) SaveArtifacts(path string) error {
	s.artifactsFile = path
	return s.persistArtifacts()
}

func (s *Store) checkName(name string) error {
	if _, ok := s.indicators[name]; ok {
		return fmt.Errorf("%w: %s is an indicator", ErrDuplicateName, name)
	}
	if _, ok := s.artifacts[name]; ok {
		return fmt.Errorf("%w: %s is an artifact", ErrDuplicateName, name)
	}
	return nil
}

// AddIndicator registers ind and clears its state. Persisting definitions
// is advisory: a failed save is logged and does not undo the registration.
func (s *Store) AddIndicator(ind *indicators.Indicator) error {
	if err := s.checkName(ind.Name()); err != nil {
		return err
	}

	ind.Clear()
	s.insertIndicator(ind)
	return nil
}

func (s *Store) insertIndicator(ind *indicators.Indicator) {
	s.indicators[ind.Name()] = ind

	s.log.WithFields(logrus.Fields{
		"name": ind.Name(),
		"kind": ind.Kind(),
	}).Debug("indicator registered")

	if err := s.persistIndicators(); err != nil {
		s.log.WithError(err).WithField("path", s.indicatorsFile).Warn("failed to save indicator definitions")
	}
}

// AddArtifact registers art and clears its state.
func (s *Store) AddArtifact(art artifacts.Artifact) error {
	if err := s.checkName(art.Name()); err != nil {
		return err
	}

	s.artifacts[art.Name()] = art
	art.Clear()

	s.log.WithFields(logrus.Fields{
		"name": art.Name(),
		"kind": art.Definition().Kind,
	}).Debug("artifact registered")

	if err := s.persistArtifacts(); err != nil {
		s.log.WithError(err).WithField("path", s.artifactsFile).Warn("failed to save artifact definitions")
	}
	return nil
}

func (s *Store) persistIndicators() error {
	if s.indicatorsFile == "" {
		return nil
	}
	return definitions.SaveIndicators(s.indicatorsFile, s.indicators)
}

func (s *Store) persistArtifacts() error {
	if s.artifactsFile == "" {
		return nil
	}
	return definitions.SaveArtifacts(s.artifactsFile, s.artifacts)
}

// Store records values. Accepted call shapes:
//
//	Store()                              // nothing to store
//	Store(map[string]any{"loss": 0.3})   // names in sorted order
//	Store([]KV{{"loss", 0.3}})           // names in the given order
//	Store("loss", 0.3)
//
// Anything else fails with ErrInvalidStoreCall. Values are stored one name
// at a time; if one fails, earlier names keep their new values.
func (s *Store) Store(args ...any) error {
	switch len(args) {
	case 0:
		return nil
	case 1:
		switch values := args[0].(type) {
		case map[string]any:
			names := make([]string, 0, len(values))
			for name := range values {
				names = append(names, name)
			}
			sort.Strings(names)

			for _, name := range names {
				if err := s.StoreOne(name, values[name]); err != nil {
					return err
				}
			}
			return nil
		case []KV:
			return s.StoreKV(values...)
		}
		return fmt.Errorf("%w: single argument must be map[string]any or []KV, got %T", ErrInvalidStoreCall, args[0])
	case 2:
		name, ok := args[0].(string)
		if !ok {
			return fmt.Errorf("%w: name must be a string, got %T", ErrInvalidStoreCall, args[0])
		}
		return s.StoreOne(name, args[1])
	}

	return fmt.Errorf("%w: got %d arguments", ErrInvalidStoreCall, len(args))
}

// StoreKV records named values in order.
func (s *Store) StoreKV(kvs ...KV) error {
	for _, kv := range kvs {
		if err := s.StoreOne(kv.Name, kv.Value); err != nil {
			return err
		}
	}
	return nil
}

// StoreOne routes a single value. Unknown names get an indicator from the
// policy; artifacts receive the value without a key.
func (s *Store) StoreOne(name string, value any) error {
	if art, ok := s.artifacts[name]; ok {
		return art.Collect(nil, value)
	}

	if ind, ok := s.indicators[name]; ok {
		return ind.Collect(value)
	}

	created, err := s.policy(name, value)
	if err != nil {
		return err
	}
	if created == nil || created.Name() != name {
		return fmt.Errorf("policy did not create an indicator named %q", name)
	}

	// Collect before registering so a rejected value leaves no trace.
	created.Clear()
	if err := created.Collect(value); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"name": name,
		"kind": created.Kind(),
	}).Debug("indicator created on first store")
	s.insertIndicator(created)
	return nil
}

// Clear empties every indicator and artifact. Registrations are kept.
func (s *Store) Clear() {
	for _, ind := range s.indicators {
		ind.Clear()
	}
	for _, art := range s.artifacts {
		art.Clear()
	}
}

// Write hands the current state to w at step. It does not clear anything.
// The maps passed to w are live; w must not keep them.
func (s *Store) Write(w writers.Writer, step int64) error {
	return w.Write(step, s.indicators, s.artifacts)
}

// Indicator returns the indicator registered under name.
func (s *Store) Indicator(name string) (*indicators.Indicator, bool) {
	ind, ok := s.indicators[name]
	return ind, ok
}

// Artifact returns the artifact registered under name.
func (s *Store) Artifact(name string) (artifacts.Artifact, bool) {
	art, ok := s.artifacts[name]
	return art, ok
}

// Names returns every registered name, sorted.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.indicators)+len(s.artifacts))
	for name := range s.indicators {
		names = append(names, name)
	}
	for name := range s.artifacts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Indicators returns a copy of the name to indicator map. The indicators
// themselves are shared.
func (s *Store) Indicators() map[string]*indicators.Indicator {
	out := make(map[string]*indicators.Indicator, len(s.indicators))
	for name, ind := range s.indicators {
		out[name] = ind
	}
	return out
}

// Artifacts returns a copy of the name to artifact map.
func (s *Store) Artifacts() map[string]artifacts.Artifact {
	out := make(map[string]artifacts.Artifact, len(s.artifacts))
	for name, art := range s.artifacts {
		out[name] = art
	}
	return out
}

// Snapshot is a deep copy of a store's state.
type Snapshot struct {
	Indicators map[string]*indicators.Indicator
	Artifacts  map[string]artifacts.Artifact
}

// Snapshot deep-copies the current state. Later stores and clears do not
// affect it, so it can be merged or written elsewhere.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Indicators: make(map[string]*indicators.Indicator, len(s.indicators)),
		Artifacts:  make(map[string]artifacts.Artifact, len(s.artifacts)),
	}
	for name, ind := range s.indicators {
		snap.Indicators[name] = ind.Clone()
	}
	for name, art := range s.artifacts {
		snap.Artifacts[name] = art.Clone()
	}
	return snap
}

// Write hands the snapshot to w.
func (snap Snapshot) Write(w writers.Writer, step int64) error {
	return w.Write(step, snap.Indicators, snap.Artifacts)
}
