package tracker

import (
	"github.com/beyu9918/labml/internal/tracker/artifacts"
	"github.com/beyu9918/labml/internal/tracker/indicators"
	"github.com/beyu9918/labml/internal/tracker/store"
	"github.com/beyu9918/labml/internal/tracker/value"
	"github.com/beyu9918/labml/internal/tracker/writers"
)

type (
	// Tracker is the registry of indicators and artifacts.
	Tracker = store.Store
	Option  = store.Option
	Policy  = store.Policy
	KV      = store.KV

	Snapshot = store.Snapshot

	Indicator     = indicators.Indicator
	Definition    = indicators.Definition
	Kind          = indicators.Kind
	Pair          = indicators.Pair
	IndexedValues = indicators.IndexedValues
	Summary       = indicators.Summary

	Artifact = artifacts.Artifact

	Writer        = writers.Writer
	WriterFunc    = writers.WriterFunc
	Multi         = writers.Multi
	ConsoleConfig = writers.ConsoleConfig

	Array      = value.Array
	TensorLike = value.TensorLike
)

// Indicator kinds.
const (
	KindQueue         = indicators.KindQueue
	KindHistogram     = indicators.KindHistogram
	KindScalar        = indicators.KindScalar
	KindIndexedScalar = indicators.KindIndexedScalar
)

// Errors returned by the tracker; match them with errors.Is.
var (
	ErrDuplicateName         = store.ErrDuplicateName
	ErrInvalidStoreCall      = store.ErrInvalidStoreCall
	ErrUnknownName           = store.ErrUnknownName
	ErrEmptyAggregation      = indicators.ErrEmptyAggregation
	ErrMalformedIndexedInput = indicators.ErrMalformedIndexedInput
	ErrUnsupportedValueType  = value.ErrUnsupportedValueType
)

// Constructors and options re-exported from the internal packages.
var (
	// Tracker construction, options and implicit-creation policies.
	New                = store.New
	WithPolicy         = store.WithPolicy
	WithIndicatorsFile = store.WithIndicatorsFile
	WithArtifactsFile  = store.WithArtifactsFile
	WithLogger         = store.WithLogger
	DefaultPolicy      = store.DefaultPolicy
	StrictPolicy       = store.StrictPolicy

	// Indicator constructors.
	NewQueue         = indicators.NewQueue
	NewHistogram     = indicators.NewHistogram
	NewScalar        = indicators.NewScalar
	NewIndexedScalar = indicators.NewIndexedScalar
	FromDefinition   = indicators.FromDefinition

	// Artifact constructors.
	NewText  = artifacts.NewText
	NewTable = artifacts.NewTable

	// Writers.
	NewConsole = writers.NewConsole
	NewJSONL   = writers.NewJSONL
	OpenJSONL  = writers.OpenJSONL
	NewAsync   = writers.NewAsync

	// Value coercion.
	NewArray = value.NewArray
	Flatten  = value.Flatten
)
