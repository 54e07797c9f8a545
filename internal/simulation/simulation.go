// Package simulation drives a tracker store with a synthetic training loop.
//
// The loop mirrors a small image classifier: a train phase that stores a
// batch loss every step and writes at a fixed interval, then a test phase
// that stores per-sample losses and predictions keyed by sample index, then
// the epoch totals and parameter histograms. The store is cleared at the end
// of each epoch.
package simulation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/beyu9918/labml/internal/config"
	"github.com/beyu9918/labml/internal/tracker/artifacts"
	"github.com/beyu9918/labml/internal/tracker/indicators"
	"github.com/beyu9918/labml/internal/tracker/store"
	"github.com/beyu9918/labml/internal/tracker/writers"
)

const (
	numClasses = 10
	paramCount = 64

	// EpochsArtifact is the table artifact receiving one row per epoch.
	EpochsArtifact = "epochs"
)

// DefaultIndicators lists the indicators the loop stores into.
func DefaultIndicators() []indicators.Definition {
	return []indicators.Definition{
		{Kind: indicators.KindQueue, Name: "train_loss", IsPrint: true, QueueSize: 20},
		{Kind: indicators.KindHistogram, Name: "test_loss", IsPrint: true},
		{Kind: indicators.KindHistogram, Name: "accuracy", IsPrint: true},
		{Kind: indicators.KindIndexedScalar, Name: "test_sample_loss"},
		{Kind: indicators.KindIndexedScalar, Name: "test_sample_pred"},
		{Kind: indicators.KindHistogram, Name: "fc.weight"},
		{Kind: indicators.KindHistogram, Name: "fc.grad"},
	}
}

// LineBreaker is implemented by writers that keep a line open between
// writes, such as an inline console.
type LineBreaker interface {
	NewLine() error
}

// Result summarizes a finished run.
type Result struct {
	Steps    int64
	Writes   int
	Accuracy float64
	TestLoss float64
}

// Simulation runs the synthetic loop against a store.
type Simulation struct {
	config *config.RunConfig
	store  *store.Store
	writer writers.Writer
	log    logrus.FieldLogger
	rng    *rand.Rand

	step    int64
	writes  int
	weights []float64
}

// New creates a simulation. The store must not have the default indicators
// registered yet; Register does that.
func New(cfg *config.RunConfig, st *store.Store, w writers.Writer, log logrus.FieldLogger) *Simulation {
	if log == nil {
		log = logrus.StandardLogger()
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	weights := make([]float64, paramCount)
	for i := range weights {
		weights[i] = rng.NormFloat64() * 0.1
	}

	return &Simulation{
		config:  cfg,
		store:   st,
		writer:  w,
		log:     log,
		rng:     rng,
		weights: weights,
	}
}

// Register adds the configured indicators, then any of DefaultIndicators the
// config left out, plus the per-epoch table artifact.
func (s *Simulation) Register() error {
	defs := append([]indicators.Definition(nil), s.config.Indicators...)
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		seen[def.Name] = true
	}
	for _, def := range DefaultIndicators() {
		if !seen[def.Name] {
			defs = append(defs, def)
		}
	}

	for _, def := range defs {
		ind, err := indicators.FromDefinition(def)
		if err != nil {
			return err
		}
		if err := s.store.AddIndicator(ind); err != nil {
			return err
		}
	}

	return s.store.AddArtifact(artifacts.NewTable(EpochsArtifact, false))
}

// Run executes every epoch. It stops between steps when ctx is done.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	for epoch := 0; epoch < s.config.Epochs; epoch++ {
		log := s.log.WithField("epoch", epoch)
		log.Debug("train phase")

		if err := s.train(ctx, epoch); err != nil {
			return nil, err
		}

		log.Debug("test phase")
		accuracy, testLoss, err := s.test(ctx, epoch)
		if err != nil {
			return nil, err
		}
		result.Accuracy = accuracy
		result.TestLoss = testLoss

		if err := s.storeParameters(); err != nil {
			return nil, err
		}

		row := fmt.Sprintf("epoch %d", epoch)
		if err := s.store.Artifacts()[EpochsArtifact].Collect(&row, map[string]any{
			"step":      s.step,
			"test_loss": testLoss,
			"accuracy":  accuracy,
		}); err != nil {
			return nil, err
		}

		if err := s.write(); err != nil {
			return nil, err
		}
		if lb, ok := s.writer.(LineBreaker); ok {
			if err := lb.NewLine(); err != nil {
				return nil, err
			}
		}

		s.store.Clear()
	}

	result.Steps = s.step
	result.Writes = s.writes
	return result, nil
}

func (s *Simulation) train(ctx context.Context, epoch int) error {
	for i := 0; i < s.config.StepsPerEpoch; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		progress := float64(epoch*s.config.StepsPerEpoch+i) / float64(s.config.StepsPerEpoch)
		loss := 2.3*math.Exp(-0.8*progress) + 0.05 + s.rng.Float64()*0.1

		if err := s.store.Store("train_loss", loss); err != nil {
			return err
		}
		s.step++

		for j := range s.weights {
			s.weights[j] += s.rng.NormFloat64() * 0.001
		}

		if i%s.config.WriteEvery == 0 {
			if err := s.write(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Simulation) test(ctx context.Context, epoch int) (float64, float64, error) {
	total := s.config.TestSamples
	correct := 0
	lossSum := 0.0

	// Higher epochs classify better.
	skill := 1 - 0.7*math.Exp(-float64(epoch+1))

	for idx := 0; idx < total; idx += s.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}

		n := min(s.config.BatchSize, total-idx)
		indexes := make([]int, n)
		losses := make([]float64, n)
		preds := make([]int, n)

		for i := 0; i < n; i++ {
			indexes[i] = idx + i
			target := (idx + i) % numClasses
			if s.rng.Float64() < skill {
				preds[i] = target
				correct++
				losses[i] = s.rng.Float64() * 0.2
			} else {
				preds[i] = (target + 1 + s.rng.Intn(numClasses-1)) % numClasses
				losses[i] = 1 + s.rng.Float64()*2
			}
			lossSum += losses[i]
		}

		if err := s.store.Store("test_sample_loss", [2]any{indexes, losses}); err != nil {
			return 0, 0, err
		}
		if err := s.store.Store("test_sample_pred", [2]any{indexes, preds}); err != nil {
			return 0, 0, err
		}
	}

	if total == 0 {
		return 0, 0, nil
	}

	accuracy := float64(correct) / float64(total)
	testLoss := lossSum / float64(total)

	if err := s.store.StoreKV(
		store.KV{Name: "test_loss", Value: testLoss},
		store.KV{Name: "accuracy", Value: accuracy},
	); err != nil {
		return 0, 0, err
	}
	return accuracy, testLoss, nil
}

func (s *Simulation) storeParameters() error {
	grads := make([]float64, len(s.weights))
	for i := range grads {
		grads[i] = s.rng.NormFloat64() * 0.01
	}

	return s.store.Store(map[string]any{
		"fc.weight": s.weights,
		"fc.grad":   grads,
	})
}

func (s *Simulation) write() error {
	if err := s.store.Write(s.writer, s.step); err != nil {
		return fmt.Errorf("write at step %d: %w", s.step, err)
	}
	s.writes++
	return nil
}
