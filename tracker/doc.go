// Package tracker aggregates named numeric observations from an iterative
// process and hands consistent snapshots to writers at increasing steps.
//
// This package re-exports the building blocks under internal/tracker:
//
//   - value: coercion of numbers, lists, arrays and tensors to flat sequences
//   - indicators: Queue, Histogram, Scalar and IndexedScalar aggregations
//   - artifacts: non-numeric payloads sharing the name space
//   - store: the registry routing observations by name
//   - writers: console, JSON Lines, fan-out and background sinks
//   - definitions: YAML/JSON persistence of indicator and artifact shapes
//
// # Quick Start
//
//	t := tracker.New(tracker.WithIndicatorsFile("indicators.yaml"))
//	_ = t.AddIndicator(tracker.NewQueue("loss", 20, true))
//	_ = t.AddIndicator(tracker.NewIndexedScalar("sample_loss"))
//
//	console := tracker.NewConsole(tracker.ConsoleConfig{})
//	for step := int64(1); step <= 1000; step++ {
//	    _ = t.Store("loss", batchLoss())
//	    if step%100 == 0 {
//	        _ = t.Write(console, step)
//	        t.Clear()
//	    }
//	}
//
// A Tracker assumes a single producer. Writers receive live state and must
// not retain it; wrap slow writers with NewAsync, which copies first.
package tracker
