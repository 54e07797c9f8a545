package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/beyu9918/labml/internal/config"
	"github.com/beyu9918/labml/internal/output"
	"github.com/beyu9918/labml/internal/simulation"
	"github.com/beyu9918/labml/internal/tracker/store"
	"github.com/beyu9918/labml/internal/tracker/writers"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a synthetic training loop through the tracker",
		Long: `Simulate a small classifier training run. Every train step stores the
batch loss into a rolling window, every test phase stores per-sample losses
and predictions keyed by sample index, and the end of each epoch stores the
test totals and parameter histograms before clearing the tracker.

Flags override values from the config file:
  labml simulate --config run.yaml --epochs 5 --log run.jsonl`,
		Args: cobra.NoArgs,
		RunE: runSimulate,
	}

	cmd.Flags().StringP("config", "c", "", "Run configuration file (YAML or JSON)")
	cmd.Flags().String("name", "", "Run name")
	cmd.Flags().Int("epochs", 0, "Number of epochs")
	cmd.Flags().Int("steps", 0, "Train steps per epoch")
	cmd.Flags().Int("write-every", 0, "Write the tracker every N train steps")
	cmd.Flags().Int("test-samples", 0, "Test samples per epoch")
	cmd.Flags().Int("batch-size", 0, "Test batch size")
	cmd.Flags().Int64("seed", 0, "Random seed")

	// Output flags
	cmd.Flags().String("log", "", "Append JSON Lines records to this file")
	cmd.Flags().String("indicators-file", "", "Save indicator definitions to this file")
	cmd.Flags().String("artifacts-file", "", "Save artifact definitions to this file")
	cmd.Flags().Bool("async", false, "Write the log from a background goroutine")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().Bool("inline", false, "Rewrite the console line between writes")
	return cmd
}

func runSimulate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	noColor, _ := cmd.Flags().GetBool("no-color")
	inline, _ := cmd.Flags().GetBool("inline")

	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		cfg = loaded
	}

	if err := applySimulateFlags(cmd, cfg); err != nil {
		return err
	}

	log := logrus.StandardLogger().WithField("run", cfg.Name)
	out := cmd.OutOrStdout()

	opts := []store.Option{store.WithLogger(log)}
	if cfg.Output.IndicatorsFile != "" {
		opts = append(opts, store.WithIndicatorsFile(cfg.Output.IndicatorsFile))
	}
	if cfg.Output.ArtifactsFile != "" {
		opts = append(opts, store.WithArtifactsFile(cfg.Output.ArtifactsFile))
	}
	st := store.New(opts...)

	sinks := writers.Multi{writers.NewConsole(writers.ConsoleConfig{
		Writer:  out,
		NoColor: noColor,
		Inline:  inline,
	})}

	var closers []func() error
	if cfg.Output.Log != "" {
		jsonl, err := writers.OpenJSONL(cfg.Output.Log)
		if err != nil {
			return err
		}
		closers = append(closers, jsonl.Close)

		if cfg.Output.Async {
			async := writers.NewAsync(jsonl, 16)
			// The async writer drains before the file is closed.
			closers = append([]func() error{async.Close}, closers...)
			sinks = append(sinks, async)
		} else {
			sinks = append(sinks, jsonl)
		}
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	scheme := output.Scheme(noColor)
	fmt.Fprintf(out, "%s: %d epochs x %d steps\n", scheme.Title.Sprint(cfg.Name), cfg.Epochs, cfg.StepsPerEpoch)

	sim := simulation.New(cfg, st, sinks, log)
	result, runErr := func() (*simulation.Result, error) {
		if err := sim.Register(); err != nil {
			return nil, err
		}
		return sim.Run(ctx)
	}()

	var closeErrs []error
	for _, c := range closers {
		if err := c(); err != nil {
			closeErrs = append(closeErrs, err)
		}
	}
	if err := errors.Join(append([]error{runErr}, closeErrs...)...); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Finished after %d steps (%d writes): accuracy %s, test loss %s\n",
		output.SuccessIcon(noColor), result.Steps, result.Writes,
		scheme.Value.Sprintf("%.4f", result.Accuracy), scheme.Value.Sprintf("%.4f", result.TestLoss))
	if cfg.Output.Log != "" {
		fmt.Fprintf(out, "Log written to %s\n", cfg.Output.Log)
	}
	return nil
}

// applySimulateFlags copies explicitly set flags over the config.
func applySimulateFlags(cmd *cobra.Command, cfg *config.RunConfig) error {
	flags := cmd.Flags()

	ints := map[string]*int{
		"epochs":       &cfg.Epochs,
		"steps":        &cfg.StepsPerEpoch,
		"write-every":  &cfg.WriteEvery,
		"test-samples": &cfg.TestSamples,
		"batch-size":   &cfg.BatchSize,
	}
	for name, dst := range ints {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	strs := map[string]*string{
		"name":            &cfg.Name,
		"log":             &cfg.Output.Log,
		"indicators-file": &cfg.Output.IndicatorsFile,
		"artifacts-file":  &cfg.Output.ArtifactsFile,
	}
	for name, dst := range strs {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}

	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("async") {
		cfg.Output.Async, _ = flags.GetBool("async")
	}

	config.ApplyDefaults(cfg)
	return config.Validate(cfg)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
