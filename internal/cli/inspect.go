package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/beyu9918/labml/internal/output"
	"github.com/beyu9918/labml/internal/tracker/indicators"
	"github.com/beyu9918/labml/pkg/jsonpath"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <log.jsonl> <path>",
		Short: "Print a value series from a JSON Lines log",
		Long: `Extract a JSONPath expression from every record of a log written by
simulate --log and print it against the step.

Examples:
  labml inspect run.jsonl '$.metrics["train_loss.mean"]'
  labml inspect run.jsonl '$.indexed.test_sample_loss.means[0]' --summary
  labml inspect run.jsonl '$.summaries["fc.weight"]' --last --format json`,
		Args: cobra.ExactArgs(2),
		RunE: runInspect,
	}

	cmd.Flags().Bool("last", false, "Only print the last value")
	cmd.Flags().Bool("summary", false, "Print count, mean and percentiles of numeric values")
	cmd.Flags().StringP("format", "f", "text", "Output format: text, json, yaml")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	last, _ := cmd.Flags().GetBool("last")
	summary, _ := cmd.Flags().GetBool("summary")
	formatName, _ := cmd.Flags().GetString("format")
	noColor, _ := cmd.Flags().GetBool("no-color")

	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	logPath, path := args[0], args[1]
	data, err := os.ReadFile(logPath)
	if err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}

	points, err := jsonpath.Series(string(data), path)
	if err != nil {
		return fmt.Errorf("%s: %w", logPath, err)
	}
	if len(points) == 0 {
		return fmt.Errorf("path %s not found in %s", path, logPath)
	}
	if last {
		points = points[len(points)-1:]
	}

	series := output.NewSeriesData(path, points)
	if summary {
		s, err := summarize(path, points)
		if err != nil {
			return err
		}
		series.Summary = &s
	}

	rendered, err := output.FormatSeries(series, format, output.Scheme(noColor))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
	return err
}

// summarize feeds the numeric values through a histogram indicator so the
// numbers match the summaries the JSONL writer records.
func summarize(path string, points []jsonpath.Point) (indicators.Summary, error) {
	hist := indicators.NewHistogram(path, false)
	for _, p := range points {
		v, err := strconv.ParseFloat(p.Value, 64)
		if err != nil {
			continue
		}
		if err := hist.Collect(v); err != nil {
			return indicators.Summary{}, err
		}
	}

	s, err := hist.Summary()
	if errors.Is(err, indicators.ErrEmptyAggregation) {
		return s, fmt.Errorf("no numeric values at %s", path)
	}
	return s, err
}
