package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/beyu9918/labml/internal/output"
	"github.com/beyu9918/labml/internal/tracker/definitions"
)

func newDefinitionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "definitions",
		Short: "Work with saved indicator and artifact definitions",
	}

	validate := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a definitions file and list what it would register",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidateDefinitions,
	}
	validate.Flags().StringP("kind", "k", string(definitions.KindIndicators), "Definitions kind: indicators or artifacts")
	validate.Flags().Bool("no-color", false, "Disable colored output")

	cmd.AddCommand(validate)
	return cmd
}

func runValidateDefinitions(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	noColor, _ := cmd.Flags().GetBool("no-color")
	path := args[0]
	out := cmd.OutOrStdout()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read definitions: %w", err)
	}

	verrs, err := definitions.ValidateFile(data, path, definitions.Kind(kind))
	if err != nil {
		return err
	}
	if len(verrs) > 0 {
		for _, e := range verrs {
			fmt.Fprintf(out, "%s %v\n", output.ErrorIcon(noColor), e)
		}
		return fmt.Errorf("%s: %d validation errors", path, len(verrs))
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tPRINT")

	switch definitions.Kind(kind) {
	case definitions.KindIndicators:
		doc, err := definitions.LoadIndicators(path)
		if err != nil {
			return err
		}
		inds, err := doc.Build()
		if err != nil {
			return err
		}
		for _, ind := range inds {
			fmt.Fprintf(tw, "%s\t%s\t%t\n", ind.Name(), ind.Kind(), ind.IsPrint())
		}
	case definitions.KindArtifacts:
		doc, err := definitions.LoadArtifacts(path)
		if err != nil {
			return err
		}
		arts, err := doc.Build()
		if err != nil {
			return err
		}
		for _, art := range arts {
			fmt.Fprintf(tw, "%s\t%s\t%t\n", art.Name(), art.Definition().Kind, art.IsPrint())
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s is valid\n", output.SuccessIcon(noColor), path)
	return nil
}
