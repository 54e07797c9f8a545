package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = NewRootCmd()

// NewRootCmd builds a fresh command tree. Tests use it so flag state does
// not leak between runs.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "labml",
		Short:   "Track and inspect training metrics from the terminal",
		Version: version,
		Long: `labml aggregates training metrics into rolling windows, histograms,
scalars and per-sample indexed scalars, prints them to the console and
appends them to JSON Lines logs that can be inspected afterwards.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
			logrus.SetOutput(cmd.ErrOrStderr())
		},
		Run: func(cmd *cobra.Command, args []string) {
			// If no subcommand is provided, print help
			cmd.Help()
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	root.AddCommand(newSimulateCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newDefinitionsCmd())
	return root
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return RootCmd.Execute()
}
