// Package cli implements the dispatchsim command tree.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/dispatchsim/internal/logging"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for dispatchsim.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dispatchsim",
		Short: "dispatchsim — oracle-driven task dispatch simulator",
		Long: "dispatchsim replays workloads of constrained jobs through a discrete-event\n" +
			"simulation, asking an external decision oracle which ready task to place next.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.New(logging.ParseLevel(flagLogLevel), flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Shorthand for --log-level=debug")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newRunCmd(),
		newOracleCmd(),
		newResultsCmd(),
		newValidateCmd(),
	)

	return root
}
