package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	verbose bool
}

// logger writes to the command's stderr so JSON on stdout stays clean.
func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "plcqa",
		Short:         "Code quality checks for TwinCAT PLC projects",
		Long:          "plcqa analyzes TwinCAT 3 Structured Text sources, compares project snapshots and reports rule violations by severity and category.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress and skipped files to stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newCompareCmd(opts))
	cmd.AddCommand(newRulesCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}
