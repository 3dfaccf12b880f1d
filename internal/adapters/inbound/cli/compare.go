package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newCompareCmd(opts *rootOptions) *cobra.Command {
	flags := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "compare <old> <new>",
		Short: "Compare two snapshots of a TwinCAT project",
		Long:  "Report added, deleted and modified files, variable declaration changes and the issues of every new or changed unit between two project trees.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			newPath, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			failOn, err := parseSeverity(flags.failOn)
			if err != nil {
				return err
			}

			svc := newAnalyzeService(opts.logger(cmd))
			report, err := svc.Compare(cmd.Context(), oldPath, newPath)
			if err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}

			return emitReport(cmd, flags, failOn, newPath, report)
		},
	}

	flags.register(cmd)
	return cmd
}
