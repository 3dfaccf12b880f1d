package cli

import (
	"fmt"

	"github.com/plcqa/plcqa/internal/domain/rules"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show plcqa version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "plcqa %s (%s), rule table v%s\n", version, commit, rules.TableVersion)
			return nil
		},
	}
}
