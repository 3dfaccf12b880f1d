package cli

import (
	"fmt"
	"path/filepath"

	"github.com/plcqa/plcqa/internal/adapters/outbound/config"
	"github.com/plcqa/plcqa/internal/adapters/outbound/tui"
	"github.com/plcqa/plcqa/internal/domain/rules"
	"github.com/spf13/cobra"
)

// RuleTable is the JSON form of the rule listing.
type RuleTable struct {
	Version  string       `json:"version"`
	Rules    []rules.Rule `json:"rules"`
	Disabled []string     `json:"disabled"`
}

func newRulesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "rules [path]",
		Short: "List the quality rules",
		Long:  "Print every rule with its severity, category and suggestion. Rules disabled by the project's .plcqa.yaml are marked.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg, err := config.New().Load(absPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if jsonOutput {
				disabled := cfg.Rules.Disable
				if disabled == nil {
					disabled = []string{}
				}
				return renderJSON(cmd, RuleTable{Version: rules.TableVersion, Rules: rules.Table, Disabled: disabled})
			}

			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRules(rules.Table, cfg))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output rules as JSON")

	return cmd
}
