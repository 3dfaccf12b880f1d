package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/plcqa/plcqa/internal/adapters/outbound/cache"
	"github.com/plcqa/plcqa/internal/adapters/outbound/config"
	"github.com/plcqa/plcqa/internal/adapters/outbound/gitinfo"
	"github.com/plcqa/plcqa/internal/adapters/outbound/history"
	"github.com/plcqa/plcqa/internal/adapters/outbound/scanner"
	"github.com/plcqa/plcqa/internal/adapters/outbound/tui"
	"github.com/plcqa/plcqa/internal/application"
	"github.com/plcqa/plcqa/internal/domain"
	"github.com/spf13/cobra"
)

// reportFlags are shared by analyze and compare.
type reportFlags struct {
	jsonOutput  bool
	ciMode      bool
	failOn      string
	showHistory bool
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Output report as JSON")
	cmd.Flags().BoolVar(&f.ciMode, "ci", false, "CI mode: exit 1 if any issue is at or above --fail-on")
	cmd.Flags().StringVar(&f.failOn, "fail-on", "critical", "Lowest severity that fails CI mode (critical, warning, info)")
	cmd.Flags().BoolVar(&f.showHistory, "history", false, "Show run history instead of the report")
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	flags := &reportFlags{}
	var useCache bool

	cmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze a TwinCAT project tree",
		Long:  "Walk a TwinCAT project, run every quality rule over its POUs, GVLs and DUTs and print the report.",
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

			failOn, err := parseSeverity(flags.failOn)
			if err != nil {
				return err
			}

			svc := newAnalyzeService(opts.logger(cmd))
			if useCache {
				svc = svc.WithCache(cache.New())
			}
			report, err := svc.Analyze(cmd.Context(), absPath)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			return emitReport(cmd, flags, failOn, absPath, report)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&useCache, "cache", false, "Reuse results of units unchanged since the last cached run")
	return cmd
}

func newAnalyzeService(logger *slog.Logger) *application.AnalyzeService {
	return application.NewAnalyzeService(
		scanner.New(logger),
		config.New(),
		gitinfo.New(),
		logger,
	)
}

// emitReport records the run, prints it and applies the CI gate.
func emitReport(cmd *cobra.Command, flags *reportFlags, failOn domain.Severity, historyPath string, report *domain.Report) error {
	hist := history.New()
	_ = hist.Save(historyPath, domain.NewRunEntry(report, time.Now().Format(time.RFC3339))) // best-effort

	if flags.showHistory {
		entries, err := hist.Load(historyPath)
		if err != nil {
			return fmt.Errorf("loading history: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
		return nil
	}

	if flags.jsonOutput {
		if err := renderJSON(cmd, report); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(report))
	}

	if flags.ciMode {
		if n := report.IssuesAtOrAbove(failOn); n > 0 {
			return fmt.Errorf("%d issues at or above %s severity", n, strings.ToLower(string(failOn)))
		}
	}
	return nil
}

func parseSeverity(s string) (domain.Severity, error) {
	for _, sev := range domain.Severities {
		if strings.EqualFold(s, string(sev)) {
			return sev, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q (valid: critical, warning, info)", s)
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
