package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/plcqa/plcqa/internal/domain"
	"github.com/plcqa/plcqa/internal/domain/rules"
)

// registerTools registers all plcqa MCP tools on the given server.
func registerTools(s *server.MCPServer, h *handlers) {
	// 1. plcqa_analyze
	s.AddTool(
		mcplib.NewTool("plcqa_analyze",
			mcplib.WithDescription("Analyzes a TwinCAT project tree and returns the full quality report as JSON"),
			mcplib.WithString("path", mcplib.Description("Project directory (defaults to the server's project path)")),
			mcplib.WithString("min_severity", mcplib.Description("Only return issues at or above this severity: critical, warning or info")),
		),
		h.handleAnalyze,
	)

	// 2. plcqa_compare
	s.AddTool(
		mcplib.NewTool("plcqa_compare",
			mcplib.WithDescription("Compares two snapshots of a TwinCAT project and returns file changes, variable changes and issues as JSON"),
			mcplib.WithString("old", mcplib.Required(), mcplib.Description("Directory of the old snapshot")),
			mcplib.WithString("new", mcplib.Required(), mcplib.Description("Directory of the new snapshot")),
		),
		h.handleCompare,
	)

	// 3. plcqa_check_file
	s.AddTool(
		mcplib.NewTool("plcqa_check_file",
			mcplib.WithDescription("Returns the issues and metrics of a single unit of the project"),
			mcplib.WithString("file", mcplib.Required(), mcplib.Description("Path of the unit relative to the project root, e.g. POUs/MAIN.TcPOU")),
		),
		h.handleCheckFile,
	)

	// 4. plcqa_rules
	s.AddTool(
		mcplib.NewTool("plcqa_rules",
			mcplib.WithDescription("Returns the rule table: id, severity, category, message and suggestion of every rule"),
		),
		h.handleRules,
	)
}

func (h *handlers) resolve(path string) string {
	if path == "" {
		return h.projectPath
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(h.projectPath, path)
}

func (h *handlers) handleAnalyze(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	minSeverity := request.GetString("min_severity", "")
	var threshold domain.Severity
	if minSeverity != "" {
		sev, ok := parseSeverity(minSeverity)
		if !ok {
			return errorResult(fmt.Sprintf("unknown severity %q", minSeverity)), nil
		}
		threshold = sev
	}

	report, err := h.analyzer.Analyze(ctx, h.resolve(request.GetString("path", "")))
	if err != nil {
		return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	h.remember(report)

	if threshold != "" {
		return jsonResult(withIssues(report, filterIssues(report.Issues, threshold)))
	}
	return jsonResult(report)
}

func (h *handlers) handleCompare(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	oldPath, err := request.RequireString("old")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	newPath, err := request.RequireString("new")
	if err != nil {
		return errorResult(err.Error()), nil
	}

	report, err := h.analyzer.Compare(ctx, h.resolve(oldPath), h.resolve(newPath))
	if err != nil {
		return errorResult(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	h.remember(report)
	return jsonResult(report)
}

func (h *handlers) handleCheckFile(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	file, err := request.RequireString("file")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	file = filepath.ToSlash(filepath.Clean(file))

	report, err := h.analyzer.Analyze(ctx, h.projectPath)
	if err != nil {
		return errorResult(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	h.remember(report)

	type fileIssues struct {
		File    string            `json:"file"`
		Metrics *domain.FileStats `json:"metrics,omitempty"`
		Issues  []domain.Issue    `json:"issues"`
	}

	result := fileIssues{File: file, Issues: []domain.Issue{}}
	for i := range report.Files {
		if report.Files[i].Path == file {
			result.Metrics = &report.Files[i]
		}
	}
	if result.Metrics == nil {
		return errorResult(fmt.Sprintf("no analyzable unit %q in project", file)), nil
	}
	for _, issue := range report.Issues {
		if issue.File == file {
			result.Issues = append(result.Issues, issue)
		}
	}
	return jsonResult(result)
}

func (h *handlers) handleRules(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	return jsonResult(ruleTable())
}

func ruleTable() any {
	return struct {
		Version string       `json:"version"`
		Rules   []rules.Rule `json:"rules"`
	}{rules.TableVersion, rules.Table}
}

// withIssues rebuilds r around a subset of its issues so the summary counts
// match what is returned.
func withIssues(r *domain.Report, issues []domain.Issue) *domain.Report {
	return domain.NewReport(domain.ReportInput{
		Mode:            r.Mode,
		GeneratedAt:     r.GeneratedAt,
		ProjectPath:     r.ProjectPath,
		SourcePath:      r.SourcePath,
		CommitHash:      r.CommitHash,
		Units:           r.Units,
		Files:           r.Files,
		FileChanges:     r.FileChanges,
		VariableChanges: r.VariableChanges,
		Issues:          issues,
		Failures:        r.Failures,
	})
}

func filterIssues(issues []domain.Issue, threshold domain.Severity) []domain.Issue {
	out := []domain.Issue{}
	for _, issue := range issues {
		if issue.Severity.Rank() <= threshold.Rank() {
			out = append(out, issue)
		}
	}
	return out
}

func parseSeverity(s string) (domain.Severity, bool) {
	for _, sev := range domain.Severities {
		if strings.EqualFold(s, string(sev)) {
			return sev, true
		}
	}
	return "", false
}

// jsonResult marshals v as indented JSON text content.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns an error result with the given message.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
