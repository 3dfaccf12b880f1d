package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	rulesURI  = "plcqa://rules"
	reportURI = "plcqa://report"
)

// registerResources registers all plcqa MCP resources on the given server.
func registerResources(s *server.MCPServer, h *handlers) {
	// 1. plcqa://rules - the rule table
	s.AddResource(
		mcplib.NewResource(
			rulesURI,
			"Rule Table",
			mcplib.WithResourceDescription("Every quality rule with severity, category, message and suggestion"),
			mcplib.WithMIMEType("application/json"),
		),
		h.handleRulesResource,
	)

	// 2. plcqa://report - most recent report
	s.AddResource(
		mcplib.NewResource(
			reportURI,
			"Latest Report",
			mcplib.WithResourceDescription("Report of the most recent analysis or comparison; analyzes the project path if none ran yet"),
			mcplib.WithMIMEType("application/json"),
		),
		h.handleReportResource,
	)
}

func (h *handlers) handleRulesResource(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	return jsonResource(rulesURI, ruleTable())
}

func (h *handlers) handleReportResource(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	report := h.lastReport()
	if report == nil {
		var err error
		report, err = h.analyzer.Analyze(ctx, h.projectPath)
		if err != nil {
			return nil, fmt.Errorf("analysis failed: %w", err)
		}
		h.remember(report)
	}
	return jsonResource(reportURI, report)
}

func jsonResource(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
