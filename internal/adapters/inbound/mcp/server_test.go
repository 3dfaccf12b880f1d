package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	mcpadapter "github.com/plcqa/plcqa/internal/adapters/inbound/mcp"
	"github.com/plcqa/plcqa/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	analyzed []string
	compared [][2]string
	err      error
}

func (s *stubAnalyzer) Analyze(_ context.Context, projectPath string) (*domain.Report, error) {
	s.analyzed = append(s.analyzed, projectPath)
	if s.err != nil {
		return nil, s.err
	}
	return domain.NewReport(domain.ReportInput{
		Mode:        domain.ModeSingle,
		ProjectPath: projectPath,
		Files: []domain.FileStats{
			{Path: "POUs/MAIN.TcPOU", Name: "MAIN", IssueCount: 2},
		},
		Issues: []domain.Issue{
			{RuleID: "QA002", Severity: domain.SeverityCritical, File: "POUs/MAIN.TcPOU", Line: 2, Message: "Narrowing type conversion: REAL -> INT"},
			{RuleID: "QA010", Severity: domain.SeverityWarning, File: "POUs/MAIN.TcPOU", Line: 4, Message: "Hard-coded time value: T#500ms"},
			{RuleID: "QA007", Severity: domain.SeverityInfo, File: "POUs/FB_Conveyor.TcPOU", Line: 2, Message: "Magic number: 1500"},
		},
	}), nil
}

func (s *stubAnalyzer) Compare(_ context.Context, oldPath, newPath string) (*domain.Report, error) {
	s.compared = append(s.compared, [2]string{oldPath, newPath})
	if s.err != nil {
		return nil, s.err
	}
	return domain.NewReport(domain.ReportInput{
		Mode:        domain.ModeCompare,
		SourcePath:  oldPath,
		ProjectPath: newPath,
		FileChanges: []domain.FileChange{{Path: "POUs/FB_Conveyor.TcPOU", Kind: domain.ChangeAdded}},
	}), nil
}

// call sends one JSON-RPC request and returns the response as JSON text.
func call(t *testing.T, s *server.MCPServer, method string, params any) string {
	t.Helper()
	p, err := json.Marshal(params)
	require.NoError(t, err)
	msg := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":%q,"params":%s}`, method, p)
	resp := s.HandleMessage(context.Background(), json.RawMessage(msg))
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(out)
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) string {
	t.Helper()
	return call(t, s, "tools/call", map[string]any{"name": name, "arguments": args})
}

func TestNewPlcqaMCPServer(t *testing.T) {
	s := mcpadapter.NewPlcqaMCPServer("/plant", &stubAnalyzer{})
	require.NotNil(t, s)
}

func TestMCPServerHasTools(t *testing.T) {
	s := mcpadapter.NewPlcqaMCPServer("/plant", &stubAnalyzer{})

	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{
		"plcqa_analyze",
		"plcqa_compare",
		"plcqa_check_file",
		"plcqa_rules",
	}

	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}

	assert.Len(t, tools, len(expectedTools), "should have exactly %d tools", len(expectedTools))
}

func TestAnalyzeTool_DefaultsToProjectPath(t *testing.T) {
	a := &stubAnalyzer{}
	s := mcpadapter.NewPlcqaMCPServer("/plant", a)

	out := callTool(t, s, "plcqa_analyze", map[string]any{})
	assert.Contains(t, out, "QA002")
	assert.Equal(t, []string{"/plant"}, a.analyzed)
}

func TestAnalyzeTool_ResolvesRelativePath(t *testing.T) {
	a := &stubAnalyzer{}
	s := mcpadapter.NewPlcqaMCPServer("/plant", a)

	callTool(t, s, "plcqa_analyze", map[string]any{"path": "line1"})
	assert.Equal(t, []string{"/plant/line1"}, a.analyzed)
}

func TestAnalyzeTool_FiltersBySeverity(t *testing.T) {
	s := mcpadapter.NewPlcqaMCPServer("/plant", &stubAnalyzer{})

	out := callTool(t, s, "plcqa_analyze", map[string]any{"min_severity": "warning"})
	assert.Contains(t, out, "QA002")
	assert.Contains(t, out, "QA010")
	assert.NotContains(t, out, "QA007")
}

func TestAnalyzeTool_FilteredSummaryMatchesIssues(t *testing.T) {
	s := mcpadapter.NewPlcqaMCPServer("/plant", &stubAnalyzer{})

	out := callTool(t, s, "plcqa_analyze", map[string]any{"min_severity": "warning"})

	var resp struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Result.Content, 1)

	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Content[0].Text), &report))
	assert.Len(t, report.Issues, 2)
	assert.Equal(t, 2, report.Summary.TotalIssues)
	assert.Equal(t, 0, report.Summary.BySeverity[domain.SeverityInfo])
	assert.NotContains(t, report.Summary.ByRule, "QA007")
}

func TestAnalyzeTool_UnknownSeverity(t *testing.T) {
	a := &stubAnalyzer{}
	s := mcpadapter.NewPlcqaMCPServer("/plant", a)

	out := callTool(t, s, "plcqa_analyze", map[string]any{"min_severity": "fatal"})
	assert.Contains(t, out, "unknown severity")
	assert.Empty(t, a.analyzed)
}

func TestAnalyzeTool_ErrorResult(t *testing.T) {
	s := mcpadapter.NewPlcqaMCPServer("/plant", &stubAnalyzer{err: errors.New("project root is not accessible")})

	out := callTool(t, s, "plcqa_analyze", map[string]any{})
	assert.Contains(t, out, "analysis failed")
	assert.Contains(t, out, `"isError":true`)
}

func TestCompareTool(t *testing.T) {
	a := &stubAnalyzer{}
	s := mcpadapter.NewPlcqaMCPServer("/plant", a)

	out := callTool(t, s, "plcqa_compare", map[string]any{"old": "v1", "new": "/releases/v2"})
	assert.Contains(t, out, "FB_Conveyor")
	require.Len(t, a.compared, 1)
	assert.Equal(t, [2]string{"/plant/v1", "/releases/v2"}, a.compared[0])
}

func TestCompareTool_RequiresBothPaths(t *testing.T) {
	a := &stubAnalyzer{}
	s := mcpadapter.NewPlcqaMCPServer("/plant", a)

	out := callTool(t, s, "plcqa_compare", map[string]any{"old": "v1"})
	assert.Contains(t, out, `"isError":true`)
	assert.Empty(t, a.compared)
}

func TestCheckFileTool(t *testing.T) {
	s := mcpadapter.NewPlcqaMCPServer("/plant", &stubAnalyzer{})

	out := callTool(t, s, "plcqa_check_file", map[string]any{"file": "POUs/MAIN.TcPOU"})
	assert.Contains(t, out, "QA002")
	assert.Contains(t, out, "QA010")
	assert.NotContains(t, out, "QA007")
}

func TestCheckFileTool_UnknownFile(t *testing.T) {
	s := mcpadapter.NewPlcqaMCPServer("/plant", &stubAnalyzer{})

	out := callTool(t, s, "plcqa_check_file", map[string]any{"file": "POUs/Missing.TcPOU"})
	assert.Contains(t, out, "no analyzable unit")
}

func TestRulesTool(t *testing.T) {
	s := mcpadapter.NewPlcqaMCPServer("/plant", &stubAnalyzer{})

	out := callTool(t, s, "plcqa_rules", map[string]any{})
	assert.Contains(t, out, "QA001")
	assert.Contains(t, out, "QA016")
}

func TestRulesResource(t *testing.T) {
	s := mcpadapter.NewPlcqaMCPServer("/plant", &stubAnalyzer{})

	out := call(t, s, "resources/read", map[string]any{"uri": "plcqa://rules"})
	assert.Contains(t, out, "plcqa://rules")
	assert.Contains(t, out, "QA008")
}

func TestReportResource_AnalyzesWhenEmpty(t *testing.T) {
	a := &stubAnalyzer{}
	s := mcpadapter.NewPlcqaMCPServer("/plant", a)

	out := call(t, s, "resources/read", map[string]any{"uri": "plcqa://report"})
	assert.Contains(t, out, "QA002")
	assert.Equal(t, []string{"/plant"}, a.analyzed)
}

func TestReportResource_ReturnsLastReport(t *testing.T) {
	a := &stubAnalyzer{}
	s := mcpadapter.NewPlcqaMCPServer("/plant", a)

	callTool(t, s, "plcqa_compare", map[string]any{"old": "v1", "new": "v2"})
	out := call(t, s, "resources/read", map[string]any{"uri": "plcqa://report"})
	assert.Contains(t, out, "compare")
	assert.Empty(t, a.analyzed)
}
