package mcp

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/plcqa/plcqa/internal/domain"
)

// Analyzer runs the analysis pipelines behind the MCP tools.
type Analyzer interface {
	Analyze(ctx context.Context, projectPath string) (*domain.Report, error)
	Compare(ctx context.Context, oldPath, newPath string) (*domain.Report, error)
}

// NewPlcqaMCPServer creates a new MCP server with all plcqa tools and
// resources registered. Relative paths passed to tools resolve against
// projectPath.
func NewPlcqaMCPServer(projectPath string, analyzer Analyzer) *server.MCPServer {
	s := server.NewMCPServer(
		"plcqa",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	h := &handlers{projectPath: projectPath, analyzer: analyzer}
	registerTools(s, h)
	registerResources(s, h)

	return s
}

// handlers share the analyzer and remember the most recent report.
type handlers struct {
	projectPath string
	analyzer    Analyzer

	mu   sync.Mutex
	last *domain.Report
}

func (h *handlers) remember(r *domain.Report) {
	h.mu.Lock()
	h.last = r
	h.mu.Unlock()
}

func (h *handlers) lastReport() *domain.Report {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}
