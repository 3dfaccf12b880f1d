package domain

import "context"

// UnitCollector walks a project tree and builds its unit catalog.
type UnitCollector interface {
	Collect(ctx context.Context, root string, excludePaths ...string) (*Catalog, error)
}

// ConfigLoader loads project configuration from a project root.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// GitInfo provides version-control metadata for a project tree.
type GitInfo interface {
	CommitHash(projectPath string) (string, error)
}

// RunHistory persists summaries of past analysis runs.
type RunHistory interface {
	Save(projectPath string, entry RunEntry) error
	Load(projectPath string) ([]RunEntry, error)
}

// RunEntry is one persisted run summary.
type RunEntry struct {
	Timestamp  string       `json:"timestamp"`
	CommitHash string       `json:"commit_hash,omitempty"`
	Mode       AnalysisMode `json:"mode"`
	Files      int          `json:"files"`
	Issues     int          `json:"issues"`
	Critical   int          `json:"critical"`
	Warning    int          `json:"warning"`
	Info       int          `json:"info"`
}

// NewRunEntry summarizes a report for the run history.
func NewRunEntry(r *Report, timestamp string) RunEntry {
	return RunEntry{
		Timestamp:  timestamp,
		CommitHash: r.CommitHash,
		Mode:       r.Mode,
		Files:      r.Summary.TotalFiles,
		Issues:     r.Summary.TotalIssues,
		Critical:   r.Summary.BySeverity[SeverityCritical],
		Warning:    r.Summary.BySeverity[SeverityWarning],
		Info:       r.Summary.BySeverity[SeverityInfo],
	}
}

// ResultStore persists rule results between runs.
type ResultStore interface {
	Load(projectPath string) (*ResultCache, error)
	Save(cache *ResultCache) error
	Invalidate(projectPath string) error
}
