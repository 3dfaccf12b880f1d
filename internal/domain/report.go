package domain

import "time"

// ReportInput carries everything a run produced; NewReport turns it into a
// Report with summary counters filled in.
type ReportInput struct {
	Mode            AnalysisMode
	GeneratedAt     time.Time
	ProjectPath     string
	SourcePath      string
	CommitHash      string
	Units           []Unit
	Files           []FileStats
	FileChanges     []FileChange
	VariableChanges []VariableChange
	Issues          []Issue
	Failures        []UnitFailure
}

// NewReport builds a report and computes its summary. Nil slices are replaced
// with empty ones so the JSON form never carries null collections.
func NewReport(in ReportInput) *Report {
	r := &Report{
		Mode:            in.Mode,
		GeneratedAt:     in.GeneratedAt,
		ProjectPath:     in.ProjectPath,
		SourcePath:      in.SourcePath,
		CommitHash:      in.CommitHash,
		Units:           nonNil(in.Units),
		Files:           nonNil(in.Files),
		FileChanges:     nonNil(in.FileChanges),
		VariableChanges: nonNil(in.VariableChanges),
		Issues:          nonNil(in.Issues),
		Failures:        nonNil(in.Failures),
	}
	r.Summary = summarize(r)
	return r
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func summarize(r *Report) Summary {
	s := Summary{
		TotalFiles:     len(r.Units),
		FilesByType:    make(map[FileType]int),
		SkippedUnits:   len(r.Failures),
		VariableByKind: make(map[VariableChangeKind]int),
		TotalIssues:    len(r.Issues),
		BySeverity:     make(map[Severity]int, len(Severities)),
		ByCategory:     make(map[Category]int, len(Categories)),
		ByRule:         make(map[string]RuleStats),
	}

	for _, u := range r.Units {
		s.FilesByType[u.Type]++
	}
	for _, f := range r.Files {
		s.TotalLines += f.CodeLines
	}

	for _, fc := range r.FileChanges {
		switch fc.Kind {
		case ChangeAdded:
			s.FilesAdded++
		case ChangeDeleted:
			s.FilesDeleted++
		case ChangeModified:
			s.FilesModified++
		}
	}
	for _, vc := range r.VariableChanges {
		s.VariableByKind[vc.Kind]++
	}

	for _, sev := range Severities {
		s.BySeverity[sev] = 0
	}
	for _, cat := range Categories {
		s.ByCategory[cat] = 0
	}
	for _, issue := range r.Issues {
		s.BySeverity[issue.Severity]++
		s.ByCategory[issue.Category]++
		rs := s.ByRule[issue.RuleID]
		rs.Count++
		rs.Severity = issue.Severity
		rs.Category = issue.Category
		s.ByRule[issue.RuleID] = rs
	}

	return s
}

// IssuesAtOrAbove returns how many issues are at least as severe as sev.
func (r *Report) IssuesAtOrAbove(sev Severity) int {
	n := 0
	for _, s := range Severities {
		if s.Rank() <= sev.Rank() {
			n += r.Summary.BySeverity[s]
		}
	}
	return n
}
