package application_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/plcqa/plcqa/internal/adapters/outbound/config"
	"github.com/plcqa/plcqa/internal/adapters/outbound/scanner"
	"github.com/plcqa/plcqa/internal/application"
	"github.com/plcqa/plcqa/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	oldDir = "../../testdata/twincat/old"
	newDir = "../../testdata/twincat/new"
)

type stubConfig struct {
	cfg domain.ProjectConfig
	err error
}

func (s stubConfig) Load(string) (domain.ProjectConfig, error) { return s.cfg, s.err }

type stubGit struct{ hash string }

func (s stubGit) CommitHash(string) (string, error) {
	if s.hash == "" {
		return "", errors.New("not a repository")
	}
	return s.hash, nil
}

type issueKey struct {
	Rule string
	File string
	Line int
}

func keys(issues []domain.Issue) []issueKey {
	out := make([]issueKey, len(issues))
	for i, is := range issues {
		out[i] = issueKey{is.RuleID, is.File, is.Line}
	}
	return out
}

func newService() *application.AnalyzeService {
	return application.NewAnalyzeService(scanner.New(nil), config.New(), nil, nil)
}

func TestAnalyzeService_Analyze(t *testing.T) {
	report, err := newService().Analyze(context.Background(), newDir)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeSingle, report.Mode)
	assert.True(t, filepath.IsAbs(report.ProjectPath))
	assert.Empty(t, report.SourcePath)
	assert.Len(t, report.Units, 5)
	assert.Len(t, report.Files, 4, "project descriptors are not analyzed")
	assert.Empty(t, report.FileChanges)
	assert.Empty(t, report.VariableChanges)

	assert.Equal(t, []issueKey{
		{"QA001", "POUs/FB_Conveyor.TcPOU", 7},
		{"QA016", "POUs/FB_Conveyor.TcPOU", 8},
		{"QA007", "POUs/FB_Conveyor.TcPOU", 2},
		{"QA012", "POUs/FB_Conveyor.TcPOU", 3},
		{"QA002", "POUs/MAIN.TcPOU", 2},
		{"QA010", "POUs/MAIN.TcPOU", 4},
	}, keys(report.Issues))

	s := report.Summary
	assert.Equal(t, 5, s.TotalFiles)
	assert.Equal(t, 2, s.FilesByType[domain.FileTypePOU])
	assert.Equal(t, 6, s.TotalIssues)
	assert.Equal(t, 2, s.BySeverity[domain.SeverityCritical])
	assert.Equal(t, 2, s.BySeverity[domain.SeverityWarning])
	assert.Equal(t, 2, s.BySeverity[domain.SeverityInfo])
	assert.Equal(t, 1, s.ByCategory[domain.CategoryStyle])
	assert.Equal(t, 0, s.SkippedUnits)
}

func TestAnalyzeService_FileStats(t *testing.T) {
	report, err := newService().Analyze(context.Background(), newDir)
	require.NoError(t, err)

	var fb domain.FileStats
	for _, f := range report.Files {
		if f.Path == "POUs/FB_Conveyor.TcPOU" {
			fb = f
		}
	}
	assert.Equal(t, "FB_Conveyor", fb.Name)
	assert.Equal(t, domain.UnitKindFunctionBlock, fb.Kind)
	assert.Equal(t, 4, fb.IssueCount)
	assert.Equal(t, 4, fb.VariableCount)
	assert.Equal(t, 1, fb.Complexity)
	assert.Equal(t, 1, fb.CommentLines)
}

func TestAnalyzeService_Compare(t *testing.T) {
	report, err := newService().Compare(context.Background(), oldDir, newDir)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeCompare, report.Mode)
	assert.True(t, filepath.IsAbs(report.SourcePath))

	assert.Equal(t, []domain.FileChange{
		{Path: "POUs/FB_Conveyor.TcPOU", Kind: domain.ChangeAdded, NewSize: sizeOf(t, report, "POUs/FB_Conveyor.TcPOU")},
		{Path: "POUs/FB_Legacy.TcPOU", Kind: domain.ChangeDeleted, OldSize: fileSize(t, filepath.Join(oldDir, "POUs", "FB_Legacy.TcPOU"))},
		{Path: "POUs/MAIN.TcPOU", Kind: domain.ChangeModified, OldSize: fileSize(t, filepath.Join(oldDir, "POUs", "MAIN.TcPOU")), NewSize: sizeOf(t, report, "POUs/MAIN.TcPOU")},
	}, report.FileChanges)

	var kinds []string
	for _, vc := range report.VariableChanges {
		assert.Equal(t, "POUs/MAIN.TcPOU", vc.File)
		kinds = append(kinds, vc.Name+":"+string(vc.Kind))
	}
	assert.Equal(t, []string{
		"bReady:Added",
		"fSpeed:TypeChanged",
		"fbConveyor:Added",
		"fbLegacy:Deleted",
		"nCount:InitialValueChanged",
	}, kinds)

	assert.Equal(t, []issueKey{
		{"QA001", "POUs/FB_Conveyor.TcPOU", 7},
		{"QA016", "POUs/FB_Conveyor.TcPOU", 8},
		{"QA007", "POUs/FB_Conveyor.TcPOU", 2},
		{"QA012", "POUs/FB_Conveyor.TcPOU", 3},
		{"QA002", "POUs/MAIN.TcPOU", 2},
		{"QA010", "POUs/MAIN.TcPOU", 4},
		{"QA002", "POUs/MAIN.TcPOU", 0},
	}, keys(report.Issues))

	narrowing := report.Issues[len(report.Issues)-1]
	assert.Equal(t, domain.SeverityCritical, narrowing.Severity)
	assert.Contains(t, narrowing.Message, "LREAL")

	s := report.Summary
	assert.Equal(t, 1, s.FilesAdded)
	assert.Equal(t, 1, s.FilesDeleted)
	assert.Equal(t, 1, s.FilesModified)
	assert.Equal(t, 2, s.VariableByKind[domain.VariableAdded])
	assert.Equal(t, 1, s.VariableByKind[domain.VariableTypeChanged])
	assert.Equal(t, 3, s.BySeverity[domain.SeverityCritical])
	assert.Equal(t, domain.RuleStats{Count: 2, Severity: domain.SeverityCritical, Category: domain.CategorySafety}, s.ByRule["QA002"])
	assert.Len(t, report.Files, 2, "only added and modified units are evaluated")
}

func TestAnalyzeService_CompareSameTree(t *testing.T) {
	report, err := newService().Compare(context.Background(), newDir, newDir)
	require.NoError(t, err)

	assert.Empty(t, report.FileChanges)
	assert.Empty(t, report.VariableChanges)
	assert.Empty(t, report.Issues)
	assert.Empty(t, report.Files)
}

func TestAnalyzeService_Deterministic(t *testing.T) {
	svc := newService()

	first, err := svc.Compare(context.Background(), oldDir, newDir)
	require.NoError(t, err)
	second, err := svc.Compare(context.Background(), oldDir, newDir)
	require.NoError(t, err)

	assert.Equal(t, first.Issues, second.Issues)
	assert.Equal(t, first.FileChanges, second.FileChanges)
	assert.Equal(t, first.VariableChanges, second.VariableChanges)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestAnalyzeService_SingleWorkerMatchesParallel(t *testing.T) {
	serial := application.NewAnalyzeService(scanner.New(nil), stubConfig{cfg: domain.ProjectConfig{Workers: 1}}, nil, nil)
	parallel := application.NewAnalyzeService(scanner.New(nil), stubConfig{cfg: domain.ProjectConfig{Workers: 8}}, nil, nil)

	a, err := serial.Analyze(context.Background(), newDir)
	require.NoError(t, err)
	b, err := parallel.Analyze(context.Background(), newDir)
	require.NoError(t, err)

	assert.Equal(t, a.Issues, b.Issues)
	assert.Equal(t, a.Files, b.Files)
}

func TestAnalyzeService_ConfigDisablesRules(t *testing.T) {
	cfg := domain.ProjectConfig{Rules: domain.RulesConfig{Disable: []string{"QA002", "QA016"}}}
	svc := application.NewAnalyzeService(scanner.New(nil), stubConfig{cfg: cfg}, nil, nil)

	report, err := svc.Compare(context.Background(), oldDir, newDir)
	require.NoError(t, err)

	for _, is := range report.Issues {
		assert.NotEqual(t, "QA002", is.RuleID)
		assert.NotEqual(t, "QA016", is.RuleID)
	}
	assert.Len(t, report.Issues, 4)
	assert.Len(t, report.VariableChanges, 5, "disabling rules does not hide changes")
}

func TestAnalyzeService_ConfigExcludePaths(t *testing.T) {
	cfg := domain.ProjectConfig{ExcludePaths: []string{"POUs"}}
	svc := application.NewAnalyzeService(scanner.New(nil), stubConfig{cfg: cfg}, nil, nil)

	report, err := svc.Analyze(context.Background(), newDir)
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
	assert.Len(t, report.Units, 3)
}

func TestAnalyzeService_CommitHash(t *testing.T) {
	svc := application.NewAnalyzeService(scanner.New(nil), config.New(), stubGit{hash: "0123abcd"}, nil)
	report, err := svc.Analyze(context.Background(), newDir)
	require.NoError(t, err)
	assert.Equal(t, "0123abcd", report.CommitHash)

	svc = application.NewAnalyzeService(scanner.New(nil), config.New(), stubGit{}, nil)
	report, err = svc.Analyze(context.Background(), newDir)
	require.NoError(t, err)
	assert.Empty(t, report.CommitHash)
}

func TestAnalyzeService_MissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")

	_, err := newService().Analyze(context.Background(), missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRootInaccessible)

	_, err = newService().Compare(context.Background(), missing, newDir)
	assert.ErrorIs(t, err, domain.ErrRootInaccessible)
}

func TestAnalyzeService_ConfigError(t *testing.T) {
	svc := application.NewAnalyzeService(scanner.New(nil), stubConfig{err: errors.New("boom")}, nil, nil)

	_, err := svc.Analyze(context.Background(), newDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}
