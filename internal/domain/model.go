package domain

import (
	"errors"
	"time"
)

// ErrRootInaccessible is returned when a catalog root cannot be read at all.
// It is the only run-level failure; everything below the root degrades to a
// UnitFailure entry in the report.
var ErrRootInaccessible = errors.New("project root is not accessible")

// FileType is the container class of a tracked file, derived from its extension.
type FileType string

const (
	FileTypePOU     FileType = "POU"
	FileTypeGVL     FileType = "GVL"
	FileTypeDUT     FileType = "DUT"
	FileTypeProject FileType = "PROJECT"
)

// Analyzable reports whether units of this type take part in variable and rule
// analysis. Project descriptors are tracked for change detection only.
func (t FileType) Analyzable() bool {
	return t == FileTypePOU || t == FileTypeGVL || t == FileTypeDUT
}

// UnitKind classifies a unit by what it declares.
type UnitKind string

const (
	UnitKindProgram            UnitKind = "PROGRAM"
	UnitKindFunctionBlock      UnitKind = "FUNCTION_BLOCK"
	UnitKindFunction           UnitKind = "FUNCTION"
	UnitKindGlobalVariableList UnitKind = "GVL"
	UnitKindDataType           UnitKind = "DUT"
	UnitKindProject            UnitKind = "PROJECT"
	// UnitKindUnclassified is a POU container whose declaration carries none
	// of the PROGRAM / FUNCTION_BLOCK / FUNCTION keywords.
	UnitKindUnclassified UnitKind = "POU"
)

// Unit is one tracked source file of a project tree. Units are built by the
// catalog walk and never mutated afterwards.
type Unit struct {
	Path           string   `json:"path"`
	Type           FileType `json:"type"`
	Kind           UnitKind `json:"kind"`
	Name           string   `json:"name,omitempty"`
	Declaration    string   `json:"-"`
	Implementation string   `json:"-"`
	Size           int64    `json:"size"`
	Hash           string   `json:"hash"`
}

// Variable is a single declared variable of a unit.
type Variable struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Initializer string `json:"initializer,omitempty"`
	UnitPath    string `json:"unit_path,omitempty"`
}

// UnitFailure records a file that could not be read or decoded.
type UnitFailure struct {
	Path  string `json:"path"`
	Cause string `json:"cause"`
}

// Catalog is the sorted result of walking one project tree.
type Catalog struct {
	Root     string        `json:"root"`
	Units    []Unit        `json:"units"`
	Failures []UnitFailure `json:"failures,omitempty"`
}

// ChangeKind classifies a file-level change.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "Added"
	ChangeDeleted  ChangeKind = "Deleted"
	ChangeModified ChangeKind = "Modified"
)

// FileChange is emitted only for paths whose content differs between snapshots.
type FileChange struct {
	Path    string     `json:"path"`
	Kind    ChangeKind `json:"type"`
	OldSize int64      `json:"old_size"`
	NewSize int64      `json:"new_size"`
}

// VariableChangeKind classifies a declaration-level change.
type VariableChangeKind string

const (
	VariableAdded               VariableChangeKind = "Added"
	VariableDeleted             VariableChangeKind = "Deleted"
	VariableTypeChanged         VariableChangeKind = "TypeChanged"
	VariableInitialValueChanged VariableChangeKind = "InitialValueChanged"
)

// VariableChange describes how one variable of a modified unit changed.
type VariableChange struct {
	File     string             `json:"file"`
	Name     string             `json:"name"`
	Kind     VariableChangeKind `json:"type"`
	OldType  string             `json:"old_type"`
	NewType  string             `json:"new_type"`
	OldValue string             `json:"old_value"`
	NewValue string             `json:"new_value"`
}

// Severity of an issue.
type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeverityWarning  Severity = "Warning"
	SeverityInfo     Severity = "Info"
)

// Rank orders severities from most to least severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Severities lists every severity, most severe first.
var Severities = []Severity{SeverityCritical, SeverityWarning, SeverityInfo}

// Category groups issues by the quality attribute they affect.
type Category string

const (
	CategorySafety          Category = "Safety"
	CategoryPerformance     Category = "Performance"
	CategoryMaintainability Category = "Maintainability"
	CategoryStyle           Category = "Style"
)

// Categories lists every category in report order.
var Categories = []Category{CategorySafety, CategoryPerformance, CategoryMaintainability, CategoryStyle}

// Issue is a single rule finding. Line 0 marks a unit-level finding.
type Issue struct {
	RuleID     string   `json:"rule_id"`
	Severity   Severity `json:"severity"`
	Category   Category `json:"category"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Message    string   `json:"message"`
	Code       string   `json:"code"`
	Suggestion string   `json:"suggestion"`
}

// UnitMetrics are the whole-unit aggregates the rule engine measures.
type UnitMetrics struct {
	CodeLines     int `json:"lines"`
	CommentLines  int `json:"comment_lines"`
	VariableCount int `json:"variable_count"`
	Complexity    int `json:"complexity"`
	MaxNesting    int `json:"max_nesting"`
}

// FileStats is the per-unit row of a report.
type FileStats struct {
	Path       string   `json:"path"`
	Type       FileType `json:"type"`
	Kind       UnitKind `json:"kind"`
	Name       string   `json:"name,omitempty"`
	IssueCount int      `json:"issue_count"`
	UnitMetrics
}

// AnalysisMode tells renderers which pipeline produced a report.
type AnalysisMode string

const (
	ModeSingle  AnalysisMode = "single"
	ModeCompare AnalysisMode = "compare"
)

// RuleStats is the per-rule breakdown of a report.
type RuleStats struct {
	Count    int      `json:"count"`
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
}

// Summary holds the counters precomputed when a report is built.
type Summary struct {
	TotalFiles     int                        `json:"total_files"`
	FilesByType    map[FileType]int           `json:"files_by_type"`
	TotalLines     int                        `json:"total_lines"`
	SkippedUnits   int                        `json:"skipped_units"`
	FilesAdded     int                        `json:"files_added"`
	FilesDeleted   int                        `json:"files_deleted"`
	FilesModified  int                        `json:"files_modified"`
	VariableByKind map[VariableChangeKind]int `json:"variable_changes_by_kind"`
	TotalIssues    int                        `json:"total_issues"`
	BySeverity     map[Severity]int           `json:"by_severity"`
	ByCategory     map[Category]int           `json:"by_category"`
	ByRule         map[string]RuleStats       `json:"by_rule"`
}

// Report is the immutable result of one analysis run.
type Report struct {
	Mode            AnalysisMode     `json:"mode"`
	GeneratedAt     time.Time        `json:"generated_at"`
	ProjectPath     string           `json:"project_path"`
	SourcePath      string           `json:"source_path,omitempty"`
	CommitHash      string           `json:"commit_hash,omitempty"`
	Units           []Unit           `json:"units"`
	Files           []FileStats      `json:"files"`
	FileChanges     []FileChange     `json:"file_changes"`
	VariableChanges []VariableChange `json:"variable_changes"`
	Issues          []Issue          `json:"issues"`
	Failures        []UnitFailure    `json:"failures"`
	Summary         Summary          `json:"summary"`
}
