package rules

import "github.com/plcqa/plcqa/internal/domain"

// Scope tells which part of a unit a rule inspects.
type Scope string

const (
	ScopeDeclaration    Scope = "declaration"
	ScopeImplementation Scope = "implementation"
	ScopeUnit           Scope = "unit"
)

// Rule is one entry of the rule table. Message may contain fmt verbs filled
// with the details of a finding; Suggestion is fixed.
type Rule struct {
	ID         string          `json:"id"`
	Severity   domain.Severity `json:"severity"`
	Category   domain.Category `json:"category"`
	Scope      Scope           `json:"scope"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Suggestion string          `json:"suggestion"`
	// ChangeMessage and ChangeSuggestion are the declaration-change form of a
	// rule that also fires on variable changes between snapshots.
	ChangeMessage    string `json:"change_message,omitempty"`
	ChangeSuggestion string `json:"change_suggestion,omitempty"`
}

// TableVersion changes whenever a rule is added, removed or reclassified.
const TableVersion = "1"

// Table is the fixed rule table, ordered by id.
var Table = []Rule{
	{
		ID: "QA001", Severity: domain.SeverityCritical, Category: domain.CategorySafety, Scope: ScopeDeclaration,
		Title:      "Uninitialized critical variable",
		Message:    "Uninitialized critical variable (REAL/LREAL/POINTER)",
		Suggestion: "Declare an explicit initial value: name : TYPE := value;",
	},
	{
		ID: "QA002", Severity: domain.SeverityCritical, Category: domain.CategorySafety, Scope: ScopeImplementation,
		Title:            "Narrowing type conversion",
		Message:          "Narrowing type conversion: %s",
		Suggestion:       "Range-check the value with LIMIT before converting",
		ChangeMessage:    "Variable '%s' narrowed from %s to %s",
		ChangeSuggestion: "Possible data loss: review every use of the variable before release",
	},
	{
		ID: "QA003", Severity: domain.SeverityWarning, Category: domain.CategoryPerformance, Scope: ScopeDeclaration,
		Title:      "Large array",
		Message:    "Large array declaration: %d elements",
		Suggestion: "Review the memory footprint of the array",
	},
	{
		ID: "QA004", Severity: domain.SeverityWarning, Category: domain.CategorySafety, Scope: ScopeDeclaration,
		Title:      "Pointer variable",
		Message:    "Pointer variable: check for 0 before dereferencing",
		Suggestion: "Compare the pointer with 0 before every dereference",
	},
	{
		ID: "QA005", Severity: domain.SeverityCritical, Category: domain.CategorySafety, Scope: ScopeImplementation,
		Title:      "Floating-point equality",
		Message:    "Direct equality comparison of floating-point values",
		Suggestion: "Compare against a tolerance: ABS(a - b) < epsilon",
	},
	{
		ID: "QA006", Severity: domain.SeverityCritical, Category: domain.CategorySafety, Scope: ScopeImplementation,
		Title:      "Division by variable",
		Message:    "Possible division by zero: divisor '%s'",
		Suggestion: "Check that the divisor is not 0 before dividing",
	},
	{
		ID: "QA007", Severity: domain.SeverityWarning, Category: domain.CategoryMaintainability, Scope: ScopeImplementation,
		Title:      "Magic number",
		Message:    "Magic number: %s",
		Suggestion: "Define the value as a named constant (VAR CONSTANT)",
	},
	{
		ID: "QA008", Severity: domain.SeverityWarning, Category: domain.CategoryMaintainability, Scope: ScopeUnit,
		Title:      "Excessive nesting",
		Message:    "Excessive nesting depth: %d levels",
		Suggestion: "Extract nested blocks into methods or exit early",
	},
	{
		ID: "QA009", Severity: domain.SeverityWarning, Category: domain.CategoryMaintainability, Scope: ScopeUnit,
		Title:      "Long unit",
		Message:    "Unit is too long: %d lines",
		Suggestion: "Split the unit into smaller POUs or methods",
	},
	{
		ID: "QA010", Severity: domain.SeverityWarning, Category: domain.CategoryMaintainability, Scope: ScopeImplementation,
		Title:      "Hard-coded time",
		Message:    "Hard-coded time value: %s",
		Suggestion: "Define the time as a parameter or named constant",
	},
	{
		ID: "QA011", Severity: domain.SeverityWarning, Category: domain.CategorySafety, Scope: ScopeImplementation,
		Title:      "Empty ELSE branch",
		Message:    "Empty ELSE branch",
		Suggestion: "Handle the alternative case or document the intent in a comment",
	},
	{
		ID: "QA012", Severity: domain.SeverityInfo, Category: domain.CategoryMaintainability, Scope: ScopeImplementation,
		Title:      "Work marker",
		Message:    "Unfinished work marker: %s",
		Suggestion: "Resolve the marker before release",
	},
	{
		ID: "QA013", Severity: domain.SeverityInfo, Category: domain.CategoryMaintainability, Scope: ScopeImplementation,
		Title:      "Commented-out code",
		Message:    "Commented-out code",
		Suggestion: "Delete dead code; version control keeps the history",
	},
	{
		ID: "QA014", Severity: domain.SeverityWarning, Category: domain.CategoryMaintainability, Scope: ScopeUnit,
		Title:      "High complexity",
		Message:    "High cyclomatic complexity: %d",
		Suggestion: "Split the logic into smaller units",
	},
	{
		ID: "QA015", Severity: domain.SeverityInfo, Category: domain.CategoryMaintainability, Scope: ScopeUnit,
		Title:      "Too few comments",
		Message:    "Too few comments: %d comment lines for %d code lines",
		Suggestion: "Comment the non-obvious parts of the logic",
	},
	{
		ID: "QA016", Severity: domain.SeverityInfo, Category: domain.CategoryStyle, Scope: ScopeDeclaration,
		Title:      "Naming convention",
		Message:    "Naming convention: '%s' should start with type prefix '%s'",
		Suggestion: "Follow the Hungarian prefix convention (bEnable, nCount, fSpeed, ...)",
	},
}

var byID = func() map[string]Rule {
	m := make(map[string]Rule, len(Table))
	for _, r := range Table {
		m[r.ID] = r
	}
	return m
}()

// Lookup returns the rule with the given id.
func Lookup(id string) (Rule, bool) {
	r, ok := byID[id]
	return r, ok
}

func mustLookup(id string) Rule {
	r, ok := byID[id]
	if !ok {
		panic("rules: unknown rule " + id)
	}
	return r
}
