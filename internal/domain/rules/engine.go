// Package rules holds the static rule table and the engine that evaluates it
// against the declaration and implementation sections of a unit.
package rules

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/plcqa/plcqa/internal/domain"
	"github.com/plcqa/plcqa/internal/domain/lexer"
	"github.com/plcqa/plcqa/internal/domain/variables"
)

// maxSnippet caps the snippet of rules that quote whole comment lines.
const maxSnippet = 80

// Options configures an Engine.
type Options struct {
	Thresholds domain.Thresholds
	Disabled   []string
}

// Engine evaluates the rule table. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	th       domain.Thresholds
	disabled map[string]bool
}

// NewEngine creates an Engine with the given thresholds and disabled rules.
func NewEngine(opts Options) *Engine {
	disabled := make(map[string]bool, len(opts.Disabled))
	for _, id := range opts.Disabled {
		disabled[id] = true
	}
	return &Engine{th: opts.Thresholds, disabled: disabled}
}

// NewEngineFromConfig creates an Engine from a project configuration.
func NewEngineFromConfig(cfg domain.ProjectConfig) *Engine {
	return NewEngine(Options{Thresholds: cfg.EffectiveThresholds(), Disabled: cfg.Rules.Disable})
}

// DefaultEngine evaluates every rule with the default thresholds.
func DefaultEngine() *Engine {
	return NewEngine(Options{Thresholds: domain.DefaultThresholds()})
}

// UnitResult is what one unit evaluation produces.
type UnitResult struct {
	Issues  []domain.Issue
	Metrics domain.UnitMetrics
}

// line is one tokenized source line of a section.
type line struct {
	num  int
	raw  string
	toks []lexer.Token
	code []lexer.Token
}

// finding is what a line check reports: the message arguments and an
// optional snippet override.
type finding struct {
	args    []any
	snippet string
}

type lineCheck struct {
	id    string
	match func(l line, th domain.Thresholds) (finding, bool)
}

var declarationChecks = []lineCheck{
	{"QA001", checkUninitialized},
	{"QA003", checkLargeArray},
	{"QA004", checkPointer},
	{"QA016", checkNaming},
}

var implementationChecks = []lineCheck{
	{"QA002", checkNarrowingCall},
	{"QA005", checkFloatEquality},
	{"QA006", checkDivision},
	{"QA007", checkMagicNumber},
	{"QA010", checkTimeLiteral},
	{"QA011", checkEmptyElse},
	{"QA012", checkWorkMarker},
	{"QA013", checkCommentedCode},
}

// EvaluateUnit runs every line and unit rule against u. Issues come out in
// declaration line order, then implementation line order, then unit-level
// findings; within one line they follow rule id order.
func (e *Engine) EvaluateUnit(u domain.Unit) UnitResult {
	if !u.Type.Analyzable() {
		return UnitResult{}
	}

	decl := splitLines(u.Declaration)
	impl := splitLines(u.Implementation)

	var issues []domain.Issue
	issues = e.evaluateLines(issues, u.Path, decl, declarationChecks)
	issues = e.evaluateLines(issues, u.Path, impl, implementationChecks)

	m := measure(decl, impl)
	issues = e.evaluateMetrics(issues, u, m)

	return UnitResult{Issues: issues, Metrics: m}
}

// EvaluateVariableChanges reports a declaration-level QA002 issue for every
// TypeChanged record that narrows the variable's bit width.
func (e *Engine) EvaluateVariableChanges(changes []domain.VariableChange) []domain.Issue {
	if e.disabled["QA002"] {
		return nil
	}
	r := mustLookup("QA002")
	var issues []domain.Issue
	for _, c := range changes {
		if c.Kind != domain.VariableTypeChanged || !variables.IsNarrowing(c.OldType, c.NewType) {
			continue
		}
		issues = append(issues, domain.Issue{
			RuleID:     r.ID,
			Severity:   r.Severity,
			Category:   r.Category,
			File:       c.File,
			Line:       0,
			Message:    fmt.Sprintf(r.ChangeMessage, c.Name, c.OldType, c.NewType),
			Code:       fmt.Sprintf("%s : %s -> %s", c.Name, c.OldType, c.NewType),
			Suggestion: r.ChangeSuggestion,
		})
	}
	return issues
}

func (e *Engine) evaluateLines(issues []domain.Issue, path string, lines []line, checks []lineCheck) []domain.Issue {
	for _, l := range lines {
		if len(l.toks) == 0 {
			continue
		}
		for _, c := range checks {
			if e.disabled[c.id] {
				continue
			}
			f, ok := c.match(l, e.th)
			if !ok {
				continue
			}
			snippet := f.snippet
			if snippet == "" {
				snippet = strings.TrimSpace(l.raw)
			}
			issues = append(issues, newIssue(mustLookup(c.id), path, l.num, snippet, f.args...))
		}
	}
	return issues
}

func (e *Engine) evaluateMetrics(issues []domain.Issue, u domain.Unit, m domain.UnitMetrics) []domain.Issue {
	emit := func(id, code string, args ...any) {
		if !e.disabled[id] {
			issues = append(issues, newIssue(mustLookup(id), u.Path, 0, code, args...))
		}
	}

	if m.MaxNesting > e.th.MaxNestingDepth {
		emit("QA008", fmt.Sprintf("max nesting %d > %d", m.MaxNesting, e.th.MaxNestingDepth), m.MaxNesting)
	}
	if m.CodeLines > e.th.MaxCodeLines {
		emit("QA009", fmt.Sprintf("%d lines > %d", m.CodeLines, e.th.MaxCodeLines), m.CodeLines)
	}
	if m.Complexity > e.th.MaxComplexity {
		emit("QA014", fmt.Sprintf("complexity %d > %d", m.Complexity, e.th.MaxComplexity), m.Complexity)
	}
	if m.CodeLines > e.th.CommentRatioMinLines {
		ratio := float64(m.CommentLines) / float64(m.CodeLines)
		if ratio < e.th.MinCommentRatio {
			emit("QA015", fmt.Sprintf("comment ratio %.1f%%", ratio*100), m.CommentLines, m.CodeLines)
		}
	}
	return issues
}

func newIssue(r Rule, path string, lineNum int, code string, args ...any) domain.Issue {
	msg := r.Message
	if len(args) > 0 {
		msg = fmt.Sprintf(r.Message, args...)
	}
	return domain.Issue{
		RuleID:     r.ID,
		Severity:   r.Severity,
		Category:   r.Category,
		File:       path,
		Line:       lineNum,
		Message:    msg,
		Code:       code,
		Suggestion: r.Suggestion,
	}
}

func splitLines(text string) []line {
	if text == "" {
		return nil
	}
	raws := strings.Split(text, "\n")
	toks := lexer.Tokenize(text)
	out := make([]line, len(raws))
	for i, raw := range raws {
		out[i] = line{
			num:  i + 1,
			raw:  strings.TrimSuffix(raw, "\r"),
			toks: toks[i],
			code: lexer.Code(toks[i]),
		}
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
