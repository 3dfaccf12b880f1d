package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/plcqa/plcqa/internal/domain"
	"github.com/plcqa/plcqa/internal/domain/rules"
)

// ── Warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle           = lipgloss.NewStyle().Foreground(dim)
	faintStyle         = lipgloss.NewStyle().Foreground(faint)
	passStyle          = lipgloss.NewStyle().Foreground(success)
	failStyle          = lipgloss.NewStyle().Foreground(danger)
	warnStyle          = lipgloss.NewStyle().Foreground(warning)
	criticalTagStyle   = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle       = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle       = lipgloss.NewStyle().Foreground(info)
	fileStyle          = lipgloss.NewStyle().Foreground(dim)
	titleStyle         = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	separatorLine      = faintStyle.Render(strings.Repeat("─", 64))
)

const (
	maxListedIssues  = 50
	maxComplexFiles  = 5
	maxListedChanges = 30
)

// RenderReport renders a report as a styled terminal string.
func RenderReport(r *domain.Report) string {
	var b strings.Builder

	renderHeader(&b, r)
	renderSummary(&b, r)
	if r.Mode == domain.ModeCompare {
		renderChanges(&b, r)
	}
	renderCategories(&b, r)
	renderRuleStats(&b, r)
	renderIssues(&b, r)
	renderComplexFiles(&b, r)
	renderFailures(&b, r)

	b.WriteString("\n")
	return b.String()
}

func renderHeader(b *strings.Builder, r *domain.Report) {
	title := headerStyle.Render("plcqa")
	subtitle := dimStyle.Render("TwinCAT Code Quality Report")

	target := shortenPath(r.ProjectPath)
	if r.Mode == domain.ModeCompare {
		target = shortenPath(r.SourcePath) + " → " + shortenPath(r.ProjectPath)
	}

	total := r.Summary.TotalIssues
	countStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(worstColor(r)).
		Render(fmt.Sprintf("%d issues", total))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + countStyled + "\n" + faintStyle.Render(target)))
	b.WriteString("\n\n")
}

func renderSummary(b *strings.Builder, r *domain.Report) {
	s := r.Summary
	b.WriteString("  " + titleStyle.Render("Summary") + "\n")
	fmt.Fprintf(b, "    %s %d  %s %d  %s %d  %s %d\n",
		dimStyle.Render("POU"), s.FilesByType[domain.FileTypePOU],
		dimStyle.Render("GVL"), s.FilesByType[domain.FileTypeGVL],
		dimStyle.Render("DUT"), s.FilesByType[domain.FileTypeDUT],
		dimStyle.Render("lines"), s.TotalLines,
	)
	if s.SkippedUnits > 0 {
		fmt.Fprintf(b, "    %s\n", warnStyle.Render(fmt.Sprintf("%d units skipped", s.SkippedUnits)))
	}
	b.WriteString("\n")
}

func renderChanges(b *strings.Builder, r *domain.Report) {
	s := r.Summary
	fmt.Fprintf(b, "  %s  %s  %s  %s\n",
		titleStyle.Render("Changes"),
		passStyle.Render(fmt.Sprintf("+%d", s.FilesAdded)),
		failStyle.Render(fmt.Sprintf("-%d", s.FilesDeleted)),
		warnStyle.Render(fmt.Sprintf("~%d", s.FilesModified)),
	)
	for i, fc := range r.FileChanges {
		if i == maxListedChanges {
			fmt.Fprintf(b, "    %s\n", faintStyle.Render(fmt.Sprintf("… %d more", len(r.FileChanges)-i)))
			break
		}
		fmt.Fprintf(b, "    %s %s\n", changeMarker(fc.Kind), fileStyle.Render(fc.Path))
	}

	if len(r.VariableChanges) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(b, "  %s %s\n", titleStyle.Render("Variables"), dimStyle.Render(fmt.Sprintf("(%d)", len(r.VariableChanges))))
		for i, vc := range r.VariableChanges {
			if i == maxListedChanges {
				fmt.Fprintf(b, "    %s\n", faintStyle.Render(fmt.Sprintf("… %d more", len(r.VariableChanges)-i)))
				break
			}
			fmt.Fprintf(b, "    %s %s  %s\n", padRight(string(vc.Kind), 20), vc.Name, faintStyle.Render(describeVariableChange(vc)))
		}
	}
	b.WriteString("\n")
}

func changeMarker(k domain.ChangeKind) string {
	switch k {
	case domain.ChangeAdded:
		return passStyle.Render("+")
	case domain.ChangeDeleted:
		return failStyle.Render("-")
	default:
		return warnStyle.Render("~")
	}
}

func describeVariableChange(vc domain.VariableChange) string {
	switch vc.Kind {
	case domain.VariableAdded:
		return vc.NewType
	case domain.VariableDeleted:
		return vc.OldType
	case domain.VariableTypeChanged:
		return vc.OldType + " → " + vc.NewType
	default:
		return vc.OldValue + " → " + vc.NewValue
	}
}

func renderCategories(b *strings.Builder, r *domain.Report) {
	b.WriteString("  " + titleStyle.Render("Categories") + "\n")
	total := r.Summary.TotalIssues
	for _, cat := range domain.Categories {
		n := r.Summary.ByCategory[cat]
		fmt.Fprintf(b, "    %s %s %s\n", padRight(string(cat), 18), countBar(n, total, 20), dimStyle.Render(fmt.Sprintf("%d", n)))
	}
	b.WriteString("\n")
}

func renderRuleStats(b *strings.Builder, r *domain.Report) {
	if len(r.Summary.ByRule) == 0 {
		return
	}
	ids := make([]string, 0, len(r.Summary.ByRule))
	for id := range r.Summary.ByRule {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	b.WriteString("  " + titleStyle.Render("Rules") + "\n")
	for _, id := range ids {
		st := r.Summary.ByRule[id]
		title := ""
		if rule, ok := rules.Lookup(id); ok {
			title = rule.Title
		}
		fmt.Fprintf(b, "    %s %s %s %s\n", severityTag(st.Severity), id, padRight(title, 30), dimStyle.Render(fmt.Sprintf("%d", st.Count)))
	}
	b.WriteString("\n")
}

func renderIssues(b *strings.Builder, r *domain.Report) {
	b.WriteString("  " + separatorLine + "\n\n")
	if len(r.Issues) == 0 {
		b.WriteString("  " + passStyle.Render("No issues found.") + "\n")
		return
	}

	s := r.Summary
	b.WriteString("  ")
	b.WriteString(titleStyle.Render("Issues"))
	b.WriteString("  ")
	if n := s.BySeverity[domain.SeverityCritical]; n > 0 {
		b.WriteString(criticalTagStyle.Render(fmt.Sprintf("%d critical", n)))
		b.WriteString("  ")
	}
	if n := s.BySeverity[domain.SeverityWarning]; n > 0 {
		b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d warnings", n)))
		b.WriteString("  ")
	}
	if n := s.BySeverity[domain.SeverityInfo]; n > 0 {
		b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d info", n)))
	}
	b.WriteString("\n\n")

	issues := sortedBySeverity(r.Issues)
	for i, issue := range issues {
		if i == maxListedIssues {
			fmt.Fprintf(b, "    %s\n", faintStyle.Render(fmt.Sprintf("… %d more (use --json for the full list)", len(issues)-i)))
			break
		}
		renderIssue(b, issue)
	}
}

func renderIssue(b *strings.Builder, issue domain.Issue) {
	loc := shortenPath(issue.File)
	if issue.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, issue.Line)
	}
	fmt.Fprintf(b, "    %s %s %s\n", severityTag(issue.Severity), dimStyle.Render(issue.RuleID), fileStyle.Render(loc))
	fmt.Fprintf(b, "         %s\n", issue.Message)
	if issue.Code != "" {
		fmt.Fprintf(b, "         %s\n", faintStyle.Render(issue.Code))
	}
}

// sortedBySeverity returns a copy ordered most severe first, keeping report
// order within one severity.
func sortedBySeverity(issues []domain.Issue) []domain.Issue {
	out := make([]domain.Issue, len(issues))
	copy(out, issues)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Severity.Rank() < out[j].Severity.Rank() })
	return out
}

func renderComplexFiles(b *strings.Builder, r *domain.Report) {
	if len(r.Files) == 0 {
		return
	}
	files := make([]domain.FileStats, len(r.Files))
	copy(files, r.Files)
	sort.SliceStable(files, func(i, j int) bool { return files[i].Complexity > files[j].Complexity })
	if len(files) > maxComplexFiles {
		files = files[:maxComplexFiles]
	}

	b.WriteString("\n")
	b.WriteString("  " + sectionHeaderStyle.Render("Most complex units") + "\n")
	for _, f := range files {
		name := f.Name
		if name == "" {
			name = filepath.Base(f.Path)
		}
		fmt.Fprintf(b, "    %s %s %s\n",
			padRight(name, 28),
			padRight(string(f.Kind), 16),
			dimStyle.Render(fmt.Sprintf("complexity %d  nesting %d  lines %d  issues %d", f.Complexity, f.MaxNesting, f.CodeLines, f.IssueCount)),
		)
	}
}

func renderFailures(b *strings.Builder, r *domain.Report) {
	if len(r.Failures) == 0 {
		return
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "  %s %s\n", sectionHeaderStyle.Render("Skipped units"), dimStyle.Render(fmt.Sprintf("(%d)", len(r.Failures))))
	for _, f := range r.Failures {
		fmt.Fprintf(b, "    %s %s  %s\n", failStyle.Render("●"), f.Path, faintStyle.Render(f.Cause))
	}
}

func severityTag(severity domain.Severity) string {
	switch severity {
	case domain.SeverityCritical:
		return criticalTagStyle.Render("crit ")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func severityColor(severity domain.Severity) lipgloss.Color {
	switch severity {
	case domain.SeverityCritical:
		return danger
	case domain.SeverityWarning:
		return warning
	default:
		return info
	}
}

func worstColor(r *domain.Report) lipgloss.Color {
	for _, sev := range domain.Severities {
		if r.Summary.BySeverity[sev] > 0 {
			return severityColor(sev)
		}
	}
	return success
}

func countBar(n, total, width int) string {
	filled := 0
	if total > 0 {
		filled = max(0, min(n*width/total, width))
	}
	if n > 0 && filled == 0 {
		filled = 1
	}
	empty := width - filled

	filledStr := lipgloss.NewStyle().Foreground(accent).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func shortenPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-3:], "/")
	}
	return path
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		date := e.Timestamp
		if len(date) > 10 {
			date = date[:10]
		}

		issues := lipgloss.NewStyle().
			Foreground(entryColor(e)).
			Render(fmt.Sprintf("%d issues", e.Issues))

		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(date),
			faintStyle.Render(hash),
			issues,
			dimStyle.Render(fmt.Sprintf("%d/%d/%d", e.Critical, e.Warning, e.Info)),
		)

		if i > 0 {
			diff := e.Issues - entries[i-1].Issues
			if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func entryColor(e domain.RunEntry) lipgloss.Color {
	switch {
	case e.Critical > 0:
		return danger
	case e.Warning > 0:
		return warning
	case e.Info > 0:
		return info
	default:
		return success
	}
}
