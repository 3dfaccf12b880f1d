package tui

import (
	"fmt"
	"strings"

	"github.com/plcqa/plcqa/internal/domain"
	"github.com/plcqa/plcqa/internal/domain/rules"
)

// RenderRules renders the rule table, marking rules the project disables.
func RenderRules(table []rules.Rule, cfg domain.ProjectConfig) string {
	var b strings.Builder

	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n", titleStyle.Render("Rules"), dimStyle.Render(fmt.Sprintf("(%d)", len(table))))
	b.WriteString("  " + separatorLine + "\n\n")

	for _, r := range table {
		status := passStyle.Render("●")
		if cfg.IsDisabledRule(r.ID) {
			status = faintStyle.Render("○")
		}
		fmt.Fprintf(&b, "  %s %s %s %s %s\n",
			status,
			r.ID,
			severityTag(r.Severity),
			padRight(r.Title, 30),
			dimStyle.Render(string(r.Category)),
		)
		fmt.Fprintf(&b, "           %s\n", faintStyle.Render(r.Suggestion))
	}

	return b.String()
}
