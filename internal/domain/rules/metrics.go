package rules

import (
	"github.com/plcqa/plcqa/internal/domain"
	"github.com/plcqa/plcqa/internal/domain/declaration"
	"github.com/plcqa/plcqa/internal/domain/lexer"
)

var (
	branchKeywords = map[string]bool{"IF": true, "ELSIF": true, "CASE": true, "FOR": true, "WHILE": true, "REPEAT": true}
	blockOpeners   = map[string]bool{"IF": true, "FOR": true, "WHILE": true, "CASE": true, "REPEAT": true}
	blockClosers   = map[string]bool{"END_IF": true, "END_FOR": true, "END_WHILE": true, "END_CASE": true, "UNTIL": true}
)

// Measure computes the whole-unit aggregates of u.
func Measure(u domain.Unit) domain.UnitMetrics {
	return measure(splitLines(u.Declaration), splitLines(u.Implementation))
}

// measure counts code and comment lines over both sections. Complexity and
// nesting only look at the implementation.
func measure(decl, impl []line) domain.UnitMetrics {
	var m domain.UnitMetrics

	for _, section := range [][]line{decl, impl} {
		for _, l := range section {
			switch {
			case len(l.toks) == 0:
			case lexer.IsCommentOnly(l.toks):
				m.CommentLines++
			default:
				m.CodeLines++
			}
		}
	}

	for _, l := range decl {
		if h, ok := declaration.ParseHead(l.toks); ok {
			m.VariableCount += len(h.Names)
		}
	}

	// Depth moves by each line's net opener/closer balance; a one-line
	// IF ... END_IF leaves it unchanged.
	depth := 0
	for _, l := range impl {
		net := 0
		for _, t := range l.code {
			if t.Kind != lexer.Keyword {
				continue
			}
			word := t.Upper()
			if branchKeywords[word] {
				m.Complexity++
			}
			switch {
			case blockOpeners[word]:
				net++
			case blockClosers[word]:
				net--
			}
		}
		// Unbalanced closers are tolerated.
		depth = max(depth+net, 0)
		m.MaxNesting = max(m.MaxNesting, depth)
	}
	return m
}
