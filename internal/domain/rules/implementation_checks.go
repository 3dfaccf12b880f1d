package rules

import (
	"strings"

	"github.com/plcqa/plcqa/internal/domain"
	"github.com/plcqa/plcqa/internal/domain/lexer"
)

// narrowingConversions are the standard conversion functions that can lose
// range or precision.
var narrowingConversions = map[string]string{
	"DINT_TO_INT":   "DINT→INT",
	"LINT_TO_DINT":  "LINT→DINT",
	"LINT_TO_INT":   "LINT→INT",
	"LREAL_TO_REAL": "LREAL→REAL",
	"REAL_TO_INT":   "REAL→INT",
	"REAL_TO_DINT":  "REAL→DINT",
	"LREAL_TO_INT":  "LREAL→INT",
	"DWORD_TO_WORD": "DWORD→WORD",
	"DWORD_TO_BYTE": "DWORD→BYTE",
}

func checkNarrowingCall(l line, _ domain.Thresholds) (finding, bool) {
	for i := 0; i+1 < len(l.code); i++ {
		t := l.code[i]
		if t.Kind != lexer.Ident || !l.code[i+1].IsOp("(") {
			continue
		}
		if desc, ok := narrowingConversions[t.Upper()]; ok {
			return finding{args: []any{desc}}, true
		}
	}
	return finding{}, false
}

// checkFloatEquality flags "=" or "<>" between operands that look like
// floating-point values: identifiers with the f or r prefix, or decimal
// literals on the right-hand side. Lines with an assignment are skipped.
func checkFloatEquality(l line, _ domain.Thresholds) (finding, bool) {
	for _, t := range l.code {
		if t.IsOp(":=") {
			return finding{}, false
		}
	}
	for i := 1; i+1 < len(l.code); i++ {
		op := l.code[i]
		if op.Kind != lexer.Operator || (op.Text != "=" && op.Text != "<>") {
			continue
		}
		if floatLike(l.code[i-1]) && (floatLike(l.code[i+1]) || decimalLiteral(l.code[i+1])) {
			return finding{}, true
		}
	}
	return finding{}, false
}

func floatLike(t lexer.Token) bool {
	if t.Kind != lexer.Ident || len(t.Text) < 2 {
		return false
	}
	switch t.Text[0] {
	case 'f', 'F', 'r', 'R':
		return true
	}
	return false
}

func decimalLiteral(t lexer.Token) bool {
	return t.Kind == lexer.Number && strings.Contains(t.Text, ".")
}

func checkDivision(l line, _ domain.Thresholds) (finding, bool) {
	for i := 0; i+2 < len(l.code); i++ {
		if !l.code[i].IsOp("/") || l.code[i+1].Kind != lexer.Ident {
			continue
		}
		if next := l.code[i+2]; next.IsOp(";") || next.IsOp(")") {
			return finding{args: []any{l.code[i+1].Text}}, true
		}
	}
	return finding{}, false
}

// minMagicDigits is the shortest integer part reported as a magic number.
const minMagicDigits = 3

// checkMagicNumber reports the first bare numeric literal outside comments,
// index brackets and typed literals.
func checkMagicNumber(l line, _ domain.Thresholds) (finding, bool) {
	depth := 0
	for _, t := range l.code {
		switch {
		case t.IsOp("["):
			depth++
		case t.IsOp("]"):
			if depth > 0 {
				depth--
			}
		case t.Kind == lexer.Number && depth == 0 && integerDigits(t.Text) >= minMagicDigits:
			return finding{args: []any{t.Text}}, true
		}
	}
	return finding{}, false
}

func integerDigits(lit string) int {
	n := 0
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		switch {
		case c >= '0' && c <= '9':
			n++
		case c == '_':
		default:
			return n
		}
	}
	return n
}

var timePrefixes = map[string]bool{"T": true, "TIME": true, "LTIME": true}

func checkTimeLiteral(l line, _ domain.Thresholds) (finding, bool) {
	for _, t := range l.code {
		if t.Kind != lexer.TypedLiteral {
			continue
		}
		prefix, body, ok := strings.Cut(t.Text, "#")
		if !ok || !timePrefixes[strings.ToUpper(prefix)] {
			continue
		}
		body = strings.TrimPrefix(body, "-")
		if body != "" && body[0] >= '0' && body[0] <= '9' {
			return finding{args: []any{t.Text}}, true
		}
	}
	return finding{}, false
}

func checkEmptyElse(l line, _ domain.Thresholds) (finding, bool) {
	for i := 0; i+1 < len(l.code); i++ {
		if l.code[i].Is("ELSE") && l.code[i+1].IsOp(";") {
			return finding{}, true
		}
	}
	return finding{}, false
}

var workMarkers = map[string]bool{"TODO": true, "FIXME": true, "XXX": true, "HACK": true}

func checkWorkMarker(l line, _ domain.Thresholds) (finding, bool) {
	for _, c := range lexer.Comments(l.toks) {
		words := strings.FieldsFunc(lexer.CommentBody(c), func(r rune) bool {
			return !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
		})
		for _, w := range words {
			if up := strings.ToUpper(w); workMarkers[up] {
				return finding{args: []any{up}}, true
			}
		}
	}
	return finding{}, false
}

// checkCommentedCode flags a line holding only a // comment whose body reads
// like code: an assignment, a trailing semicolon or a control keyword.
func checkCommentedCode(l line, _ domain.Thresholds) (finding, bool) {
	if len(l.toks) != 1 || l.toks[0].Kind != lexer.LineComment {
		return finding{}, false
	}
	if !codeShaped(lexer.CommentBody(l.toks[0])) {
		return finding{}, false
	}
	return finding{snippet: truncate(strings.TrimSpace(l.raw), maxSnippet)}, true
}

func codeShaped(body string) bool {
	code := lexer.Code(lexer.TokenizeLine(body))
	if len(code) == 0 {
		return false
	}
	if code[len(code)-1].IsOp(";") {
		return true
	}
	for _, t := range code {
		switch {
		case t.IsOp(":="):
			return true
		case t.Is("IF"), t.Is("FOR"), t.Is("WHILE"):
			return true
		case (t.Kind == lexer.Keyword || t.Kind == lexer.Ident) && strings.HasPrefix(t.Upper(), "END_"):
			return true
		}
	}
	return false
}
