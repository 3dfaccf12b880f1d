// Package declaration turns the declaration section of a unit into variable
// records.
//
// Accepted lines have the shape
//
//	name [AT %location] : type [:= initializer] ;
//	name, name, ... : type [:= initializer] ;
//
// Everything else (VAR blocks, pragmas, comments, headers) is ignored.
package declaration

import (
	"strings"

	"github.com/plcqa/plcqa/internal/domain"
	"github.com/plcqa/plcqa/internal/domain/lexer"
)

// Map is the declared variables of one unit keyed by name.
type Map map[string]domain.Variable

// Parse returns every variable declared in text. A later declaration of the
// same name replaces an earlier one.
func Parse(text string) Map {
	vars := make(Map)
	for _, toks := range lexer.Tokenize(text) {
		for _, v := range parseTokens(toks) {
			vars[v.Name] = v
		}
	}
	return vars
}

// ParseUnit parses a unit's declaration and stamps each variable with the
// unit's path.
func ParseUnit(u domain.Unit) Map {
	vars := Parse(u.Declaration)
	for name, v := range vars {
		v.UnitPath = u.Path
		vars[name] = v
	}
	return vars
}

// ParseLine parses a single declaration line. For a multi-name line it
// returns the first variable; use ParseLineAll for all of them.
func ParseLine(line string) (domain.Variable, bool) {
	vars := ParseLineAll(line)
	if len(vars) == 0 {
		return domain.Variable{}, false
	}
	return vars[0], true
}

// ParseLineAll parses a single declaration line into one variable per
// declared name.
func ParseLineAll(line string) []domain.Variable {
	return parseTokens(lexer.TokenizeLine(line))
}

// Head is the leading "name : type" part of a declaration line.
type Head struct {
	// Name is the first declared name; Names holds all of them.
	Name  string
	Names []string
	// TypeWord is the first word of the type, e.g. ARRAY for
	// "ARRAY[0..9] OF INT" or POINTER for "POINTER TO BYTE".
	TypeWord string
	// Rest holds the code tokens after the type word.
	Rest []lexer.Token
}

// ParseHead recognizes the leading "name : type" of a declaration line without
// requiring the terminating semicolon, so multi-line initializers still count.
func ParseHead(toks []lexer.Token) (Head, bool) {
	code := lexer.Code(toks)
	i, names, ok := scanNames(code)
	if !ok || i >= len(code) || (code[i].Kind != lexer.Ident && code[i].Kind != lexer.Keyword) {
		return Head{}, false
	}
	return Head{Name: names[0], Names: names, TypeWord: code[i].Text, Rest: code[i+1:]}, true
}

// scanNames consumes "name [AT location] :" or "name, name ... :" and returns
// the index of the first type token.
func scanNames(code []lexer.Token) (int, []string, bool) {
	if len(code) < 3 || code[0].Kind != lexer.Ident {
		return 0, nil, false
	}
	names := []string{code[0].Text}
	i := 1
	switch {
	case code[i].Is("AT"):
		for i < len(code) && !code[i].IsOp(":") {
			i++
		}
	case code[i].IsOp(","):
		for i+1 < len(code) && code[i].IsOp(",") && code[i+1].Kind == lexer.Ident {
			names = append(names, code[i+1].Text)
			i += 2
		}
	}
	if i >= len(code) || !code[i].IsOp(":") {
		return 0, nil, false
	}
	return i + 1, names, true
}

func parseTokens(toks []lexer.Token) []domain.Variable {
	code := lexer.Code(toks)
	start, names, ok := scanNames(code)
	if !ok || start >= len(code) {
		return nil
	}
	if code[start].Kind != lexer.Ident && code[start].Kind != lexer.Keyword {
		return nil
	}

	typeEnd, stop := scanUntil(code, start, ":=", ";")
	if stop < 0 || typeEnd == start {
		return nil
	}
	typ := join(code[start:typeEnd])

	var init string
	if code[stop].IsOp(":=") {
		initStart := stop + 1
		initEnd, semi := scanUntil(code, initStart, ";")
		if semi < 0 {
			return nil
		}
		init = join(code[initStart:initEnd])
	}

	vars := make([]domain.Variable, len(names))
	for i, name := range names {
		vars[i] = domain.Variable{Name: name, Type: typ, Initializer: init}
	}
	return vars
}

// scanUntil returns the index of the first top-level token matching one of
// stops, as both the end of the scanned span and the stop position. Brackets
// and parentheses nest. stop is -1 when no terminator is found.
func scanUntil(code []lexer.Token, start int, stops ...string) (int, int) {
	depth := 0
	for i := start; i < len(code); i++ {
		t := code[i]
		switch {
		case t.IsOp("(") || t.IsOp("["):
			depth++
		case t.IsOp(")") || t.IsOp("]"):
			if depth > 0 {
				depth--
			}
		case depth == 0:
			for _, s := range stops {
				if t.IsOp(s) {
					return i, i
				}
			}
		}
	}
	return len(code), -1
}

// join renders tokens back into source text. Original spacing is kept as a
// single blank, except around brackets, ranges, commas and member access.
func join(toks []lexer.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && needsSpace(toks[i-1], t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

func needsSpace(prev, cur lexer.Token) bool {
	if cur.Col <= prev.Col+len(prev.Text) {
		return false
	}
	for _, op := range []string{"(", "[", ")", "]", "..", ".", ","} {
		if cur.IsOp(op) {
			return false
		}
	}
	for _, op := range []string{"(", "[", "..", ".", "%"} {
		if prev.IsOp(op) {
			return false
		}
	}
	return true
}
