// Package lexer is a minimal tokenizer for IEC 61131-3 Structured Text.
//
// It recognizes just enough of the language for line-oriented quality rules:
// identifiers, keywords, numeric literals, typed literals (T#5s, 16#FF),
// strings, comments, pragmas, operators and punctuation. It never fails; any
// character it does not understand becomes a single-character Punct token.
package lexer

import "strings"

// Kind is the lexical class of a token.
type Kind int

const (
	Ident Kind = iota
	Keyword
	Number
	TypedLiteral
	String
	LineComment
	BlockComment
	Pragma
	Operator
	Punct
)

var kindNames = [...]string{
	Ident:        "ident",
	Keyword:      "keyword",
	Number:       "number",
	TypedLiteral: "typed_literal",
	String:       "string",
	LineComment:  "line_comment",
	BlockComment: "block_comment",
	Pragma:       "pragma",
	Operator:     "operator",
	Punct:        "punct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token is one lexeme of a line. Col is the 0-based byte offset in the line.
type Token struct {
	Kind Kind
	Text string
	Col  int
}

// Upper returns the token text in upper case; ST keywords and identifiers are
// case-insensitive.
func (t Token) Upper() string { return strings.ToUpper(t.Text) }

// Is reports whether the token is a keyword or identifier equal to word,
// ignoring case.
func (t Token) Is(word string) bool {
	return (t.Kind == Keyword || t.Kind == Ident) && strings.EqualFold(t.Text, word)
}

// IsOp reports whether the token is the given operator or punctuation.
func (t Token) IsOp(op string) bool {
	return (t.Kind == Operator || t.Kind == Punct) && t.Text == op
}

// IsComment reports whether the token is a line or block comment.
func (t Token) IsComment() bool {
	return t.Kind == LineComment || t.Kind == BlockComment
}

var keywords = toSet(
	"IF", "THEN", "ELSE", "ELSIF", "END_IF",
	"CASE", "OF", "END_CASE",
	"FOR", "TO", "BY", "DO", "END_FOR",
	"WHILE", "END_WHILE", "REPEAT", "UNTIL", "END_REPEAT",
	"RETURN", "EXIT", "CONTINUE", "JMP",
	"VAR", "VAR_INPUT", "VAR_OUTPUT", "VAR_IN_OUT", "VAR_GLOBAL", "VAR_TEMP",
	"VAR_STAT", "VAR_INST", "VAR_EXTERNAL", "VAR_CONFIG", "END_VAR",
	"CONSTANT", "RETAIN", "PERSISTENT",
	"PROGRAM", "END_PROGRAM", "FUNCTION", "END_FUNCTION",
	"FUNCTION_BLOCK", "END_FUNCTION_BLOCK", "METHOD", "END_METHOD",
	"PROPERTY", "END_PROPERTY", "ACTION", "END_ACTION",
	"INTERFACE", "END_INTERFACE", "EXTENDS", "IMPLEMENTS",
	"TYPE", "END_TYPE", "STRUCT", "END_STRUCT", "UNION", "END_UNION",
	"ARRAY", "POINTER", "REFERENCE", "AT",
	"AND", "AND_THEN", "OR", "OR_ELSE", "XOR", "NOT", "MOD",
	"TRUE", "FALSE",
)

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// IsKeyword reports whether word is a reserved ST keyword.
func IsKeyword(word string) bool { return keywords[strings.ToUpper(word)] }

// dateLiteralPrefixes allow '-' and ':' inside the literal body.
var dateLiteralPrefixes = toSet("D", "DATE", "DT", "DATE_AND_TIME", "TOD", "TIME_OF_DAY", "LDT", "LTOD", "LDATE")

var operators = []string{":=", "=>", "<>", "<=", ">=", "**", "..", "=", "<", ">", "+", "-", "*", "/", "&", "^"}

// Tokenize splits text into lines and tokenizes each one, carrying
// block-comment state across line breaks. The result has one entry per line.
func Tokenize(text string) [][]Token {
	lines := strings.Split(text, "\n")
	out := make([][]Token, len(lines))
	var open string // closing delimiter of an unterminated block comment
	for i, line := range lines {
		out[i], open = tokenizeLine(strings.TrimSuffix(line, "\r"), open)
	}
	return out
}

// TokenizeLine tokenizes a single line with no carried comment state.
func TokenizeLine(line string) []Token {
	toks, _ := tokenizeLine(line, "")
	return toks
}

func tokenizeLine(line, open string) ([]Token, string) {
	var toks []Token
	i := 0

	if open != "" {
		end := strings.Index(line, open)
		if end < 0 {
			if strings.TrimSpace(line) != "" {
				toks = append(toks, Token{Kind: BlockComment, Text: line, Col: 0})
			}
			return toks, open
		}
		i = end + len(open)
		toks = append(toks, Token{Kind: BlockComment, Text: line[:i], Col: 0})
		open = ""
	}

	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t' || c == '\f' || c == '\v':
			i++

		case strings.HasPrefix(line[i:], "//"):
			toks = append(toks, Token{Kind: LineComment, Text: line[i:], Col: i})
			i = len(line)

		case strings.HasPrefix(line[i:], "(*") || strings.HasPrefix(line[i:], "/*"):
			closer := "*)"
			if c == '/' {
				closer = "*/"
			}
			end := strings.Index(line[i+2:], closer)
			if end < 0 {
				toks = append(toks, Token{Kind: BlockComment, Text: line[i:], Col: i})
				return toks, closer
			}
			stop := i + 2 + end + len(closer)
			toks = append(toks, Token{Kind: BlockComment, Text: line[i:stop], Col: i})
			i = stop

		case c == '{':
			end := strings.IndexByte(line[i:], '}')
			stop := len(line)
			if end >= 0 {
				stop = i + end + 1
			}
			toks = append(toks, Token{Kind: Pragma, Text: line[i:stop], Col: i})
			i = stop

		case c == '\'' || c == '"':
			stop := scanString(line, i)
			toks = append(toks, Token{Kind: String, Text: line[i:stop], Col: i})
			i = stop

		case isDigit(c):
			tok, stop := scanNumber(line, i)
			toks = append(toks, tok)
			i = stop

		case isIdentStart(c):
			tok, stop := scanWord(line, i)
			toks = append(toks, tok)
			i = stop

		default:
			op := matchOperator(line[i:])
			if op != "" {
				toks = append(toks, Token{Kind: Operator, Text: op, Col: i})
				i += len(op)
				continue
			}
			toks = append(toks, Token{Kind: Punct, Text: line[i : i+1], Col: i})
			i++
		}
	}
	return toks, ""
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

// scanString returns the end offset of a quoted string; '$' escapes the next
// character. Unterminated strings run to the end of the line.
func scanString(line string, start int) int {
	quote := line[start]
	i := start + 1
	for i < len(line) {
		switch line[i] {
		case '$':
			i += 2
			continue
		case quote:
			return i + 1
		}
		i++
	}
	return len(line)
}

func scanNumber(line string, start int) (Token, int) {
	i := start
	for i < len(line) && (isDigit(line[i]) || line[i] == '_') {
		i++
	}
	if i < len(line) && line[i] == '#' {
		// Based integer such as 16#FF or 2#1010_0101.
		stop := scanLiteralBody(line, i+1, false)
		return Token{Kind: TypedLiteral, Text: line[start:stop], Col: start}, stop
	}
	// Fraction, unless this is a range operator "..".
	if i+1 < len(line) && line[i] == '.' && isDigit(line[i+1]) {
		i++
		for i < len(line) && (isDigit(line[i]) || line[i] == '_') {
			i++
		}
	}
	if i < len(line) && (line[i] == 'e' || line[i] == 'E') {
		j := i + 1
		if j < len(line) && (line[j] == '+' || line[j] == '-') {
			j++
		}
		if j < len(line) && isDigit(line[j]) {
			i = j
			for i < len(line) && isDigit(line[i]) {
				i++
			}
		}
	}
	return Token{Kind: Number, Text: line[start:i], Col: start}, i
}

func scanWord(line string, start int) (Token, int) {
	i := start
	for i < len(line) && isIdentPart(line[i]) {
		i++
	}
	word := line[start:i]
	if i < len(line) && line[i] == '#' {
		// Typed literal: T#5s, TIME#1h, INT#5, DT#2024-01-01-12:00:00.
		stop := scanLiteralBody(line, i+1, dateLiteralPrefixes[strings.ToUpper(word)])
		return Token{Kind: TypedLiteral, Text: line[start:stop], Col: start}, stop
	}
	kind := Ident
	if keywords[strings.ToUpper(word)] {
		kind = Keyword
	}
	return Token{Kind: kind, Text: word, Col: start}, i
}

func scanLiteralBody(line string, start int, dateLike bool) int {
	i := start
	if i < len(line) && (line[i] == '-' || line[i] == '+') {
		i++
	}
	for i < len(line) {
		c := line[i]
		if isIdentPart(c) || c == '.' || (dateLike && (c == '-' || c == ':')) {
			i++
			continue
		}
		break
	}
	return i
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

// Code returns the tokens of a line that are neither comments nor pragmas.
func Code(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if t.IsComment() || t.Kind == Pragma {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Comments returns the comment tokens of a line.
func Comments(toks []Token) []Token {
	var out []Token
	for _, t := range toks {
		if t.IsComment() {
			out = append(out, t)
		}
	}
	return out
}

// IsCommentOnly reports whether a line holds at least one comment and nothing
// else apart from whitespace.
func IsCommentOnly(toks []Token) bool {
	if len(toks) == 0 {
		return false
	}
	for _, t := range toks {
		if !t.IsComment() {
			return false
		}
	}
	return true
}

// CommentBody strips comment delimiters and surrounding whitespace.
func CommentBody(t Token) string {
	s := t.Text
	switch {
	case strings.HasPrefix(s, "//"):
		s = s[2:]
	case strings.HasPrefix(s, "(*"), strings.HasPrefix(s, "/*"):
		s = s[2:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "*)")
	s = strings.TrimSuffix(s, "*/")
	return strings.TrimSpace(s)
}
