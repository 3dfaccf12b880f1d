package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/camelcase"
	"github.com/plcqa/plcqa/internal/domain"
	"github.com/plcqa/plcqa/internal/domain/declaration"
)

// typePrefixes maps a declared type to its Hungarian name prefix.
var typePrefixes = map[string]string{
	"BOOL":    "b",
	"INT":     "n",
	"DINT":    "n",
	"REAL":    "f",
	"LREAL":   "f",
	"STRING":  "s",
	"WORD":    "w",
	"DWORD":   "dw",
	"BYTE":    "by",
	"POINTER": "p",
	"ARRAY":   "a",
	"TIME":    "t",
	"TON":     "ton",
	"TOF":     "tof",
}

// rolePrefixes mark instances, structures, enums and I/O, whatever their type.
var rolePrefixes = []string{"io", "fb", "fc", "st", "e", "i", "o"}

func checkNaming(l line, _ domain.Thresholds) (finding, bool) {
	h, ok := declaration.ParseHead(l.toks)
	if !ok {
		return finding{}, false
	}
	expected := typePrefixes[strings.ToUpper(h.TypeWord)]
	if expected == "" {
		return finding{}, false
	}
	for _, name := range h.Names {
		if misnamed(name, expected) {
			return finding{args: []any{name, expected}}, true
		}
	}
	return finding{}, false
}

// misnamed reports whether name lacks the expected prefix and no exemption
// applies.
func misnamed(name, expected string) bool {
	if strings.HasPrefix(strings.ToLower(name), expected) {
		return false
	}
	if isConstantName(name) || hasRolePrefix(name) || isCamelCase(name) {
		return false
	}
	return true
}

// isConstantName reports whether name is written ALL_UPPERCASE.
func isConstantName(name string) bool {
	hasLetter := false
	for _, r := range name {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

func hasRolePrefix(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range rolePrefixes {
		if !strings.HasPrefix(lower, p) || len(name) <= len(p) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(name[len(p):])
		if next == '_' || unicode.IsUpper(next) {
			return true
		}
	}
	return false
}

// isCamelCase accepts names such as motorSpeed whose lowercase lead word is a
// prefix convention of its own.
func isCamelCase(name string) bool {
	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsLower(first) {
		return false
	}
	words := camelcase.Split(name)
	return len(words) >= 2 && utf8.RuneCountInString(words[0]) >= 2
}
