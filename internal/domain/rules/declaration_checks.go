package rules

import (
	"strconv"
	"strings"

	"github.com/plcqa/plcqa/internal/domain"
	"github.com/plcqa/plcqa/internal/domain/declaration"
	"github.com/plcqa/plcqa/internal/domain/lexer"
)

// criticalTypes must carry an explicit initial value.
var criticalTypes = map[string]bool{"REAL": true, "LREAL": true, "POINTER": true}

func checkUninitialized(l line, _ domain.Thresholds) (finding, bool) {
	h, ok := declaration.ParseHead(l.toks)
	if !ok || !criticalTypes[strings.ToUpper(h.TypeWord)] {
		return finding{}, false
	}
	for _, t := range h.Rest {
		if t.IsOp(":=") {
			return finding{}, false
		}
	}
	return finding{}, true
}

func checkLargeArray(l line, th domain.Thresholds) (finding, bool) {
	for i, t := range l.code {
		if !t.Is("ARRAY") {
			continue
		}
		n, ok := arrayElements(l.code[i+1:])
		if ok && n > int64(th.MaxArrayElements) {
			return finding{args: []any{n}}, true
		}
		return finding{}, false
	}
	return finding{}, false
}

// arrayElements multiplies the extents of "[lo..hi, lo..hi]". Bounds given by
// constants cannot be resolved and yield false.
func arrayElements(code []lexer.Token) (int64, bool) {
	if len(code) == 0 || !code[0].IsOp("[") {
		return 0, false
	}
	total := int64(1)
	i := 1
	for {
		lo, next, ok := signedInt(code, i)
		if !ok || next >= len(code) || !code[next].IsOp("..") {
			return 0, false
		}
		hi, next, ok := signedInt(code, next+1)
		if !ok || next >= len(code) {
			return 0, false
		}
		extent := hi - lo + 1
		if extent < 1 {
			return 0, false
		}
		total *= extent
		if total > 1<<40 {
			return total, true
		}
		switch {
		case code[next].IsOp("]"):
			return total, true
		case code[next].IsOp(","):
			i = next + 1
		default:
			return 0, false
		}
	}
}

func signedInt(code []lexer.Token, i int) (int64, int, bool) {
	neg := false
	if i < len(code) && (code[i].IsOp("-") || code[i].IsOp("+")) {
		neg = code[i].Text == "-"
		i++
	}
	if i >= len(code) || code[i].Kind != lexer.Number {
		return 0, i, false
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(code[i].Text, "_", ""), 10, 64)
	if err != nil {
		return 0, i, false
	}
	if neg {
		n = -n
	}
	return n, i + 1, true
}

func checkPointer(l line, _ domain.Thresholds) (finding, bool) {
	for i := 0; i+2 < len(l.code); i++ {
		if l.code[i].IsOp(":") && l.code[i+1].Is("POINTER") && l.code[i+2].Is("TO") {
			return finding{}, true
		}
	}
	return finding{}, false
}
