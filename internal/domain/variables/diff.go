// Package variables compares the declarations of two snapshots of a unit.
package variables

import (
	"sort"
	"strings"

	"github.com/plcqa/plcqa/internal/domain"
	"github.com/plcqa/plcqa/internal/domain/declaration"
)

// widths is the bit width of every elementary type that can be narrowed.
var widths = map[string]int{
	"LINT": 64, "LREAL": 64, "LWORD": 64,
	"DINT": 32, "REAL": 32, "DWORD": 32, "UDINT": 32,
	"INT": 16, "WORD": 16, "UINT": 16,
	"SINT": 8, "BYTE": 8, "USINT": 8,
	"BOOL": 1,
}

// Width returns the bit width of an elementary type, or 0 when the type is
// not in the width table.
func Width(typ string) int {
	return widths[strings.ToUpper(strings.TrimSpace(typ))]
}

// IsNarrowing reports whether changing a variable from oldType to newType
// loses bits. Unknown types are never narrowing.
func IsNarrowing(oldType, newType string) bool {
	o, n := Width(oldType), Width(newType)
	return o > 0 && n > 0 && o > n
}

// Diff compares the old and new declarations of the unit at path. The result
// is ordered by variable name. A type change wins over an initializer change.
func Diff(path string, oldVars, newVars declaration.Map) []domain.VariableChange {
	names := make([]string, 0, len(oldVars)+len(newVars))
	for name := range oldVars {
		names = append(names, name)
	}
	for name := range newVars {
		if _, ok := oldVars[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var out []domain.VariableChange
	for _, name := range names {
		o, inOld := oldVars[name]
		n, inNew := newVars[name]
		vc := domain.VariableChange{
			File:     path,
			Name:     name,
			OldType:  o.Type,
			NewType:  n.Type,
			OldValue: o.Initializer,
			NewValue: n.Initializer,
		}
		switch {
		case !inOld:
			vc.Kind = domain.VariableAdded
		case !inNew:
			vc.Kind = domain.VariableDeleted
		case !strings.EqualFold(o.Type, n.Type):
			vc.Kind = domain.VariableTypeChanged
		case o.Initializer != n.Initializer:
			vc.Kind = domain.VariableInitialValueChanged
		default:
			continue
		}
		out = append(out, vc)
	}
	return out
}
