// Package changes classifies file-level differences between two catalogs.
package changes

import (
	"sort"

	"github.com/plcqa/plcqa/internal/domain"
)

// Detect compares two unit lists by relative path and content hash. Paths
// whose content is identical on both sides produce no record, so detecting a
// tree against itself yields nothing. The result is ordered by path.
func Detect(oldUnits, newUnits []domain.Unit) []domain.FileChange {
	oldByPath := index(oldUnits)
	newByPath := index(newUnits)

	paths := make([]string, 0, len(oldByPath)+len(newByPath))
	for p := range oldByPath {
		paths = append(paths, p)
	}
	for p := range newByPath {
		if _, ok := oldByPath[p]; !ok {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	var out []domain.FileChange
	for _, p := range paths {
		o, inOld := oldByPath[p]
		n, inNew := newByPath[p]
		switch {
		case !inOld:
			out = append(out, domain.FileChange{Path: p, Kind: domain.ChangeAdded, NewSize: n.Size})
		case !inNew:
			out = append(out, domain.FileChange{Path: p, Kind: domain.ChangeDeleted, OldSize: o.Size})
		case o.Hash != n.Hash:
			out = append(out, domain.FileChange{Path: p, Kind: domain.ChangeModified, OldSize: o.Size, NewSize: n.Size})
		}
	}
	return out
}

// Paths returns the paths of the changes of the given kinds, in change order.
func Paths(changes []domain.FileChange, kinds ...domain.ChangeKind) []string {
	var out []string
	for _, c := range changes {
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c.Path)
				break
			}
		}
	}
	return out
}

func index(units []domain.Unit) map[string]domain.Unit {
	m := make(map[string]domain.Unit, len(units))
	for _, u := range units {
		m[u.Path] = u
	}
	return m
}
