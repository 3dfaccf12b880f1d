package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
)

// ResultCache holds the rule results of a previous single-project run so
// units whose content hash is unchanged can skip evaluation.
type ResultCache struct {
	ProjectPath  string                `json:"project_path"`
	TableVersion string                `json:"table_version"`
	ConfigHash   string                `json:"config_hash"`
	Units        map[string]CachedUnit `json:"units"`
}

// CachedUnit is the stored evaluation of one unit, keyed by its path.
type CachedUnit struct {
	Hash    string      `json:"hash"`
	Issues  []Issue     `json:"issues"`
	Metrics UnitMetrics `json:"metrics"`
}

// IsInvalidated reports whether the cache was written by a different rule
// table or under a different configuration.
func (c *ResultCache) IsInvalidated(tableVersion, configHash string) bool {
	return c.TableVersion != tableVersion || c.ConfigHash != configHash
}

// Lookup returns the cached result of u if its content is unchanged.
func (c *ResultCache) Lookup(u Unit) (CachedUnit, bool) {
	if c == nil {
		return CachedUnit{}, false
	}
	entry, ok := c.Units[u.Path]
	if !ok || entry.Hash != u.Hash {
		return CachedUnit{}, false
	}
	return entry, true
}

// Fingerprint identifies the parts of the config that change rule output.
func (c ProjectConfig) Fingerprint() string {
	disabled := slices.Clone(c.Rules.Disable)
	slices.Sort(disabled)
	data, _ := json.Marshal(struct {
		Thresholds Thresholds `json:"thresholds"`
		Disabled   []string   `json:"disabled"`
	}{c.EffectiveThresholds(), slices.Compact(disabled)})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
