package domain

import "fmt"

// ValidRuleIDs enumerates every rule id of the rule table.
var ValidRuleIDs = []string{
	"QA001", "QA002", "QA003", "QA004", "QA005", "QA006", "QA007", "QA008",
	"QA009", "QA010", "QA011", "QA012", "QA013", "QA014", "QA015", "QA016",
}

// ProjectConfig holds project-level configuration loaded from .plcqa.yaml.
type ProjectConfig struct {
	ExcludePaths []string            `yaml:"exclude_paths" json:"exclude_paths,omitempty"`
	Workers      int                 `yaml:"workers"       json:"workers,omitempty"`
	Rules        RulesConfig         `yaml:"rules"         json:"rules,omitempty"`
	Thresholds   *ThresholdOverrides `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
}

// RulesConfig selects which rules report findings.
type RulesConfig struct {
	Disable []string `yaml:"disable" json:"disable,omitempty"`
}

// Thresholds are the limits of the unit-level and array rules.
type Thresholds struct {
	MaxNestingDepth      int     `json:"max_nesting_depth"`
	MaxCodeLines         int     `json:"max_code_lines"`
	MaxComplexity        int     `json:"max_complexity"`
	MaxArrayElements     int     `json:"max_array_elements"`
	CommentRatioMinLines int     `json:"comment_ratio_min_lines"`
	MinCommentRatio      float64 `json:"min_comment_ratio"`
}

// ThresholdOverrides lets users override individual thresholds.
// Pointer types distinguish "not specified" from zero values.
type ThresholdOverrides struct {
	MaxNestingDepth      *int     `yaml:"max_nesting_depth,omitempty"       json:"max_nesting_depth,omitempty"`
	MaxCodeLines         *int     `yaml:"max_code_lines,omitempty"          json:"max_code_lines,omitempty"`
	MaxComplexity        *int     `yaml:"max_complexity,omitempty"          json:"max_complexity,omitempty"`
	MaxArrayElements     *int     `yaml:"max_array_elements,omitempty"      json:"max_array_elements,omitempty"`
	CommentRatioMinLines *int     `yaml:"comment_ratio_min_lines,omitempty" json:"comment_ratio_min_lines,omitempty"`
	MinCommentRatio      *float64 `yaml:"min_comment_ratio,omitempty"       json:"min_comment_ratio,omitempty"`
}

// DefaultConfig returns a zero-value config that changes nothing.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{}
}

// DefaultThresholds returns the limits of the standard rule table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxNestingDepth:      4,
		MaxCodeLines:         500,
		MaxComplexity:        15,
		MaxArrayElements:     1000,
		CommentRatioMinLines: 50,
		MinCommentRatio:      0.1,
	}
}

// EffectiveThresholds overlays user overrides on the defaults.
func (c ProjectConfig) EffectiveThresholds() Thresholds {
	t := DefaultThresholds()
	o := c.Thresholds
	if o == nil {
		return t
	}
	if o.MaxNestingDepth != nil {
		t.MaxNestingDepth = *o.MaxNestingDepth
	}
	if o.MaxCodeLines != nil {
		t.MaxCodeLines = *o.MaxCodeLines
	}
	if o.MaxComplexity != nil {
		t.MaxComplexity = *o.MaxComplexity
	}
	if o.MaxArrayElements != nil {
		t.MaxArrayElements = *o.MaxArrayElements
	}
	if o.CommentRatioMinLines != nil {
		t.CommentRatioMinLines = *o.CommentRatioMinLines
	}
	if o.MinCommentRatio != nil {
		t.MinCommentRatio = *o.MinCommentRatio
	}
	return t
}

// IsDisabledRule reports whether the rule id is suppressed.
func (c ProjectConfig) IsDisabledRule(id string) bool {
	for _, d := range c.Rules.Disable {
		if d == id {
			return true
		}
	}
	return false
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}

	for _, id := range c.Rules.Disable {
		if !isValidRuleID(id) {
			return fmt.Errorf("unknown rule %q in rules.disable", id)
		}
	}

	if c.Thresholds != nil {
		if err := c.Thresholds.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (o ThresholdOverrides) validate() error {
	intFields := map[string]*int{
		"max_nesting_depth":       o.MaxNestingDepth,
		"max_code_lines":          o.MaxCodeLines,
		"max_complexity":          o.MaxComplexity,
		"max_array_elements":      o.MaxArrayElements,
		"comment_ratio_min_lines": o.CommentRatioMinLines,
	}
	for name, ptr := range intFields {
		if ptr != nil && *ptr < 0 {
			return fmt.Errorf("thresholds.%s must be >= 0 (got %d)", name, *ptr)
		}
	}

	if o.MinCommentRatio != nil {
		if *o.MinCommentRatio < 0.0 || *o.MinCommentRatio > 1.0 {
			return fmt.Errorf("thresholds.min_comment_ratio must be between 0.0 and 1.0 (got %.2f)", *o.MinCommentRatio)
		}
	}

	return nil
}

func isValidRuleID(id string) bool {
	for _, r := range ValidRuleIDs {
		if r == id {
			return true
		}
	}
	return false
}
