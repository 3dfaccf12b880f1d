package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/plcqa/plcqa/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up at the project root.
const FileName = ".plcqa.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .plcqa.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .plcqa.yaml from projectPath.
// Returns DefaultConfig if the file does not exist (backward compatible).
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Rule ids are matched case-insensitively in the file.
	for i, id := range cfg.Rules.Disable {
		cfg.Rules.Disable[i] = strings.ToUpper(strings.TrimSpace(id))
	}

	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return cfg, nil
}

// Template is the commented default written by "plcqa init".
const Template = `# plcqa configuration
# Directory names skipped while collecting units.
exclude_paths: []

# Parallel unit evaluation; 0 uses one worker per CPU.
workers: 0

rules:
  # Rule ids to suppress, e.g. [QA013, QA016].
  disable: []

# Limits of the unit-level rules. Remove a line to keep its default.
thresholds:
  max_nesting_depth: 4        # QA008
  max_code_lines: 500         # QA009
  max_complexity: 15          # QA014
  max_array_elements: 1000    # QA003
  comment_ratio_min_lines: 50 # QA015
  min_comment_ratio: 0.1      # QA015
`
