package optengine

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// OptimizationConfig controls the three-phase driver's iteration limits
// and which rules it runs (spec §6). It mirrors costmodel.Config's
// decode-onto-defaults loading pattern so override files only need to
// set the fields they change.
type OptimizationConfig struct {
	MaxIterationRounds      int         `toml:"max_iteration_rounds" yaml:"max_iteration_rounds"`
	MinIterationRounds      int         `toml:"min_iteration_rounds" yaml:"min_iteration_rounds"`
	StableThreshold         int         `toml:"stable_threshold" yaml:"stable_threshold"`
	MaxExplorationRounds    int         `toml:"max_exploration_rounds" yaml:"max_exploration_rounds"`
	EnableAdaptiveIteration bool        `toml:"enable_adaptive_iteration" yaml:"enable_adaptive_iteration"`
	EnableCostModel         bool        `toml:"enable_cost_model" yaml:"enable_cost_model"`
	EnableMultiPlan         bool        `toml:"enable_multi_plan" yaml:"enable_multi_plan"`
	DisabledRules           []rule.Name `toml:"disabled_rules" yaml:"disabled_rules"`
	EnabledRules            []rule.Name `toml:"enabled_rules" yaml:"enabled_rules"`
}

// Default returns the baseline OptimizationConfig (spec §6's documented
// defaults).
func Default() *OptimizationConfig {
	return &OptimizationConfig{
		MaxIterationRounds:      16,
		MinIterationRounds:      2,
		StableThreshold:         2,
		MaxExplorationRounds:    128,
		EnableAdaptiveIteration: true,
		EnableCostModel:         true,
		EnableMultiPlan:         true,
	}
}

// Validate checks that every configured rule name is known (spec §6:
// disabled_rules/enabled_rules are validated at load time, not silently
// ignored on a typo).
func (c *OptimizationConfig) Validate() error {
	if err := rule.ValidateNames(c.DisabledRules); err != nil {
		return fmt.Errorf("optengine: disabled_rules: %w", err)
	}
	if err := rule.ValidateNames(c.EnabledRules); err != nil {
		return fmt.Errorf("optengine: enabled_rules: %w", err)
	}
	return nil
}

// LoadOptimizationConfig reads an OptimizationConfig from a TOML or YAML
// file (chosen by extension, defaulting to TOML), starting from Default()
// so the file only needs to override the fields it changes.
func LoadOptimizationConfig(path string) (*OptimizationConfig, error) {
	cfg := Default()
	if isYAML(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("optengine: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("optengine: decoding %s: %w", path, err)
		}
	} else {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("optengine: config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("optengine: decoding %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

// disabledSet and enabledSet adapt the config's rule-name lists for quick
// membership checks during the phase loop.
func (c *OptimizationConfig) disabledSet() map[rule.Name]bool {
	m := make(map[rule.Name]bool, len(c.DisabledRules))
	for _, n := range c.DisabledRules {
		m[n] = true
	}
	return m
}

func (c *OptimizationConfig) enabledSet() map[rule.Name]bool {
	if len(c.EnabledRules) == 0 {
		return nil // nil means "all rules enabled unless disabled"
	}
	m := make(map[rule.Name]bool, len(c.EnabledRules))
	for _, n := range c.EnabledRules {
		m[n] = true
	}
	return m
}

// ruleAllowed reports whether name should run given this config's
// enabled/disabled rule lists: enabled_rules, when non-empty, is an
// allow-list; disabled_rules always wins over it.
func (c *OptimizationConfig) ruleAllowed(name rule.Name, enabled, disabled map[rule.Name]bool) bool {
	if disabled[name] {
		return false
	}
	if enabled != nil && !enabled[name] {
		return false
	}
	return true
}
