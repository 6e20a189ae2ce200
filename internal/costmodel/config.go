// Package costmodel implements the optimizer's cost formulas and
// selectivity estimator (spec §4.3).
package costmodel

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable cost constant. All fields are per spec §4.3;
// RowsPerPage and SuperNodeThreshold support the ScanVertices and
// Expand/Traverse formulas respectively.
type Config struct {
	SeqPageCost         float64 `toml:"seq_page_cost" yaml:"seq_page_cost"`
	RandomPageCost      float64 `toml:"random_page_cost" yaml:"random_page_cost"`
	CPUOperatorCost     float64 `toml:"cpu_operator_cost" yaml:"cpu_operator_cost"`
	CPUTupleCost        float64 `toml:"cpu_tuple_cost" yaml:"cpu_tuple_cost"`
	HashCost            float64 `toml:"hash_cost" yaml:"hash_cost"`
	SortCostFactor      float64 `toml:"sort_cost_factor" yaml:"sort_cost_factor"`
	SuperNodePenalty    float64 `toml:"super_node_penalty" yaml:"super_node_penalty"`
	RowsPerPage         float64 `toml:"rows_per_page" yaml:"rows_per_page"`
	SuperNodeThreshold  float64 `toml:"super_node_threshold" yaml:"super_node_threshold"`
}

// Default returns the baseline preset, tuned for spinning-disk-like
// random access costs.
func Default() *Config {
	return &Config{
		SeqPageCost:        1.0,
		RandomPageCost:     4.0,
		CPUOperatorCost:    0.0025,
		CPUTupleCost:       0.01,
		HashCost:           0.02,
		SortCostFactor:     0.02,
		SuperNodePenalty:   10.0,
		RowsPerPage:        100,
		SuperNodeThreshold: 10000,
	}
}

// SSD returns a preset where random access is much cheaper relative to
// sequential access than on spinning disk.
func SSD() *Config {
	c := Default()
	c.RandomPageCost = 1.1
	c.SeqPageCost = 1.0
	return c
}

// InMemory returns a preset where page-access costs collapse to near-zero
// and CPU costs dominate.
func InMemory() *Config {
	c := Default()
	c.SeqPageCost = 0.01
	c.RandomPageCost = 0.01
	c.CPUOperatorCost = 0.005
	c.CPUTupleCost = 0.02
	c.HashCost = 0.04
	return c
}

// Load reads a Config from a TOML file, starting from the default preset
// so an override file only needs to set the fields it changes.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("costmodel: config file %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("costmodel: decoding %s: %w", path, err)
	}
	return cfg, nil
}
