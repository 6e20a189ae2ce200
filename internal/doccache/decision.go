package doccache

import "github.com/kkkqkx123/graphdb-optimizer/internal/rule"

// Decision is the cached outcome of one `optimize` run (spec §4.7):
// `OptimizationDecision { traversal_start, index_selection, join_order,
// rewrite_rules, stats_version, index_version, created_at }`.
type Decision struct {
	TraversalStart  string
	IndexSelection  map[string]int64 // column/predicate key -> chosen index id
	JoinOrder       []string         // ordered variable list
	RewriteRules    []rule.Name      // rules that fired to reach this decision
	StatsVersion    int64
	IndexVersion    int64
	CreatedAtUnixMS int64
}
