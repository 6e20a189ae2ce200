package rule

import "fmt"

// Name is a stable, closed-set rule identifier, so configuration
// (OptimizationConfig's enabled/disabled_rules, spec §6) can be validated
// at load time instead of silently no-op-ing on a typo (SPEC_FULL.md §4.9,
// grounded on original_source's rule_registry.rs / rule_enum.rs).
type Name string

const (
	NameCombineFilter              Name = "CombineFilter"
	NamePushFilterDownProject      Name = "PushFilterDownProject"
	NamePushFilterDownJoin         Name = "PushFilterDownJoin"
	NamePushFilterDownTraverse     Name = "PushFilterDownTraverse"
	NamePushFilterDownAllPaths     Name = "PushFilterDownAllPaths"
	NamePushProjectionDown         Name = "PushProjectionDown"
	NamePushLimitDown              Name = "PushLimitDown"
	NamePushTopNDownIndexScan      Name = "PushTopNDownIndexScan"
	NameTopNIntroduction           Name = "TopNIntroduction"
	NameRemoveTautologicalFilter   Name = "RemoveTautologicalFilter"
	NameRemoveNoopProject          Name = "RemoveNoopProject"
	NameDedupElimination           Name = "DedupElimination"
	NameEliminateAppendVertices    Name = "EliminateAppendVertices"
	NameMergeGetVerticesProject    Name = "MergeGetVerticesProject"
	NameMergeGetVerticesDedup      Name = "MergeGetVerticesDedup"
	NameMergeGetNeighborsProject   Name = "MergeGetNeighborsProject"
	NameMergeGetNeighborsDedup     Name = "MergeGetNeighborsDedup"
	NameIndexScan                  Name = "IndexScanRule"
	NameIndexCoveringScan          Name = "IndexCoveringScanRule"
	NameUnionAllTagIndexScan       Name = "UnionAllTagIndexScanRule"
	NameJoinOptimization           Name = "JoinOptimizationRule"
	NameJoinOrder                  Name = "JoinOrderRule"
	NameAggregateStrategySelector  Name = "AggregateStrategySelector"
	NameSortElimination            Name = "SortEliminationOptimizer"
	NameTraversalDirectionOptimize Name = "TraversalDirectionOptimizer"
)

// allNames is the closed set config validation checks enabled/disabled
// rule names against.
var allNames = map[Name]bool{
	NameCombineFilter:              true,
	NamePushFilterDownProject:      true,
	NamePushFilterDownJoin:         true,
	NamePushFilterDownTraverse:     true,
	NamePushFilterDownAllPaths:     true,
	NamePushProjectionDown:         true,
	NamePushLimitDown:              true,
	NamePushTopNDownIndexScan:      true,
	NameTopNIntroduction:           true,
	NameRemoveTautologicalFilter:   true,
	NameRemoveNoopProject:          true,
	NameDedupElimination:           true,
	NameEliminateAppendVertices:    true,
	NameMergeGetVerticesProject:    true,
	NameMergeGetVerticesDedup:      true,
	NameMergeGetNeighborsProject:   true,
	NameMergeGetNeighborsDedup:     true,
	NameIndexScan:                  true,
	NameIndexCoveringScan:          true,
	NameUnionAllTagIndexScan:       true,
	NameJoinOptimization:           true,
	NameJoinOrder:                  true,
	NameAggregateStrategySelector:  true,
	NameSortElimination:            true,
	NameTraversalDirectionOptimize: true,
}

// IsKnown reports whether n is a recognized rule name.
func (n Name) IsKnown() bool { return allNames[n] }

// Phase identifies which of the engine's three fixed-order phases a rule
// belongs to (spec §4.5).
type Phase int

const (
	PhaseRewrite Phase = iota
	PhaseLogical
	PhasePhysical
)

func (p Phase) String() string {
	switch p {
	case PhaseRewrite:
		return "rewrite"
	case PhaseLogical:
		return "logical"
	case PhasePhysical:
		return "physical"
	default:
		return "unknown"
	}
}

// Registry holds every rule known to the engine, grouped by phase, keyed
// by its stable Name.
type Registry struct {
	rules map[Name]Rule
	order []Name
	phase map[Name]Phase
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[Name]Rule), phase: make(map[Name]Phase)}
}

// Register installs r under phase. Registering the same Name twice is a
// programmer error and returns an error rather than silently overwriting
// an existing rule.
func (reg *Registry) Register(phase Phase, r Rule) error {
	name := r.Name()
	if !name.IsKnown() {
		return fmt.Errorf("rule: %q is not a recognized rule name", name)
	}
	if _, exists := reg.rules[name]; exists {
		return fmt.Errorf("rule: %q already registered", name)
	}
	reg.rules[name] = r
	reg.phase[name] = phase
	reg.order = append(reg.order, name)
	return nil
}

// Get returns the rule registered under name, if any.
func (reg *Registry) Get(name Name) (Rule, bool) {
	r, ok := reg.rules[name]
	return r, ok
}

// ForPhase returns every rule registered under phase, in registration
// order — the engine's deterministic rule-application ordering (spec §4.5
// "per phase, apply rules in a fixed order").
func (reg *Registry) ForPhase(phase Phase) []Rule {
	var out []Rule
	for _, name := range reg.order {
		if reg.phase[name] == phase {
			out = append(out, reg.rules[name])
		}
	}
	return out
}

// ValidateNames checks that every name in names is known, returning the
// first unrecognized one as an error (used to validate
// OptimizationConfig's enabled_rules/disabled_rules at load time).
func ValidateNames(names []Name) error {
	for _, n := range names {
		if !n.IsKnown() {
			return fmt.Errorf("rule: unrecognized rule name %q", n)
		}
	}
	return nil
}
