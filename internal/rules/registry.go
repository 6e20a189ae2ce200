package rules

import "github.com/kkkqkx123/graphdb-optimizer/internal/rule"

// RegisterAll installs every concrete memo-pattern rule into reg, grouped
// into the engine's three fixed phases (spec §4.5). rows backs the
// cardinality-dependent rules (JoinOptimizationRule); indexes backs
// IndexScanRule's per-tag index candidates. Analyzers that are invoked
// directly by the engine rather than pattern-matched against the memo
// (AggregateStrategySelector, SortEliminationOptimizer,
// TraversalDirectionOptimizer, JoinOrder) are not registered here.
func RegisterAll(reg *rule.Registry, rows RowEstimator, indexes map[string][]IndexCandidate) error {
	rewrite := []rule.Rule{
		CombineFilterRule{},
		PushFilterDownProjectRule{},
		PushFilterDownJoinRule{},
		PushFilterDownTraverseRule{},
		PushFilterDownAllPathsRule{},
		PushProjectionDownRule{},
		RemoveTautologicalFilterRule{},
		RemoveNoopProjectRule{},
		DedupEliminationRule{},
		EliminateAppendVerticesRule{},
		MergeGetVerticesProjectRule{},
		MergeGetVerticesDedupRule{},
		MergeGetNeighborsProjectRule{},
		MergeGetNeighborsDedupRule{},
	}
	for _, r := range rewrite {
		if err := reg.Register(rule.PhaseRewrite, r); err != nil {
			return err
		}
	}

	logical := []rule.Rule{
		IndexScanRule{CandidateIndexes: indexes},
		IndexCoveringScanRule{},
		UnionAllTagIndexScanRule{},
	}
	for _, r := range logical {
		if err := reg.Register(rule.PhaseLogical, r); err != nil {
			return err
		}
	}

	physical := []rule.Rule{
		PushLimitDownRule{},
		PushTopNDownIndexScanRule{},
		TopNIntroductionRule{},
		JoinOptimizationRule{Rows: rows},
	}
	for _, r := range physical {
		if err := reg.Register(rule.PhasePhysical, r); err != nil {
			return err
		}
	}
	return nil
}
