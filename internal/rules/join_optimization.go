package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// Cardinality thresholds from spec §4.6 "Join optimization".
const (
	IndexJoinMaxRows  = 10_000
	NestedLoopMaxRows = 100
)

// JoinOptimizationRule only triggers on non-hash joins (InnerJoin, LeftJoin,
// CrossJoin) and rewrites them to the algorithm spec §4.6's decision table
// selects. Its Pattern is the wildcard: the join-kind check happens in
// Apply, since a single MatchNode cannot express "any of these kinds".
type JoinOptimizationRule struct {
	Rows RowEstimator
}

func (JoinOptimizationRule) Name() rule.Name          { return rule.NameJoinOptimization }
func (JoinOptimizationRule) Pattern() *rule.MatchNode { return rule.Any() }

func (r JoinOptimizationRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	node := member.PlanNode()
	switch node.(type) {
	case *planir.InnerJoin, *planir.LeftJoin, *planir.CrossJoin:
	default:
		return nil, nil
	}
	deps := member.Dependencies()
	if len(deps) != 2 || r.Rows == nil {
		return nil, nil
	}
	left, ok := representative(ctx, deps[0])
	if !ok {
		return nil, nil
	}
	right, ok := representative(ctx, deps[1])
	if !ok {
		return nil, nil
	}

	lRows := r.Rows.EstimateRows(ctx, deps[0])
	rRows := r.Rows.EstimateRows(ctx, deps[1])

	isIndexScan := func(n planir.PlanNode) bool {
		switch n.(type) {
		case *planir.IndexScan, *planir.EdgeIndexScan, *planir.FulltextIndexScan:
			return true
		}
		return false
	}
	if (isIndexScan(left) && rRows < IndexJoinMaxRows) || (isIndexScan(right) && lRows < IndexJoinMaxRows) {
		return nil, nil
	}
	if lRows < NestedLoopMaxRows && rRows < NestedLoopMaxRows {
		return nil, nil
	}

	buildLeft := lRows <= rRows
	built, builtDeps, err := buildHashJoin(ctx, node, left, right, deps, buildLeft)
	if err != nil {
		return nil, err
	}
	if built == nil {
		return nil, nil
	}
	return single(ctx, member.GroupID(), built, builtDeps), nil
}

// buildHashJoin rebuilds node as the hash-join counterpart of its logical
// kind. For InnerJoin, whose two sides are interchangeable, it enforces
// the build-side invariant (spec §8: "in every HashInnerJoin emitted,
// estimated_rows(left) <= estimated_rows(right)") by swapping left/right
// (and their paired HashKeys/ProbeKeys and dependency group ids) whenever
// buildLeft is false. LeftJoin's left side is the outer-join-preserving
// side, so it is never swapped — spec §8 states the build-side invariant
// for HashInnerJoin only, and swapping a left join's sides would change
// which rows the join preserves.
func buildHashJoin(ctx *memo.OptContext, node planir.PlanNode, left, right planir.PlanNode, deps []memo.GroupID, buildLeft bool) (planir.PlanNode, []memo.GroupID, error) {
	switch j := node.(type) {
	case *planir.InnerJoin:
		hashKeys, probeKeys := j.HashKeys, j.ProbeKeys
		if !buildLeft {
			left, right = right, left
			hashKeys, probeKeys = probeKeys, hashKeys
			deps = []memo.GroupID{deps[1], deps[0]}
		}
		n, err := planir.NewHashInnerJoin(ctx.NextID(), j.OutputVar(), left, right, hashKeys, probeKeys, j.ColNames())
		return n, deps, err
	case *planir.LeftJoin:
		n, err := planir.NewHashLeftJoin(ctx.NextID(), j.OutputVar(), left, right, j.HashKeys, j.ProbeKeys, j.ColNames())
		return n, deps, err
	case *planir.CrossJoin:
		// CrossJoin has no join keys to hash on; nested loop is its only
		// physical form, so there is nothing to rewrite to.
		return nil, deps, nil
	default:
		return nil, deps, nil
	}
}
