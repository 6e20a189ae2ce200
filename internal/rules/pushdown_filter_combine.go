package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// CombineFilterRule merges an outer Filter directly above an inner Filter
// into a single Filter with the AND of both conditions (spec §4.6
// "Predicate pushdown": "Filter can be pushed under another Filter
// (combine into AND)").
type CombineFilterRule struct{}

func (CombineFilterRule) Name() rule.Name { return rule.NameCombineFilter }

func (CombineFilterRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindFilter, rule.Leaf(planir.KindFilter))
}

func (r CombineFilterRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	outer := member.PlanNode().(*planir.Filter)
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	innerMember, ok := rule.FindMatch(ctx, rule.Leaf(planir.KindFilter), childGID)
	if !ok {
		return nil, nil
	}
	inner := innerMember.PlanNode().(*planir.Filter)

	grandchildDeps := innerMember.Dependencies()
	if len(grandchildDeps) != 1 {
		return nil, nil
	}
	grandchild, ok := representative(ctx, grandchildDeps[0])
	if !ok {
		return nil, nil
	}

	combined, err := planir.NewFilter(ctx.NextID(), outer.OutputVar(), grandchild,
		planir.And(outer.Condition, inner.Condition), outer.ColNames())
	if err != nil {
		return nil, err
	}
	return single(ctx, member.GroupID(), combined, grandchildDeps), nil
}
