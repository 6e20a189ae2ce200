package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// TopNIntroductionRule rewrites Limit(offset=0, count=n) -> Sort(items)
// into TopN(n, items); offset != 0 disables it since a bounded top-k heap
// cannot account for rows skipped ahead of it without knowing input size
// (spec §4.6 "Top-N introduction").
type TopNIntroductionRule struct{}

func (TopNIntroductionRule) Name() rule.Name { return rule.NameTopNIntroduction }

func (TopNIntroductionRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindLimit, rule.Leaf(planir.KindSort))
}

func (r TopNIntroductionRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	lim := member.PlanNode().(*planir.Limit)
	if lim.Offset != 0 {
		return nil, nil
	}
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	sortMember, ok := rule.FindMatch(ctx, rule.Leaf(planir.KindSort), childGID)
	if !ok {
		return nil, nil
	}
	sort := sortMember.PlanNode().(*planir.Sort)
	sortDeps := sortMember.Dependencies()
	if len(sortDeps) != 1 {
		return nil, nil
	}
	sortChild, ok := representative(ctx, sortDeps[0])
	if !ok {
		return nil, nil
	}

	topN, err := planir.NewTopN(ctx.NextID(), lim.OutputVar(), sortChild, lim.Count, sort.Items, lim.ColNames())
	if err != nil {
		return nil, err
	}
	return single(ctx, member.GroupID(), topN, sortDeps), nil
}
