package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// joinlikeKinds are the binary join kinds PushFilterDownJoinRule fires on
// (spec §4.6: InnerJoin / HashInnerJoin / CrossJoin split both sides;
// LeftJoin / HashLeftJoin only push left-referencing predicates).
var joinlikeKinds = []planir.Kind{
	planir.KindInnerJoin, planir.KindHashInnerJoin, planir.KindCrossJoin,
	planir.KindLeftJoin, planir.KindHashLeftJoin,
}

// PushFilterDownJoinRule splits a Filter sitting above a join, pushing each
// conjunct below the side whose columns cover it; a conjunct touching both
// sides is left as residue above the join (spec §4.6 "Predicate
// pushdown").
type PushFilterDownJoinRule struct{}

func (PushFilterDownJoinRule) Name() rule.Name { return rule.NamePushFilterDownJoin }

func (PushFilterDownJoinRule) Pattern() *rule.MatchNode {
	// Any of the join kinds may sit below; the join-kind check itself
	// happens in Apply since MatchNode constrains exactly one Kind.
	return rule.Pattern(planir.KindFilter, rule.Any())
}

func (r PushFilterDownJoinRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	outer := member.PlanNode().(*planir.Filter)
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}

	var joinMember *memo.OptGroupNode
	for _, k := range joinlikeKinds {
		if m, ok := rule.FindMatch(ctx, rule.Leaf(k), childGID); ok {
			joinMember = m
			break
		}
	}
	if joinMember == nil {
		return nil, nil
	}

	deps := joinMember.Dependencies()
	if len(deps) != 2 {
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
	leftCols := colSet(left.ColNames())
	rightCols := colSet(right.ColNames())
	onlyLeft := joinMember.PlanNode().Kind() == planir.KindLeftJoin || joinMember.PlanNode().Kind() == planir.KindHashLeftJoin

	var leftPreds, rightPreds, residual []planir.Expr
	for _, c := range planir.SplitConjunction(outer.Condition) {
		switch {
		case planir.HasOnlyColumnsIn(c, leftCols):
			leftPreds = append(leftPreds, c)
		case !onlyLeft && planir.HasOnlyColumnsIn(c, rightCols):
			rightPreds = append(rightPreds, c)
		default:
			residual = append(residual, c)
		}
	}
	if len(leftPreds) == 0 && len(rightPreds) == 0 {
		return nil, nil
	}

	newLeftGID := deps[0]
	if len(leftPreds) > 0 {
		lf, err := planir.NewFilter(ctx.NextID(), left.OutputVar(), left, planir.And(leftPreds...), left.ColNames())
		if err != nil {
			return nil, err
		}
		newLeftGID = newGroupFor(ctx, lf, []memo.GroupID{deps[0]})
	}
	newRightGID := deps[1]
	if len(rightPreds) > 0 {
		rf, err := planir.NewFilter(ctx.NextID(), right.OutputVar(), right, planir.And(rightPreds...), right.ColNames())
		if err != nil {
			return nil, err
		}
		newRightGID = newGroupFor(ctx, rf, []memo.GroupID{deps[1]})
	}

	newJoin, err := rebuildJoin(ctx, joinMember.PlanNode(), left, right)
	if err != nil {
		return nil, err
	}
	joinGID := newGroupFor(ctx, newJoin, []memo.GroupID{newLeftGID, newRightGID})

	if len(residual) == 0 {
		return single(ctx, member.GroupID(), newJoin, []memo.GroupID{newLeftGID, newRightGID}), nil
	}
	outerFilter, err := planir.NewFilter(ctx.NextID(), outer.OutputVar(), newJoin, planir.And(residual...), outer.ColNames())
	if err != nil {
		return nil, err
	}
	return single(ctx, member.GroupID(), outerFilter, []memo.GroupID{joinGID}), nil
}

func colSet(cols []string) map[string]struct{} {
	m := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		m[c] = struct{}{}
	}
	return m
}

// rebuildJoin constructs a fresh join node of the same kind/keys as orig,
// with left/right as its (possibly just-filtered) concrete inputs.
func rebuildJoin(ctx *memo.OptContext, orig planir.PlanNode, left, right planir.PlanNode) (planir.PlanNode, error) {
	switch j := orig.(type) {
	case *planir.InnerJoin:
		return planir.NewInnerJoin(ctx.NextID(), j.OutputVar(), left, right, j.HashKeys, j.ProbeKeys, j.ColNames())
	case *planir.LeftJoin:
		return planir.NewLeftJoin(ctx.NextID(), j.OutputVar(), left, right, j.HashKeys, j.ProbeKeys, j.ColNames())
	case *planir.CrossJoin:
		return planir.NewCrossJoin(ctx.NextID(), j.OutputVar(), left, right, j.ColNames())
	case *planir.HashInnerJoin:
		return planir.NewHashInnerJoin(ctx.NextID(), j.OutputVar(), left, right, j.HashKeys, j.ProbeKeys, j.ColNames())
	case *planir.HashLeftJoin:
		return planir.NewHashLeftJoin(ctx.NextID(), j.OutputVar(), left, right, j.HashKeys, j.ProbeKeys, j.ColNames())
	default:
		return nil, nil
	}
}
