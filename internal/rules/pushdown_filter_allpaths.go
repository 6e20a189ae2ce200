package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// PushFilterDownAllPathsRule merges the conjuncts of a Filter above a
// fixed-length AllPaths (MinSteps == MaxSteps) that reference only the
// path's own bound alias into the AllPaths node itself; other conjuncts
// stay in a Filter above it. A variable-length AllPaths is left alone,
// since it cannot be given a single per-step filter without changing its
// semantics (spec §4.6).
type PushFilterDownAllPathsRule struct{}

func (PushFilterDownAllPathsRule) Name() rule.Name { return rule.NamePushFilterDownAllPaths }

func (PushFilterDownAllPathsRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindFilter, rule.Leaf(planir.KindAllPaths))
}

func (r PushFilterDownAllPathsRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	outer := member.PlanNode().(*planir.Filter)
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	apMember, ok := rule.FindMatch(ctx, rule.Leaf(planir.KindAllPaths), childGID)
	if !ok {
		return nil, nil
	}
	ap := apMember.PlanNode().(*planir.AllPaths)
	if !ap.IsConstantLength() {
		return nil, nil
	}

	alias := aliasPrefix(ap.OutputVar())
	var pushable, residual []planir.Expr
	for _, c := range planir.SplitConjunction(outer.Condition) {
		if referencesOnlyAlias(c, alias) {
			pushable = append(pushable, c)
		} else {
			residual = append(residual, c)
		}
	}
	if len(pushable) == 0 {
		return nil, nil
	}

	newAP := planir.NewAllPaths(ctx.NextID(), ap.OutputVar(), ap.From, ap.To, ap.MinSteps, ap.MaxSteps, ap.ColNames())
	newAP.EFilter = planir.And(ap.EFilter, planir.And(pushable...))
	apDeps := apMember.Dependencies()

	if len(residual) == 0 {
		return single(ctx, member.GroupID(), newAP, apDeps), nil
	}
	newAPGID := newGroupFor(ctx, newAP, apDeps)
	outerFilter, err := planir.NewFilter(ctx.NextID(), outer.OutputVar(), newAP, planir.And(residual...), outer.ColNames())
	if err != nil {
		return nil, err
	}
	return single(ctx, member.GroupID(), outerFilter, []memo.GroupID{newAPGID}), nil
}
