package rules

import (
	"strings"

	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// PushFilterDownTraverseRule merges the conjuncts of a Filter above a
// single-step Traverse that reference only the traverse's bound alias into
// the Traverse's own EFilter; other conjuncts stay in a Filter above it
// (spec §4.6: "a predicate touching only the edge
// alias of a single-step Traverse is merged into EFilter rather than
// evaluated as a separate Filter operator").
type PushFilterDownTraverseRule struct{}

func (PushFilterDownTraverseRule) Name() rule.Name { return rule.NamePushFilterDownTraverse }

func (PushFilterDownTraverseRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindFilter, rule.Leaf(planir.KindTraverse))
}

func (r PushFilterDownTraverseRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	outer := member.PlanNode().(*planir.Filter)
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	travMember, ok := rule.FindMatch(ctx, rule.Leaf(planir.KindTraverse), childGID)
	if !ok {
		return nil, nil
	}
	trav := travMember.PlanNode().(*planir.Traverse)
	if !trav.IsSingleStep() {
		return nil, nil
	}
	travDeps := travMember.Dependencies()
	if len(travDeps) != 1 {
		return nil, nil
	}

	alias := aliasPrefix(trav.OutputVar())
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

	newTrav, err := planir.NewTraverse(ctx.NextID(), trav.OutputVar(), travInput(ctx, travDeps[0], trav), trav.EdgeTypes, trav.Direction, trav.MaxSteps, trav.ColNames())
	if err != nil {
		return nil, err
	}
	newTrav.EFilter = planir.And(trav.EFilter, planir.And(pushable...))
	newTrav.VFilter = trav.VFilter

	if len(residual) == 0 {
		return single(ctx, member.GroupID(), newTrav, travDeps), nil
	}
	newTravGID := newGroupFor(ctx, newTrav, travDeps)
	outerFilter, err := planir.NewFilter(ctx.NextID(), outer.OutputVar(), newTrav, planir.And(residual...), outer.ColNames())
	if err != nil {
		return nil, err
	}
	return single(ctx, member.GroupID(), outerFilter, []memo.GroupID{newTravGID}), nil
}

// travInput returns a concrete representative PlanNode to satisfy
// NewTraverse's non-nil-input validation; the group id in travDeps is what
// actually wires the memo dependency.
func travInput(ctx *memo.OptContext, gid memo.GroupID, orig *planir.Traverse) planir.PlanNode {
	if n, ok := representative(ctx, gid); ok {
		return n
	}
	return orig.Input()
}

// aliasPrefix returns the bound-variable alias for an output var, which is
// the output var itself (so "e_dst" yields "e_dst"); it is used to
// recognize "alias.prop" column references that belong to this step.
func aliasPrefix(outputVar string) string {
	return outputVar
}

// referencesOnlyAlias reports whether every column e touches is qualified
// as "alias.something".
func referencesOnlyAlias(e planir.Expr, alias string) bool {
	for _, c := range planir.ColumnsReferenced(e) {
		if !strings.HasPrefix(c, alias+".") {
			return false
		}
	}
	return len(planir.ColumnsReferenced(e)) > 0
}
