package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// PushFilterDownProjectRule pushes a Filter under a Project, renaming
// referenced columns back to the projection's source expressions when
// every conjunct only touches simple column-reference items; a conjunct
// touching a computed projection item stays above as residue (spec §4.6
// "Filter can be pushed under ... Project: rename properties according to
// the projection and push under").
type PushFilterDownProjectRule struct{}

func (PushFilterDownProjectRule) Name() rule.Name { return rule.NamePushFilterDownProject }

func (PushFilterDownProjectRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindFilter, rule.Leaf(planir.KindProject))
}

func (r PushFilterDownProjectRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	outer := member.PlanNode().(*planir.Filter)
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	projMember, ok := rule.FindMatch(ctx, rule.Leaf(planir.KindProject), childGID)
	if !ok {
		return nil, nil
	}
	proj := projMember.PlanNode().(*planir.Project)
	projChildDeps := projMember.Dependencies()
	if len(projChildDeps) != 1 {
		return nil, nil
	}
	projChild, ok := representative(ctx, projChildDeps[0])
	if !ok {
		return nil, nil
	}

	rename := make(map[string]planir.Expr, len(proj.Items))
	for _, item := range proj.Items {
		alias := item.Alias
		if col, ok := item.Expr.(*planir.ColumnRef); ok {
			if alias == "" {
				alias = col.Name
			}
			rename[alias] = item.Expr
		}
	}

	conjuncts := planir.SplitConjunction(outer.Condition)
	var pushable, residual []planir.Expr
	for _, c := range conjuncts {
		if renamed, ok := renameColumns(c, rename); ok {
			pushable = append(pushable, renamed)
		} else {
			residual = append(residual, c)
		}
	}
	if len(pushable) == 0 {
		return nil, nil
	}

	pushedFilter, err := planir.NewFilter(ctx.NextID(), proj.OutputVar(), projChild, planir.And(pushable...), projChild.ColNames())
	if err != nil {
		return nil, err
	}
	pushedFilterGID := newGroupFor(ctx, pushedFilter, projChildDeps)

	newProj, err := planir.NewProject(ctx.NextID(), proj.OutputVar(), pushedFilter, proj.Items, proj.ColNames())
	if err != nil {
		return nil, err
	}

	if len(residual) == 0 {
		return single(ctx, member.GroupID(), newProj, []memo.GroupID{pushedFilterGID}), nil
	}

	newProjGID := newGroupFor(ctx, newProj, []memo.GroupID{pushedFilterGID})
	outerFilter, err := planir.NewFilter(ctx.NextID(), outer.OutputVar(), newProj, planir.And(residual...), outer.ColNames())
	if err != nil {
		return nil, err
	}
	return single(ctx, member.GroupID(), outerFilter, []memo.GroupID{newProjGID}), nil
}

// renameColumns rewrites every ColumnRef in e according to rename, failing
// (ok=false) if e references a column rename doesn't cover (a computed
// projection item, which cannot be pushed through).
func renameColumns(e planir.Expr, rename map[string]planir.Expr) (planir.Expr, bool) {
	switch n := e.(type) {
	case *planir.ColumnRef:
		r, ok := rename[n.Name]
		if !ok {
			return nil, false
		}
		return r, true
	case *planir.Literal:
		return n, true
	case *planir.BinaryExpr:
		left, ok := renameColumns(n.Left, rename)
		if !ok {
			return nil, false
		}
		right, ok := renameColumns(n.Right, rename)
		if !ok {
			return nil, false
		}
		return &planir.BinaryExpr{Op: n.Op, Left: left, Right: right}, true
	case *planir.UnaryExpr:
		operand, ok := renameColumns(n.Operand, rename)
		if !ok {
			return nil, false
		}
		return &planir.UnaryExpr{Op: n.Op, Operand: operand}, true
	default:
		return nil, false
	}
}
