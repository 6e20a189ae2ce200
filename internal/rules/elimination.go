package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// RemoveTautologicalFilterRule removes a Filter whose condition is a
// constant-true predicate (spec §4.6 "Elimination").
type RemoveTautologicalFilterRule struct{}

func (RemoveTautologicalFilterRule) Name() rule.Name { return rule.NameRemoveTautologicalFilter }
func (RemoveTautologicalFilterRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindFilter, rule.Any())
}

func (r RemoveTautologicalFilterRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	f := member.PlanNode().(*planir.Filter)
	if !planir.IsTautology(f.Condition) {
		return nil, nil
	}
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	return collapseToChild(ctx, member.GroupID(), childGID), nil
}

// RemoveNoopProjectRule removes a Project whose column list is a trivial
// identity over the child's output columns.
type RemoveNoopProjectRule struct{}

func (RemoveNoopProjectRule) Name() rule.Name { return rule.NameRemoveNoopProject }
func (RemoveNoopProjectRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindProject, rule.Any())
}

func (r RemoveNoopProjectRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	p := member.PlanNode().(*planir.Project)
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	child, ok := representative(ctx, childGID)
	if !ok {
		return nil, nil
	}
	if !p.IsIdentity(child.ColNames()) {
		return nil, nil
	}
	return collapseToChild(ctx, member.GroupID(), childGID), nil
}

// dedupGuaranteedUniqueKinds are the leaf kinds whose output is already
// guaranteed unique, making an overlying Dedup redundant (spec §4.6).
var dedupGuaranteedUniqueKinds = map[planir.Kind]bool{
	planir.KindGetVertices: true,
	planir.KindGetEdges:    true,
}

// DedupEliminationRule removes a Dedup whose child already guarantees
// uniqueness (a unique index scan, GetVertices, or GetEdges).
type DedupEliminationRule struct{}

func (DedupEliminationRule) Name() rule.Name { return rule.NameDedupElimination }
func (DedupEliminationRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindDedup, rule.Any())
}

func (r DedupEliminationRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	child, ok := representative(ctx, childGID)
	if !ok {
		return nil, nil
	}
	guaranteed := dedupGuaranteedUniqueKinds[child.Kind()]
	if idx, ok := child.(*planir.IndexScan); ok {
		guaranteed = guaranteed || idx.ScanType == "prefix"
	}
	if !guaranteed {
		return nil, nil
	}
	return collapseToChild(ctx, member.GroupID(), childGID), nil
}

// EliminateAppendVerticesRule removes an AppendVertices with a single
// input when it adds nothing beyond that input's own output.
type EliminateAppendVerticesRule struct{}

func (EliminateAppendVerticesRule) Name() rule.Name { return rule.NameEliminateAppendVertices }
func (EliminateAppendVerticesRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindAppendVertices)
}

func (r EliminateAppendVerticesRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	av := member.PlanNode().(*planir.AppendVertices)
	if !av.IsRedundant() {
		return nil, nil
	}
	deps := member.Dependencies()
	if len(deps) != 1 {
		return nil, nil
	}
	return collapseToChild(ctx, member.GroupID(), deps[0]), nil
}
