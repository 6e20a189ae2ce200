package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// MergeGetVerticesProjectRule fuses a Project directly above GetVertices so
// the materialization emits the projected output directly (spec §4.6
// "Merge").
type MergeGetVerticesProjectRule struct{}

func (MergeGetVerticesProjectRule) Name() rule.Name { return rule.NameMergeGetVerticesProject }
func (MergeGetVerticesProjectRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindProject, rule.Leaf(planir.KindGetVertices))
}
func (r MergeGetVerticesProjectRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	return mergeProject(ctx, member, planir.KindGetVertices)
}

// MergeGetNeighborsProjectRule is MergeGetVerticesProjectRule's counterpart
// for GetNeighbors.
type MergeGetNeighborsProjectRule struct{}

func (MergeGetNeighborsProjectRule) Name() rule.Name { return rule.NameMergeGetNeighborsProject }
func (MergeGetNeighborsProjectRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindProject, rule.Leaf(planir.KindGetNeighbors))
}
func (r MergeGetNeighborsProjectRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	return mergeProject(ctx, member, planir.KindGetNeighbors)
}

func mergeProject(ctx *memo.OptContext, member *memo.OptGroupNode, want planir.Kind) (*rule.TransformResult, error) {
	proj := member.PlanNode().(*planir.Project)
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	m, ok := rule.FindMatch(ctx, rule.Leaf(want), childGID)
	if !ok {
		return nil, nil
	}
	child := m.PlanNode()

	available := colSet(child.ColNames())
	newCols := make([]string, 0, len(proj.Items))
	for _, item := range proj.Items {
		col, ok := item.Expr.(*planir.ColumnRef)
		if !ok {
			return nil, nil
		}
		if _, ok := available[col.Name]; !ok {
			return nil, nil
		}
		out := item.Alias
		if out == "" {
			out = col.Name
		}
		newCols = append(newCols, out)
	}
	fused, ok := fuseIntoSource(ctx, child, proj.OutputVar(), newCols)
	if !ok {
		return nil, nil
	}
	return single(ctx, member.GroupID(), fused, m.Dependencies()), nil
}

// MergeGetVerticesDedupRule removes a Dedup directly above GetVertices,
// since materializing vertex objects by id already yields at most one row
// per id (spec §4.6 "Merge").
type MergeGetVerticesDedupRule struct{}

func (MergeGetVerticesDedupRule) Name() rule.Name { return rule.NameMergeGetVerticesDedup }
func (MergeGetVerticesDedupRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindDedup, rule.Leaf(planir.KindGetVertices))
}
func (r MergeGetVerticesDedupRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	return mergeDedup(ctx, member)
}

// MergeGetNeighborsDedupRule is MergeGetVerticesDedupRule's counterpart for
// GetNeighbors.
type MergeGetNeighborsDedupRule struct{}

func (MergeGetNeighborsDedupRule) Name() rule.Name { return rule.NameMergeGetNeighborsDedup }
func (MergeGetNeighborsDedupRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindDedup, rule.Leaf(planir.KindGetNeighbors))
}
func (r MergeGetNeighborsDedupRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	return mergeDedup(ctx, member)
}

func mergeDedup(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	return collapseToChild(ctx, member.GroupID(), childGID), nil
}
