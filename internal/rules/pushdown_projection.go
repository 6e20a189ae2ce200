package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// PushProjectionDownRule fuses a Project into a ScanVertices / ScanEdges /
// GetVertices / GetEdges / GetNeighbors child when every projected
// expression is a plain column reference the source can already emit
// (spec §4.6 "Projection pushdown").
type PushProjectionDownRule struct{}

func (PushProjectionDownRule) Name() rule.Name { return rule.NamePushProjectionDown }

func (PushProjectionDownRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindProject, rule.Any())
}

func (r PushProjectionDownRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	proj := member.PlanNode().(*planir.Project)
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	child, ok := representative(ctx, childGID)
	if !ok {
		return nil, nil
	}

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
	return single(ctx, member.GroupID(), fused, member.Dependencies()), nil
}

// fuseIntoSource rebuilds a copy of src with outputVar and colNames
// replaced by the Project's own, for the fixed set of leaf kinds that
// projection/dedup fusion supports.
func fuseIntoSource(ctx *memo.OptContext, src planir.PlanNode, outputVar string, colNames []string) (planir.PlanNode, bool) {
	switch n := src.(type) {
	case *planir.ScanVertices:
		nn := planir.NewScanVertices(ctx.NextID(), outputVar, n.Tag, colNames)
		nn.VFilter, nn.Limit = n.VFilter, n.Limit
		return nn, true
	case *planir.ScanEdges:
		nn := planir.NewScanEdges(ctx.NextID(), outputVar, n.EdgeType, colNames)
		nn.EFilter, nn.Limit = n.EFilter, n.Limit
		return nn, true
	case *planir.GetVertices:
		nn := planir.NewGetVertices(ctx.NextID(), outputVar, n.Src, colNames)
		nn.Props, nn.Limit = n.Props, n.Limit
		return nn, true
	case *planir.GetEdges:
		nn := planir.NewGetEdges(ctx.NextID(), outputVar, n.EdgeType, n.Src, n.Dst, colNames)
		nn.Limit = n.Limit
		return nn, true
	case *planir.GetNeighbors:
		nn := planir.NewGetNeighbors(ctx.NextID(), outputVar, n.Src, n.EdgeTypes, n.Direction, colNames)
		nn.EFilter, nn.Limit = n.EFilter, n.Limit
		return nn, true
	default:
		return nil, false
	}
}
