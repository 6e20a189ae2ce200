package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// PushLimitDownRule fuses a zero-offset Limit into a scan/index child's own
// Limit field when that field is not already set (spec §4.6 "Limit / TopN
// pushdown").
type PushLimitDownRule struct{}

func (PushLimitDownRule) Name() rule.Name { return rule.NamePushLimitDown }

func (PushLimitDownRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindLimit, rule.Any())
}

func (r PushLimitDownRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	lim := member.PlanNode().(*planir.Limit)
	if lim.Offset != 0 {
		return nil, nil
	}
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	child, ok := representative(ctx, childGID)
	if !ok {
		return nil, nil
	}
	fused, ok := withCount(ctx, child, lim.Count)
	if !ok {
		return nil, nil
	}
	return single(ctx, member.GroupID(), fused, member.Dependencies()), nil
}

// withCount returns a copy of src with its own Limit field set to count,
// failing (ok=false) if src isn't a countable source or already carries a
// limit of its own.
func withCount(ctx *memo.OptContext, src planir.PlanNode, count int) (planir.PlanNode, bool) {
	switch n := src.(type) {
	case *planir.ScanVertices:
		if n.Limit != nil {
			return nil, false
		}
		nn := planir.NewScanVertices(ctx.NextID(), n.OutputVar(), n.Tag, n.ColNames())
		nn.VFilter, nn.Limit = n.VFilter, &count
		return nn, true
	case *planir.ScanEdges:
		if n.Limit != nil {
			return nil, false
		}
		nn := planir.NewScanEdges(ctx.NextID(), n.OutputVar(), n.EdgeType, n.ColNames())
		nn.EFilter, nn.Limit = n.EFilter, &count
		return nn, true
	case *planir.IndexScan:
		if n.Limit != nil {
			return nil, false
		}
		nn := planir.NewIndexScan(ctx.NextID(), n.OutputVar(), n.IndexID, n.ColNames())
		nn.ScanType, nn.ScanLimits, nn.ReturnCols, nn.Limit = n.ScanType, n.ScanLimits, n.ReturnCols, &count
		return nn, true
	case *planir.EdgeIndexScan:
		if n.Limit != nil {
			return nil, false
		}
		nn := planir.NewEdgeIndexScan(ctx.NextID(), n.OutputVar(), n.IndexID, n.ColNames())
		nn.ScanLimits, nn.Limit = n.ScanLimits, &count
		return nn, true
	case *planir.FulltextIndexScan:
		if n.Limit != nil {
			return nil, false
		}
		nn := planir.NewFulltextIndexScan(ctx.NextID(), n.OutputVar(), n.IndexID, n.SearchText, n.ColNames())
		nn.Limit = &count
		return nn, true
	case *planir.GetVertices:
		if n.Limit != nil {
			return nil, false
		}
		nn := planir.NewGetVertices(ctx.NextID(), n.OutputVar(), n.Src, n.ColNames())
		nn.Props, nn.Limit = n.Props, &count
		return nn, true
	case *planir.GetEdges:
		if n.Limit != nil {
			return nil, false
		}
		nn := planir.NewGetEdges(ctx.NextID(), n.OutputVar(), n.EdgeType, n.Src, n.Dst, n.ColNames())
		nn.Limit = &count
		return nn, true
	case *planir.GetNeighbors:
		if n.Limit != nil {
			return nil, false
		}
		nn := planir.NewGetNeighbors(ctx.NextID(), n.OutputVar(), n.Src, n.EdgeTypes, n.Direction, n.ColNames())
		nn.EFilter, nn.Limit = n.EFilter, &count
		return nn, true
	default:
		return nil, false
	}
}
