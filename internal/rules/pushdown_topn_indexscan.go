package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// PushTopNDownIndexScanRule fuses a TopN into an unlimited IndexScan child,
// dropping the sort items entirely when the index's own scan limits already
// establish the leading sort column's order (spec §4.6 "Limit / TopN
// pushdown").
type PushTopNDownIndexScanRule struct{}

func (PushTopNDownIndexScanRule) Name() rule.Name { return rule.NamePushTopNDownIndexScan }

func (PushTopNDownIndexScanRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindTopN, rule.Leaf(planir.KindIndexScan))
}

func (r PushTopNDownIndexScanRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	topN := member.PlanNode().(*planir.TopN)
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	idxMember, ok := rule.FindMatch(ctx, rule.Leaf(planir.KindIndexScan), childGID)
	if !ok {
		return nil, nil
	}
	idx := idxMember.PlanNode().(*planir.IndexScan)
	if idx.Limit != nil {
		return nil, nil
	}

	fused := planir.NewIndexScan(ctx.NextID(), idx.OutputVar(), idx.IndexID, idx.ColNames())
	count := topN.Limit
	fused.ScanType, fused.ScanLimits, fused.ReturnCols, fused.Limit = idx.ScanType, idx.ScanLimits, idx.ReturnCols, &count

	if indexSuppliesOrder(idx, topN.Items) {
		return single(ctx, member.GroupID(), fused, idxMember.Dependencies()), nil
	}

	fusedGID := newGroupFor(ctx, fused, idxMember.Dependencies())
	newTopN, err := planir.NewTopN(ctx.NextID(), topN.OutputVar(), fused, topN.Limit, topN.Items, topN.ColNames())
	if err != nil {
		return nil, err
	}
	return single(ctx, member.GroupID(), newTopN, []memo.GroupID{fusedGID}), nil
}

// indexSuppliesOrder reports whether the index's leading scan-limit column
// already establishes the order TopN's first sort item asks for, making the
// explicit sort redundant.
func indexSuppliesOrder(idx *planir.IndexScan, items []planir.SortItem) bool {
	if len(items) == 0 || len(idx.ScanLimits) == 0 {
		return false
	}
	return idx.ScanLimits[0].Column == items[0].Column && !items[0].Desc
}
