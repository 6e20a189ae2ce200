package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// IndexScanRule rewrites a ScanVertices carrying a VFilter into an
// IndexScan when the filter's conjuncts map entirely onto index-column
// bounds for some index named by indexID (spec §4.6 "Index selection").
// Since this optimizer never queries the schema/index catalog itself, the
// candidate (index id, bound columns) pairs are supplied by the engine per
// tag from the index metadata manager.
type IndexScanRule struct {
	// CandidateIndexes maps a tag name to the indexes available on it, in
	// preference order; IndexedColumns names the leading columns each
	// index covers, used to decide whether a predicate's bounds fit.
	CandidateIndexes map[string][]IndexCandidate
}

// IndexCandidate is one index usable by IndexScanRule for a given tag.
type IndexCandidate struct {
	IndexID        int64
	IndexedColumns []string
	ReturnColumns  []string
}

func (IndexScanRule) Name() rule.Name { return rule.NameIndexScan }
func (IndexScanRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindScanVertices)
}

func (r IndexScanRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	sv := member.PlanNode().(*planir.ScanVertices)
	if sv.VFilter == nil {
		return nil, nil
	}
	candidates := r.CandidateIndexes[sv.Tag]
	if len(candidates) == 0 {
		return nil, nil
	}

	for _, cand := range candidates {
		limits, scanType, ok := boundsFor(sv.VFilter, cand.IndexedColumns)
		if !ok {
			continue
		}
		idx := planir.NewIndexScan(ctx.NextID(), sv.OutputVar(), cand.IndexID, sv.ColNames())
		idx.ScanType = scanType
		idx.ScanLimits = limits
		idx.ReturnCols = cand.ReturnColumns
		idx.Limit = sv.Limit
		return single(ctx, member.GroupID(), idx, nil), nil
	}
	return nil, nil
}

// boundsFor splits condition's conjuncts into ScanLimits over indexCols,
// succeeding only when every conjunct maps to one of indexCols; equality
// conjuncts on every column yield a "prefix" scan, anything else a
// "range" scan.
func boundsFor(condition planir.Expr, indexCols []string) ([]planir.ScanLimit, string, bool) {
	allowed := colSet(indexCols)
	conjuncts := planir.SplitConjunction(condition)
	limits := make([]planir.ScanLimit, 0, len(conjuncts))
	allEq := true
	for _, c := range conjuncts {
		be, ok := c.(*planir.BinaryExpr)
		if !ok || be.Op == planir.OpAnd || be.Op == planir.OpOr {
			return nil, "", false
		}
		col, ok := be.Left.(*planir.ColumnRef)
		if !ok {
			return nil, "", false
		}
		if _, ok := allowed[col.Name]; !ok {
			return nil, "", false
		}
		lit, ok := be.Right.(*planir.Literal)
		if !ok {
			return nil, "", false
		}
		if be.Op != planir.OpEq {
			allEq = false
		}
		limits = append(limits, planir.ScanLimit{Column: col.Name, Op: be.Op, Value: lit.Value})
	}
	if len(limits) == 0 {
		return nil, "", false
	}
	if allEq {
		return limits, "prefix", true
	}
	return limits, "range", true
}

// IndexCoveringScanRule removes a GetVertices materialization directly
// above an IndexScan when every projected/returned column the GetVertices
// would fetch is already present in the index's own return columns (spec
// §4.6 "Index selection").
type IndexCoveringScanRule struct{}

func (IndexCoveringScanRule) Name() rule.Name { return rule.NameIndexCoveringScan }
func (IndexCoveringScanRule) Pattern() *rule.MatchNode {
	return rule.Pattern(planir.KindGetVertices, rule.Leaf(planir.KindIndexScan))
}

func (r IndexCoveringScanRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	gv := member.PlanNode().(*planir.GetVertices)
	childGID, ok := soleDependency(member)
	if !ok {
		return nil, nil
	}
	idxMember, ok := rule.FindMatch(ctx, rule.Leaf(planir.KindIndexScan), childGID)
	if !ok {
		return nil, nil
	}
	idx := idxMember.PlanNode().(*planir.IndexScan)
	covered := colSet(idx.ReturnCols)
	wanted := gv.Props
	if len(wanted) == 0 {
		wanted = gv.ColNames()
	}
	for _, c := range wanted {
		if _, ok := covered[c]; !ok {
			return nil, nil
		}
	}
	return collapseToChild(ctx, member.GroupID(), childGID), nil
}

// UnionAllTagIndexScanRule merges an AppendVertices whose branches are all
// IndexScan nodes over the same index into a single IndexScan with widened
// ScanLimits — this optimizer's nearest structural equivalent to "a union
// of index scans sharing an index" (spec §4.6), since multi-branch set
// operations have already been reduced upstream of this optimizer's scope
// (see planir.Union's doc comment).
type UnionAllTagIndexScanRule struct{}

func (UnionAllTagIndexScanRule) Name() rule.Name { return rule.NameUnionAllTagIndexScan }
func (UnionAllTagIndexScanRule) Pattern() *rule.MatchNode {
	return rule.Leaf(planir.KindAppendVertices)
}

func (r UnionAllTagIndexScanRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*rule.TransformResult, error) {
	deps := member.Dependencies()
	if len(deps) < 2 {
		return nil, nil
	}
	var first *planir.IndexScan
	var limits []planir.ScanLimit
	for _, gid := range deps {
		n, ok := representative(ctx, gid)
		if !ok {
			return nil, nil
		}
		idx, ok := n.(*planir.IndexScan)
		if !ok {
			return nil, nil
		}
		if first == nil {
			first = idx
		} else if idx.IndexID != first.IndexID {
			return nil, nil
		}
		limits = append(limits, idx.ScanLimits...)
	}
	av := member.PlanNode().(*planir.AppendVertices)
	merged := planir.NewIndexScan(ctx.NextID(), av.OutputVar(), first.IndexID, av.ColNames())
	merged.ScanType = first.ScanType
	merged.ScanLimits = limits
	merged.ReturnCols = first.ReturnCols
	return single(ctx, member.GroupID(), merged, nil), nil
}
