package optengine

import (
	"fmt"

	"github.com/kkkqkx123/graphdb-optimizer/internal/costmodel"
	"github.com/kkkqkx123/graphdb-optimizer/internal/gstats"
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

// defaultCardinality backstops row estimates when statistics are missing,
// mirroring costmodel's own unexported default (spec §9's
// exception-free-estimation design note: unknown inputs degrade to a
// constant rather than failing the estimate).
const defaultCardinality = 1000.0

// RowEstimator implements rules.RowEstimator: the concrete cardinality
// estimator the engine wires into JoinOptimizationRule, JoinOrder, and
// AggregateStrategySelector. It dispatches on plan-node kind, reading
// base cardinalities from gstats.Reader and predicate selectivity from
// costmodel.SelectivityEstimator, then folds in whatever runtime feedback
// ctx.Feedback has recorded for that exact node id.
type RowEstimator struct {
	Stats       gstats.Reader
	Selectivity *costmodel.SelectivityEstimator
}

// EstimateRows returns the estimated output row count of gid's cheapest
// (or, absent cost info, first) member, memoized per OptContext so a
// group referenced by several parents is only estimated once per run.
func (r *RowEstimator) EstimateRows(ctx *memo.OptContext, gid memo.GroupID) float64 {
	cached := ctx.CacheStat(fmt.Sprintf("optengine.rows:%d", gid), func() any {
		return r.estimateGroup(ctx, gid)
	})
	return cached.(float64)
}

func (r *RowEstimator) estimateGroup(ctx *memo.OptContext, gid memo.GroupID) float64 {
	g, ok := ctx.Group(gid)
	if !ok || len(g.Members()) == 0 {
		return defaultCardinality
	}
	member := cheapestOrFirst(g.Members())
	return r.estimateNode(ctx, member)
}

func (r *RowEstimator) estimateNode(ctx *memo.OptContext, member *memo.OptGroupNode) float64 {
	node := member.PlanNode()
	deps := member.Dependencies()

	inputRows := func(i int) float64 {
		if i >= len(deps) {
			return defaultCardinality
		}
		return r.EstimateRows(ctx, deps[i])
	}

	var estimate float64
	switch n := node.(type) {
	case *planir.ScanVertices:
		estimate = r.vertexCount(n.Tag)
		if n.VFilter != nil {
			estimate *= r.sel(n.Tag, n.VFilter)
		}
	case *planir.ScanEdges:
		estimate = r.edgeCount(n.EdgeType)
		if n.EFilter != nil {
			estimate *= r.sel("", n.EFilter)
		}
	case *planir.IndexScan:
		estimate = r.vertexCount(tagFromReturnCols(n))
		for range n.ScanLimits {
			estimate *= unknownEqualitySelectivityFallback
		}
	case *planir.EdgeIndexScan:
		estimate = defaultCardinality
	case *planir.FulltextIndexScan:
		estimate = defaultCardinality * rangeSelectivityFallback
	case *planir.GetVertices:
		// Leaf kind: Src names an upstream-bound variable rather than a
		// memo dependency, so there is no child group to size this from.
		estimate = defaultCardinality
	case *planir.GetEdges:
		estimate = defaultCardinality
	case *planir.GetNeighbors:
		degree := r.avgDegree(n.EdgeTypes, n.Direction)
		estimate = defaultCardinality * degree
		if n.EFilter != nil {
			estimate *= r.sel("", n.EFilter)
		}
	case *planir.Argument, *planir.Start, *planir.PassThrough:
		estimate = 1
	case *planir.ShortestPath:
		estimate = 1
	case *planir.AllPaths:
		steps := float64(n.MaxSteps)
		if steps <= 0 {
			steps = 3
		}
		estimate = steps * 4
	case *planir.Project:
		estimate = inputRows(0)
	case *planir.Filter:
		estimate = inputRows(0) * r.sel("", n.Condition)
	case *planir.Sort:
		estimate = inputRows(0)
	case *planir.Limit:
		base := inputRows(0)
		estimate = capRows(base, n.Offset+n.Count)
	case *planir.TopN:
		estimate = capRows(inputRows(0), n.Limit)
	case *planir.Sample:
		estimate = capRows(inputRows(0), n.Count)
	case *planir.Aggregate:
		in := inputRows(0)
		k := len(n.GroupKeys)
		if k == 0 {
			estimate = 1
		} else {
			estimate = clampRows(in/pow2f(k), 1, in)
		}
	case *planir.Dedup:
		estimate = inputRows(0) * 0.8
	case *planir.Unwind:
		estimate = inputRows(0) * 3
	case *planir.DataCollect:
		estimate = 1
	case *planir.Union:
		estimate = inputRows(0)
	case *planir.Assign:
		estimate = inputRows(0)
	case *planir.PatternApply:
		estimate = inputRows(0)
	case *planir.RollUpApply:
		estimate = inputRows(0)
	case *planir.Traverse:
		degree := r.avgDegree(n.EdgeTypes, n.Direction)
		steps := n.MaxSteps
		if steps < 1 {
			steps = 1
		}
		estimate = inputRows(0) * powf(degree, steps)
		if n.EFilter != nil {
			estimate *= r.sel("", n.EFilter)
		}
		if n.VFilter != nil {
			estimate *= r.sel("", n.VFilter)
		}
	case *planir.Expand:
		degree := r.avgDegree(n.EdgeTypes, n.Direction)
		estimate = inputRows(0) * degree
	case *planir.ExpandAll:
		degree := r.avgDegree(n.EdgeTypes, n.Direction)
		steps := n.MaxSteps
		if steps < 1 {
			steps = 1
		}
		estimate = inputRows(0) * powf(degree, steps)
	case *planir.AppendVertices:
		var sum float64
		for i := range deps {
			sum += inputRows(i)
		}
		estimate = sum
	case *planir.InnerJoin, *planir.HashInnerJoin:
		estimate = joinRows(inputRows(0), inputRows(1))
	case *planir.LeftJoin, *planir.HashLeftJoin, *planir.FullOuterJoin:
		estimate = maxf(inputRows(0), joinRows(inputRows(0), inputRows(1)))
	case *planir.CrossJoin:
		estimate = inputRows(0) * inputRows(1)
	case *planir.Minus:
		estimate = inputRows(0) * 0.7
	case *planir.Intersect:
		estimate = minf(inputRows(0), inputRows(1)) * 0.3
	case *planir.Select:
		estimate = maxAmong(deps, inputRows)
	case *planir.Loop:
		estimate = inputRows(0) * 2
	case *planir.DDLPassthrough:
		estimate = inputRows(0)
	default:
		estimate = defaultCardinality
	}

	if estimate <= 0 {
		estimate = 1
	}
	if ctx.Feedback != nil {
		estimate = ctx.Feedback.CalibratedRowEstimate(node.ID(), estimate)
	}
	return estimate
}

const (
	unknownEqualitySelectivityFallback = 0.1
	rangeSelectivityFallback           = 0.33
)

func (r *RowEstimator) vertexCount(tag string) float64 {
	if r.Stats == nil {
		return defaultCardinality
	}
	s, ok := r.Stats.GetTagStats(tag)
	if !ok {
		return defaultCardinality
	}
	return float64(s.VertexCount)
}

func (r *RowEstimator) edgeCount(edgeType string) float64 {
	if r.Stats == nil {
		return defaultCardinality
	}
	s, ok := r.Stats.GetEdgeStats(edgeType)
	if !ok {
		return defaultCardinality
	}
	return float64(s.EdgeCount)
}

func (r *RowEstimator) avgDegree(edgeTypes []string, dir planir.Direction) float64 {
	if r.Stats == nil || len(edgeTypes) == 0 {
		return 5
	}
	var total float64
	var n int
	for _, et := range edgeTypes {
		s, ok := r.Stats.GetEdgeStats(et)
		if !ok {
			continue
		}
		switch dir {
		case planir.DirIncoming:
			total += s.AvgInDegree
		case planir.DirOutgoing:
			total += s.AvgOutDegree
		default:
			total += (s.AvgInDegree + s.AvgOutDegree) / 2
		}
		n++
	}
	if n == 0 {
		return 5
	}
	return total / float64(n)
}

func (r *RowEstimator) sel(tag string, e planir.Expr) float64 {
	if r.Selectivity == nil || e == nil {
		return unknownEqualitySelectivityFallback
	}
	return r.Selectivity.Estimate(tag, e)
}

func tagFromReturnCols(n *planir.IndexScan) string {
	// IndexScan carries no tag field directly (the index id already
	// identifies the schema object); fall back to the default estimate
	// since this optimizer never resolves index ids to tags itself.
	return ""
}

func cheapestOrFirst(members []*memo.OptGroupNode) *memo.OptGroupNode {
	best := members[0]
	bestCost, bestOK := best.Cost()
	for _, m := range members[1:] {
		c, ok := m.Cost()
		if !ok {
			continue
		}
		if !bestOK || c < bestCost {
			best, bestCost, bestOK = m, c, true
		}
	}
	return best
}

func capRows(rows float64, limit int) float64 {
	if limit <= 0 {
		return rows
	}
	if float64(limit) < rows {
		return float64(limit)
	}
	return rows
}

func clampRows(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func pow2f(k int) float64 { return powf(2, k) }

func powf(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

func joinRows(l, r float64) float64 {
	// Heuristic equi-join cardinality: the larger side scaled down by an
	// assumed moderate match rate, floored at the smaller side so an
	// inner join never estimates fewer rows than its most selective leg
	// would alone suggest for a foreign-key-shaped join.
	bigger := maxf(l, r)
	smaller := minf(l, r)
	return minf(bigger, smaller*2)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxAmong(deps []memo.GroupID, inputRows func(int) float64) float64 {
	if len(deps) == 0 {
		return defaultCardinality
	}
	best := inputRows(0)
	for i := 1; i < len(deps); i++ {
		if v := inputRows(i); v > best {
			best = v
		}
	}
	return best
}
