package costmodel

import (
	"math"

	"github.com/kkkqkx123/graphdb-optimizer/internal/gstats"
)

// Calibrator lets the cost calculator fold runtime feedback into its row
// estimates without importing the memo package (which owns the feedback
// table) — an inverted dependency, per spec §4.2's
// get_calibrated_row_estimate.
type Calibrator interface {
	CalibratedRowEstimate(nodeID int64, estimated float64) float64
}

// Calculator evaluates the cost formulas of spec §4.3 against a
// statistics reader and an optional calibrator.
type Calculator struct {
	Config     *Config
	Stats      gstats.Reader
	Calibrator Calibrator
}

// NewCalculator returns a Calculator using cfg (or Default() if nil).
func NewCalculator(cfg *Config, stats gstats.Reader) *Calculator {
	if cfg == nil {
		cfg = Default()
	}
	return &Calculator{Config: cfg, Stats: stats}
}

// ScanVerticesCost estimates the cost of a full ScanVertices(tag) scan.
func (c *Calculator) ScanVerticesCost(tag string) float64 {
	count := c.vertexCount(tag)
	return c.Config.SeqPageCost * count / c.rowsPerPage()
}

// ScanEdgesCost estimates the cost of a full ScanEdges(edgeType) scan.
func (c *Calculator) ScanEdgesCost(edgeType string) float64 {
	count := c.edgeCount(edgeType)
	return c.Config.SeqPageCost * count / c.rowsPerPage()
}

// IndexScanCost estimates the cost of an IndexScan over tag with
// selectivity sel.
func (c *Calculator) IndexScanCost(tag string, sel float64) float64 {
	count := c.vertexCount(tag)
	matched := math.Ceil(sel * count)
	return c.Config.RandomPageCost*matched + c.Config.CPUTupleCost*sel*count
}

// FilterCost estimates the cost of evaluating nconds conjuncts over rows
// input rows.
func (c *Calculator) FilterCost(rows float64, nconds int) float64 {
	if nconds < 1 {
		nconds = 1
	}
	return c.Config.CPUOperatorCost * rows * float64(nconds)
}

// HashJoinCost estimates the cost of a hash join between l and r rows.
func (c *Calculator) HashJoinCost(l, r float64) float64 {
	return c.Config.HashCost*(l+r) + c.Config.CPUTupleCost*(l+r)
}

// NestedLoopCost estimates the cost of a nested-loop join.
func (c *Calculator) NestedLoopCost(l, r float64) float64 {
	return c.Config.CPUOperatorCost * l * r
}

// CrossJoinCost estimates the cost of a Cartesian product.
func (c *Calculator) CrossJoinCost(l, r float64) float64 {
	return c.Config.CPUOperatorCost * l * r
}

// SortCost estimates the cost of fully sorting rows input rows by k sort
// keys.
func (c *Calculator) SortCost(rows float64, k int) float64 {
	if rows <= 1 {
		return 0
	}
	if k < 1 {
		k = 1
	}
	return c.Config.SortCostFactor * rows * math.Log2(rows) * float64(k)
}

// TopNCost estimates the cost of a bounded top-k selection over rows
// input rows, strictly cheaper than SortCost when k << rows.
func (c *Calculator) TopNCost(rows float64, k int) float64 {
	kk := float64(k)
	if kk < 2 {
		kk = 2
	}
	return c.Config.SortCostFactor * rows * math.Log2(kk)
}

// ExpandCost estimates the cost of expanding `start` input rows over an
// edge type with the given average out-degree for `steps` hops, applying
// the super-node penalty when degree exceeds the configured threshold.
func (c *Calculator) ExpandCost(start, avgOutDegree float64, steps int) float64 {
	if steps < 1 {
		steps = 1
	}
	degree := avgOutDegree
	penalty := 1.0
	if degree > c.Config.SuperNodeThreshold {
		penalty = c.Config.SuperNodePenalty
	}
	return start * math.Pow(degree, float64(steps)) * penalty
}

func (c *Calculator) vertexCount(tag string) float64 {
	if c.Stats == nil {
		return defaultCardinality
	}
	s, ok := c.Stats.GetTagStats(tag)
	if !ok {
		return defaultCardinality
	}
	return float64(s.VertexCount)
}

func (c *Calculator) edgeCount(edgeType string) float64 {
	if c.Stats == nil {
		return defaultCardinality
	}
	s, ok := c.Stats.GetEdgeStats(edgeType)
	if !ok {
		return defaultCardinality
	}
	return float64(s.EdgeCount)
}

func (c *Calculator) rowsPerPage() float64 {
	if c.Config.RowsPerPage <= 0 {
		return 100
	}
	return c.Config.RowsPerPage
}

// AvgOutDegree returns the average out-degree for edgeType, falling back
// to a documented default when statistics are missing, per the
// exception-free estimation design note (spec §9).
func (c *Calculator) AvgOutDegree(edgeType string) float64 {
	if c.Stats == nil {
		return defaultDegree
	}
	s, ok := c.Stats.GetEdgeStats(edgeType)
	if !ok {
		return defaultDegree
	}
	return s.AvgOutDegree
}

// AvgInDegree returns the average in-degree for edgeType, with the same
// fallback behavior as AvgOutDegree.
func (c *Calculator) AvgInDegree(edgeType string) float64 {
	if c.Stats == nil {
		return defaultDegree
	}
	s, ok := c.Stats.GetEdgeStats(edgeType)
	if !ok {
		return defaultDegree
	}
	return s.AvgInDegree
}

// CalibratedRowEstimate applies runtime-feedback calibration (if a
// Calibrator is configured) to a raw estimate for nodeID.
func (c *Calculator) CalibratedRowEstimate(nodeID int64, estimated float64) float64 {
	if c.Calibrator == nil {
		return estimated
	}
	return c.Calibrator.CalibratedRowEstimate(nodeID, estimated)
}

const (
	defaultCardinality = 1000
	defaultDegree      = 5
)
