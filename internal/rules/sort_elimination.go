package rules

// SortEliminationThreshold is the default fraction of input_rows topn_threshold
// uses when deciding whether a Sort above a Limit is worth replacing with a
// bounded TopN (spec §4.6 "Sort elimination").
const SortEliminationThreshold = 0.10

// SortEliminationLargeInputRows is the row count above which TopN is
// considered regardless of the limit/input_rows ratio.
const SortEliminationLargeInputRows = 10000

// SortCostFunc estimates the cost of fully sorting or of a bounded TopN
// over inputRows rows for k sort keys, supplied by the engine from
// internal/costmodel.
type SortCostFunc func(inputRows float64, k, limit int) (sortCost, topNCost float64)

// SortEliminationOptimizer decides whether a Sort sitting above a Limit is
// worth rewriting to TopN. It is a thin cost-comparison gate on top of
// TopNIntroductionRule's structural rewrite: TopNIntroductionRule always
// rewrites the shape, and after the phases have run the engine consults
// ShouldEliminate to decide which of the two alternatives to keep.
type SortEliminationOptimizer struct {
	Cost SortCostFunc
}

// ShouldEliminate reports whether Sort(items) above Limit(offset=0,
// count=limit) over inputRows input rows should become TopN.
func (o SortEliminationOptimizer) ShouldEliminate(inputRows float64, limit, k int) bool {
	if inputRows <= 0 {
		return false
	}
	withinRatio := float64(limit) < SortEliminationThreshold*inputRows
	if !withinRatio && inputRows <= SortEliminationLargeInputRows {
		return false
	}
	if o.Cost == nil {
		return true
	}
	sortCost, topNCost := o.Cost(inputRows, k, limit)
	return topNCost < sortCost
}
