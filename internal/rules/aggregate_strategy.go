package rules

import "github.com/kkkqkx123/graphdb-optimizer/internal/planir"

// AggregateStrategy is the physical execution strategy
// AggregateStrategySelector chooses for an Aggregate node. It is an alias
// of planir.AggregateStrategy so the selector's return value can be
// written directly onto the Aggregate node the engine is annotating.
type AggregateStrategy = planir.AggregateStrategy

const (
	StreamingAggregate = planir.StreamingAggregate
	HashAggregate      = planir.HashAggregate
	SortAggregate      = planir.SortAggregate
)

// AggregateStrategySelector implements spec §4.6's aggregate-strategy
// decision table. It is invoked directly by the optimizer engine during
// the physical phase rather than registered as a memo pattern rule, since
// its decision depends on a memory budget and a cost comparison that fall
// outside the pattern/Apply contract.
type AggregateStrategySelector struct {
	MemoryLimitBytes float64
	Cost             AggregateCostFunc
}

// AggregateCostFunc estimates the execution cost of running strategy over
// an Aggregate with the given input row count and group cardinality,
// supplied by the engine from internal/costmodel so this package never
// imports it directly.
type AggregateCostFunc func(strategy AggregateStrategy, inputRows, cardinality float64, groupKeys, aggs int) float64

// Select returns the strategy for agg given inputRows (Input's estimated
// row count).
func (s AggregateStrategySelector) Select(agg *planir.Aggregate, inputRows float64) AggregateStrategy {
	if agg.InputSorted {
		return StreamingAggregate
	}
	for _, f := range agg.AggFunctions {
		if !f.Deterministic {
			return HashAggregate
		}
	}
	k := len(agg.GroupKeys)
	if k < 1 {
		k = 1
	}
	cardinality := clamp(inputRows/pow2(k), 10, inputRows)

	hashMemory := cardinality * (16*float64(len(agg.GroupKeys)) + 24*float64(len(agg.AggFunctions)) + 16)
	if s.MemoryLimitBytes > 0 && hashMemory > s.MemoryLimitBytes {
		return SortAggregate
	}

	if inputRows < 1000 {
		return HashAggregate
	}

	if cardinality < 100 {
		if s.Cost == nil {
			return SortAggregate
		}
		sortCost := s.Cost(SortAggregate, inputRows, cardinality, len(agg.GroupKeys), len(agg.AggFunctions))
		hashCost := s.Cost(HashAggregate, inputRows, cardinality, len(agg.GroupKeys), len(agg.AggFunctions))
		if sortCost <= 1.2*hashCost {
			return SortAggregate
		}
		return cheaper(sortCost, hashCost)
	}

	if cardinality > inputRows/10 {
		return HashAggregate
	}

	if s.Cost == nil {
		return HashAggregate
	}
	sortCost := s.Cost(SortAggregate, inputRows, cardinality, len(agg.GroupKeys), len(agg.AggFunctions))
	hashCost := s.Cost(HashAggregate, inputRows, cardinality, len(agg.GroupKeys), len(agg.AggFunctions))
	return cheaper(sortCost, hashCost)
}

func cheaper(sortCost, hashCost float64) AggregateStrategy {
	if sortCost < hashCost {
		return SortAggregate
	}
	return HashAggregate
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func pow2(k int) float64 {
	r := 1.0
	for i := 0; i < k; i++ {
		r *= 2
	}
	return r
}
