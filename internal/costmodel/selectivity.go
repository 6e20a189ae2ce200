package costmodel

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/gstats"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

const (
	unknownEqualitySelectivity = 0.1
	unknownRangeSelectivity    = 0.33
	rangeSelectivity           = 0.25
)

// SelectivityEstimator derives a predicate's selectivity from property
// statistics (spec §4.3).
type SelectivityEstimator struct {
	Stats gstats.Reader
}

// NewSelectivityEstimator returns an estimator over stats.
func NewSelectivityEstimator(stats gstats.Reader) *SelectivityEstimator {
	return &SelectivityEstimator{Stats: stats}
}

// Estimate returns the estimated selectivity (in [0,1]) of e, evaluated
// against the property statistics of tag (tag == "" for an edge-type
// predicate).
func (s *SelectivityEstimator) Estimate(tag string, e planir.Expr) float64 {
	switch n := e.(type) {
	case *planir.BinaryExpr:
		switch n.Op {
		case planir.OpAnd:
			return s.Estimate(tag, n.Left) * s.Estimate(tag, n.Right)
		case planir.OpOr:
			p1 := s.Estimate(tag, n.Left)
			p2 := s.Estimate(tag, n.Right)
			return p1 + p2 - p1*p2
		case planir.OpEq:
			return s.equality(tag, n)
		default:
			if n.Op.IsRange() {
				return s.rangeSel(tag, n)
			}
			return unknownEqualitySelectivity
		}
	case *planir.UnaryExpr:
		switch n.Op {
		case planir.OpNot:
			return 1 - s.Estimate(tag, n.Operand)
		case planir.OpIsNull:
			return s.isNull(tag, n.Operand)
		}
	}
	return unknownEqualitySelectivity
}

func (s *SelectivityEstimator) propertyOf(tag string, e planir.Expr) (*gstats.PropertyStatistics, bool) {
	cols := planir.ColumnsReferenced(e)
	if len(cols) == 0 || s.Stats == nil {
		return nil, false
	}
	return s.Stats.GetPropertyStats(tag, cols[0])
}

func (s *SelectivityEstimator) equality(tag string, e *planir.BinaryExpr) float64 {
	stat, ok := s.propertyOf(tag, e)
	if !ok || stat.DistinctVals <= 0 {
		return unknownEqualitySelectivity
	}
	return 1.0 / float64(stat.DistinctVals)
}

func (s *SelectivityEstimator) rangeSel(tag string, e *planir.BinaryExpr) float64 {
	if _, ok := s.propertyOf(tag, e); !ok {
		return unknownRangeSelectivity
	}
	return rangeSelectivity
}

func (s *SelectivityEstimator) isNull(tag string, operand planir.Expr) float64 {
	stat, ok := s.propertyOf(tag, operand)
	if !ok {
		return unknownEqualitySelectivity
	}
	return stat.NullFraction
}
