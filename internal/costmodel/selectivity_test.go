package costmodel

import (
	"testing"

	"github.com/kkkqkx123/graphdb-optimizer/internal/gstats"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

func statsWithAge() gstats.Reader {
	m := gstats.NewStatisticsManager()
	m.RefreshPropertyStats(gstats.PropertyStatistics{TagName: "person", Property: "age", DistinctVals: 50, NullFraction: 0.1})
	m.RefreshPropertyStats(gstats.PropertyStatistics{TagName: "person", Property: "score", DistinctVals: 1000, NullFraction: 0})
	return m
}

func TestSelectivityEquality(t *testing.T) {
	est := NewSelectivityEstimator(statsWithAge())
	e := &planir.BinaryExpr{Op: planir.OpEq, Left: &planir.ColumnRef{Name: "age"}, Right: &planir.Literal{Value: 18}}
	got := est.Estimate("person", e)
	want := 1.0 / 50.0
	if got != want {
		t.Errorf("Estimate() = %v, want %v", got, want)
	}
}

func TestSelectivityUnknownEquality(t *testing.T) {
	est := NewSelectivityEstimator(statsWithAge())
	e := &planir.BinaryExpr{Op: planir.OpEq, Left: &planir.ColumnRef{Name: "unknown_col"}, Right: &planir.Literal{Value: 1}}
	if got := est.Estimate("person", e); got != unknownEqualitySelectivity {
		t.Errorf("Estimate() = %v, want %v", got, unknownEqualitySelectivity)
	}
}

func TestSelectivityAndComposesAsProduct(t *testing.T) {
	est := NewSelectivityEstimator(statsWithAge())
	a := &planir.BinaryExpr{Op: planir.OpEq, Left: &planir.ColumnRef{Name: "age"}, Right: &planir.Literal{Value: 18}}
	b := &planir.BinaryExpr{Op: planir.OpEq, Left: &planir.ColumnRef{Name: "score"}, Right: &planir.Literal{Value: 90}}
	and := &planir.BinaryExpr{Op: planir.OpAnd, Left: a, Right: b}

	got := est.Estimate("person", and)
	want := est.Estimate("person", a) * est.Estimate("person", b)
	if got != want {
		t.Errorf("Estimate(AND) = %v, want %v", got, want)
	}
}

func TestSelectivityNot(t *testing.T) {
	est := NewSelectivityEstimator(statsWithAge())
	a := &planir.BinaryExpr{Op: planir.OpEq, Left: &planir.ColumnRef{Name: "age"}, Right: &planir.Literal{Value: 18}}
	not := &planir.UnaryExpr{Op: planir.OpNot, Operand: a}
	got := est.Estimate("person", not)
	want := 1 - est.Estimate("person", a)
	if got != want {
		t.Errorf("Estimate(NOT) = %v, want %v", got, want)
	}
}
