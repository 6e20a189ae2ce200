package planvalidate

import (
	"testing"

	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

func TestValidateAcceptsWellFormedPlan(t *testing.T) {
	scan := planir.NewScanVertices(1, "v", "person", []string{"id", "age"})
	filter, err := planir.NewFilter(2, "v", scan, &planir.BinaryExpr{
		Op: planir.OpGt, Left: &planir.ColumnRef{Name: "age"}, Right: &planir.Literal{Value: 18},
	}, []string{"id", "age"})
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	if err := Validate(filter, nil); err != nil {
		t.Fatalf("Validate: unexpected error %v", err)
	}
}

func TestValidateRejectsUnknownColumnReference(t *testing.T) {
	scan := planir.NewScanVertices(1, "v", "person", []string{"id", "age"})
	filter, err := planir.NewFilter(2, "v", scan, &planir.BinaryExpr{
		Op: planir.OpGt, Left: &planir.ColumnRef{Name: "nonexistent"}, Right: &planir.Literal{Value: 18},
	}, []string{"id", "age"})
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	if err := Validate(filter, nil); err == nil {
		t.Fatalf("expected Validate to reject a predicate referencing an unknown column")
	}
}

func TestValidateRejectsNegativeCost(t *testing.T) {
	scan := planir.NewScanVertices(1, "v", "person", []string{"id"})
	cost := func(id int64) (float64, bool) {
		if id == 1 {
			return -5, true
		}
		return 0, false
	}
	if err := Validate(scan, cost); err == nil {
		t.Fatalf("expected Validate to reject a negative cached cost")
	}
}

func TestValidateAcceptsSelectWithOneBranch(t *testing.T) {
	then := planir.NewPassThrough(1)
	sel, err := planir.NewSelect(2, "v", nil, then, nil, nil)
	if err != nil {
		t.Fatalf("NewSelect: %v", err)
	}
	// NewSelect already refuses a Select with neither branch, so that case
	// cannot be built from outside planir; this checks that a Select with
	// one branch passes.
	if err := Validate(sel, nil); err != nil {
		t.Fatalf("Validate: unexpected error on a select with one branch: %v", err)
	}
}

func TestValidateRejectsAggregateWithEmptyFunctionName(t *testing.T) {
	scan := planir.NewScanVertices(1, "v", "person", []string{"id", "age"})
	agg, err := planir.NewAggregate(2, "v", scan, []string{"age"}, []planir.AggFunc{{Name: "", Arg: "id"}}, []string{"age"})
	if err != nil {
		t.Fatalf("NewAggregate: %v", err)
	}
	if err := Validate(agg, nil); err == nil {
		t.Fatalf("expected Validate to reject an aggregate function with an empty name")
	}
}
