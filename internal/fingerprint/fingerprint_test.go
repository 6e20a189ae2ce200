package fingerprint

import (
	"testing"

	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

func scanFilter(t *testing.T, age int) planir.PlanNode {
	t.Helper()
	scan := planir.NewScanVertices(1, "v", "person", []string{"id", "age"})
	filter, err := planir.NewFilter(2, "v", scan, &planir.BinaryExpr{
		Op: planir.OpGt, Left: &planir.ColumnRef{Name: "age"}, Right: &planir.Literal{Value: age},
	}, []string{"id", "age"})
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	return filter
}

func TestOfIgnoresLiteralValues(t *testing.T) {
	a := Of(scanFilter(t, 18))
	b := Of(scanFilter(t, 99))
	if a != b {
		t.Fatalf("expected fingerprints to collide across differing literal values: %d != %d", a, b)
	}
}

func TestOfDistinguishesShape(t *testing.T) {
	scan := planir.NewScanVertices(1, "v", "person", []string{"id", "age"})
	a := Of(scan)

	edges := planir.NewScanEdges(1, "v", "knows", []string{"id"})
	b := Of(edges)

	if a == b {
		t.Fatalf("expected different node kinds to produce different fingerprints")
	}
}

func TestCombinedVariesWithInputs(t *testing.T) {
	a := Combined("tmpl1", "space1", "MATCH")
	b := Combined("tmpl2", "space1", "MATCH")
	if a == b {
		t.Fatalf("expected different inputs to produce different combined fingerprints")
	}
}
