package rule

import (
	"testing"

	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

func TestMatchesStructuralPrefilter(t *testing.T) {
	scan := planir.NewScanVertices(1, "v", "person", []string{"id"})
	filter, err := planir.NewFilter(2, "v", scan, &planir.Literal{Value: true}, []string{"id"})
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	ctx, err := memo.BuildMemo(filter, 0)
	if err != nil {
		t.Fatalf("BuildMemo: %v", err)
	}
	root, _ := ctx.Group(ctx.RootGroup())
	member := root.Members()[0]

	p := Pattern(planir.KindFilter, Leaf(planir.KindScanVertices))
	if !Matches(ctx, p, member) {
		t.Fatalf("expected Filter(ScanVertices) to match")
	}

	wrong := Pattern(planir.KindFilter, Leaf(planir.KindScanEdges))
	if Matches(ctx, wrong, member) {
		t.Fatalf("expected Filter(ScanEdges) not to match a Filter(ScanVertices) member")
	}

	if !Matches(ctx, Pattern(planir.KindFilter, Any()), member) {
		t.Fatalf("expected a wildcard dependency to match any child shape")
	}
}

func TestRegistryRejectsUnknownAndDuplicateNames(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(PhaseLogical, fakeRule{name: Name("NotARealRule")}); err == nil {
		t.Fatalf("expected an error registering an unrecognized rule name")
	}
	if err := reg.Register(PhaseLogical, fakeRule{name: NameCombineFilter}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := reg.Register(PhaseRewrite, fakeRule{name: NameCombineFilter}); err == nil {
		t.Fatalf("expected an error registering a duplicate rule name")
	}
	if got := reg.ForPhase(PhaseLogical); len(got) != 1 {
		t.Fatalf("ForPhase(PhaseLogical) = %d rules, want 1", len(got))
	}
}

type fakeRule struct{ name Name }

func (f fakeRule) Name() Name         { return f.name }
func (f fakeRule) Pattern() *MatchNode { return nil }
func (f fakeRule) Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*TransformResult, error) {
	return nil, nil
}
