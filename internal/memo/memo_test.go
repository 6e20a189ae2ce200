package memo

import (
	"testing"

	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

func buildScanFilterLimit(t *testing.T) planir.PlanNode {
	t.Helper()
	scan := planir.NewScanVertices(1, "v", "person", []string{"id", "age"})
	filter, err := planir.NewFilter(2, "v", scan, &planir.BinaryExpr{
		Op: planir.OpGt, Left: &planir.ColumnRef{Name: "age"}, Right: &planir.Literal{Value: 18},
	}, []string{"id", "age"})
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	limit, err := planir.NewLimit(3, "v", filter, 0, 10, []string{"id", "age"})
	if err != nil {
		t.Fatalf("NewLimit: %v", err)
	}
	return limit
}

func TestBuildMemoProducesOneGroupPerNode(t *testing.T) {
	plan := buildScanFilterLimit(t)
	ctx, err := BuildMemo(plan, 0)
	if err != nil {
		t.Fatalf("BuildMemo: %v", err)
	}
	if got := ctx.GroupCount(); got != 3 {
		t.Fatalf("GroupCount() = %d, want 3", got)
	}
	if got := ctx.MemberCount(); got != 3 {
		t.Fatalf("MemberCount() = %d, want 3", got)
	}

	root, ok := ctx.Group(ctx.RootGroup())
	if !ok || !root.IsRoot() {
		t.Fatalf("expected root group to be marked as root")
	}
	members := root.Members()
	if len(members) != 1 {
		t.Fatalf("expected singleton root group, got %d members", len(members))
	}
	if _, ok := members[0].PlanNode().(*planir.Limit); !ok {
		t.Fatalf("expected root member to wrap the Limit node")
	}
	if len(members[0].Dependencies()) != 1 {
		t.Fatalf("expected Limit member to have exactly one dependency group")
	}
}

func TestAddMemberRearmsGroup(t *testing.T) {
	plan := buildScanFilterLimit(t)
	ctx, err := BuildMemo(plan, 0)
	if err != nil {
		t.Fatalf("BuildMemo: %v", err)
	}
	root, _ := ctx.Group(ctx.RootGroup())
	root.MarkExplored("SomeRule")
	if !root.Explored("SomeRule") {
		t.Fatalf("expected group marked explored")
	}

	alt, err := planir.NewLimit(99, "v", plan.(*planir.Limit).Input(), 0, 5, []string{"id", "age"})
	if err != nil {
		t.Fatalf("NewLimit: %v", err)
	}
	ctx.AddMember(root.ID(), alt, root.Members()[0].Dependencies())
	ctx.RearmGroup(root.ID())

	if root.Explored("SomeRule") {
		t.Fatalf("expected Rearm to clear the group's explored flags")
	}
	if len(root.Members()) != 2 {
		t.Fatalf("expected two members in root group after AddMember, got %d", len(root.Members()))
	}
}

func TestEraseMemberOnlyAffectsOwningGroup(t *testing.T) {
	plan := buildScanFilterLimit(t)
	ctx, err := BuildMemo(plan, 0)
	if err != nil {
		t.Fatalf("BuildMemo: %v", err)
	}
	root, _ := ctx.Group(ctx.RootGroup())
	memberID := root.Members()[0].ID()

	ctx.EraseMember(memberID)

	if len(root.Members()) != 0 {
		t.Fatalf("expected root group empty after erasing its only member")
	}
	if ctx.GroupCount() != 3 {
		t.Fatalf("expected other groups untouched, GroupCount() = %d", ctx.GroupCount())
	}
}

func TestHasMemberLikeDetectsDuplicates(t *testing.T) {
	plan := buildScanFilterLimit(t)
	ctx, err := BuildMemo(plan, 0)
	if err != nil {
		t.Fatalf("BuildMemo: %v", err)
	}
	root, _ := ctx.Group(ctx.RootGroup())
	member := root.Members()[0]

	if !root.HasMemberLike(member.PlanNode().Kind(), member.Dependencies()) {
		t.Fatalf("expected HasMemberLike to recognize the existing member")
	}
	if root.HasMemberLike(planir.KindScanEdges, member.Dependencies()) {
		t.Fatalf("expected HasMemberLike to reject a different kind with the same dependencies")
	}
}

func TestFeedbackCalibration(t *testing.T) {
	f := NewFeedbackStats()
	if got := f.CalibratedRowEstimate(1, 100); got != 100 {
		t.Fatalf("with no feedback, CalibratedRowEstimate(1, 100) = %v, want 100", got)
	}

	f.UpdateActualRowCount(1, 150, 100)
	if got := f.CalibratedRowEstimate(1, 100); got != 150 {
		t.Fatalf("with recorded actual, CalibratedRowEstimate(1, 100) = %v, want 150", got)
	}
	if got := f.CalibratedRowEstimate(2, 100); got <= 100 {
		t.Fatalf("expected calibration factor > 1 after systematic under-estimate, got %v", got)
	}
}
