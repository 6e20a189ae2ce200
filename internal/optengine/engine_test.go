package optengine

import (
	"context"
	"testing"
	"time"

	"github.com/kkkqkx123/graphdb-optimizer/internal/gstats"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

type fakeSchema struct{}

func (fakeSchema) TagExists(string) bool      { return true }
func (fakeSchema) EdgeTypeExists(string) bool { return true }

type fakeIndexes struct {
	byTag map[string][]IndexInfo
}

func (f fakeIndexes) IndexesForTag(tag string) []IndexInfo { return f.byTag[tag] }
func (f fakeIndexes) IndexVersion() int64                  { return 1 }
func (f fakeIndexes) KnownTags() []string {
	tags := make([]string, 0, len(f.byTag))
	for t := range f.byTag {
		tags = append(tags, t)
	}
	return tags
}

type fakeQueryContext struct {
	stats   *gstats.StatisticsManager
	indexes fakeIndexes
}

func (q *fakeQueryContext) SpaceID() int64                          { return 1 }
func (q *fakeQueryContext) Schema() SchemaManager                   { return fakeSchema{} }
func (q *fakeQueryContext) Indexes() IndexMetadataManager            { return q.indexes }
func (q *fakeQueryContext) Stats() gstats.Reader                     { return q.stats }
func (q *fakeQueryContext) Deadline() (time.Time, bool)              { return time.Time{}, false }

func newFakeQueryContext() *fakeQueryContext {
	s := gstats.NewStatisticsManager()
	s.RegisterTagID(1, "person")
	s.RefreshTagStats(gstats.TagStatistics{Name: "person", VertexCount: 1_000_000})
	return &fakeQueryContext{stats: s, indexes: fakeIndexes{byTag: map[string][]IndexInfo{}}}
}

func mustFilter(t *testing.T, id int64, input planir.PlanNode, cond planir.Expr) *planir.Filter {
	t.Helper()
	f, err := planir.NewFilter(id, "v", input, cond, []string{"id", "age"})
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	return f
}

func ageGt(v int) planir.Expr {
	return &planir.BinaryExpr{Op: planir.OpGt, Left: &planir.ColumnRef{Name: "age"}, Right: &planir.Literal{Value: v}}
}

func TestOptimizeCombinesStackedFilters(t *testing.T) {
	scan := planir.NewScanVertices(1, "v", "person", []string{"id", "age"})
	inner := mustFilter(t, 2, scan, ageGt(18))
	outer := mustFilter(t, 3, inner, ageGt(21))

	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	result, err := engine.Optimize(context.Background(), outer, newFakeQueryContext())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	filtersSeen := 0
	planir.WalkPostOrder(result.Plan, 64, func(n planir.PlanNode) error {
		if _, ok := n.(*planir.Filter); ok {
			filtersSeen++
		}
		return nil
	})
	if filtersSeen != 1 {
		t.Fatalf("expected the two stacked filters to combine into one, found %d", filtersSeen)
	}
}

func TestOptimizeReturnsValidPlanForBareScan(t *testing.T) {
	scan := planir.NewScanVertices(1, "v", "person", []string{"id"})

	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	result, err := engine.Optimize(context.Background(), scan, newFakeQueryContext())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if result.Plan == nil {
		t.Fatalf("expected a non-nil plan")
	}
	if _, ok := result.Plan.(*planir.ScanVertices); !ok {
		t.Fatalf("expected the bare scan to survive unchanged, got %T", result.Plan)
	}
}

func TestOptimizeRespectsDisabledRules(t *testing.T) {
	scan := planir.NewScanVertices(1, "v", "person", []string{"id", "age"})
	inner := mustFilter(t, 2, scan, ageGt(18))
	outer := mustFilter(t, 3, inner, ageGt(21))

	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()
	engine.OptConfig.DisabledRules = append(engine.OptConfig.DisabledRules, "CombineFilter")

	result, err := engine.Optimize(context.Background(), outer, newFakeQueryContext())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	filtersSeen := 0
	planir.WalkPostOrder(result.Plan, 64, func(n planir.PlanNode) error {
		if _, ok := n.(*planir.Filter); ok {
			filtersSeen++
		}
		return nil
	})
	if filtersSeen != 2 {
		t.Fatalf("expected disabling combine_filter to leave both filters, found %d", filtersSeen)
	}
}

func TestOptimizeDeadlineTruncates(t *testing.T) {
	scan := planir.NewScanVertices(1, "v", "person", []string{"id", "age"})
	inner := mustFilter(t, 2, scan, ageGt(18))
	outer := mustFilter(t, 3, inner, ageGt(21))

	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Optimize(ctx, outer, newFakeQueryContext())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if !result.Truncated {
		t.Fatalf("expected Optimize to report truncation when ctx is already cancelled")
	}
	if result.Plan == nil {
		t.Fatalf("expected a plan to still be extracted from the untouched memo")
	}
}

// countNodes returns the number of plan nodes reachable from root.
func countNodes(t *testing.T, root planir.PlanNode) int {
	t.Helper()
	n := 0
	if err := planir.WalkPostOrder(root, 64, func(planir.PlanNode) error {
		n++
		return nil
	}); err != nil {
		t.Fatalf("WalkPostOrder: %v", err)
	}
	return n
}

// TestOptimizeIsRepeatable exercises spec §8 scenario 5 ("decision cache
// consistency"): optimizing the same shape twice against unchanged
// stats/index versions must record exactly one miss (the first call) and
// one hit (the second), no evictions, and return plans of equal size and
// (since costing is a pure function of plan shape and versioned stats)
// therefore equal total cost.
func TestOptimizeIsRepeatable(t *testing.T) {
	scan := planir.NewScanVertices(1, "v", "person", []string{"id", "age"})
	f := mustFilter(t, 2, scan, ageGt(18))

	engine, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer engine.Close()

	qctx := newFakeQueryContext()
	first, err := engine.Optimize(context.Background(), f, qctx)
	if err != nil {
		t.Fatalf("first Optimize: %v", err)
	}
	engine.Cache.Wait()

	second, err := engine.Optimize(context.Background(), f, qctx)
	if err != nil {
		t.Fatalf("second Optimize: %v", err)
	}
	if second.Plan == nil {
		t.Fatalf("expected a plan on the cached-key path too")
	}
	if !second.FromCache {
		t.Fatalf("expected the second Optimize call to report a decision-cache hit")
	}

	stats := engine.Cache.StatsSnapshot()
	if stats.Hits != 1 {
		t.Fatalf("cache Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Fatalf("cache Misses = %d, want 1", stats.Misses)
	}
	if stats.Evictions != 0 {
		t.Fatalf("cache Evictions = %d, want 0", stats.Evictions)
	}

	if got, want := countNodes(t, second.Plan), countNodes(t, first.Plan); got != want {
		t.Fatalf("second Optimize node count = %d, want %d (same as first)", got, want)
	}
}
