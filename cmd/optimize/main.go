package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/kkkqkx123/graphdb-optimizer/internal/gstats"
	"github.com/kkkqkx123/graphdb-optimizer/internal/optengine"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: optimize <command> [args]")
		fmt.Println("Commands:")
		fmt.Println("  demo          - Optimize a sample query plan and print before/after")
		fmt.Println("  config <path> - Validate an optimization config file (TOML or YAML)")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "demo":
		runDemo()
	case "config":
		if len(os.Args) < 3 {
			fmt.Println("Usage: optimize config <path>")
			os.Exit(1)
		}
		runConfigCheck(os.Args[2])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func runDemo() {
	fmt.Println("=== Optimizer Demo ===")
	fmt.Println()

	plan := samplePlan()
	fmt.Println("Input plan:")
	describePlan(os.Stdout, plan, 0)
	fmt.Println()

	stats := sampleStats()

	engine, err := optengine.NewEngine()
	if err != nil {
		log.Fatalf("creating engine: %v", err)
	}
	defer engine.Close()

	qctx := &demoQueryContext{spaceID: 1, stats: stats}

	start := time.Now()
	result, err := engine.Optimize(context.Background(), plan, qctx)
	if err != nil {
		log.Fatalf("optimize failed: %v", err)
	}

	fmt.Printf("Optimized plan (%s):\n", time.Since(start))
	describePlan(os.Stdout, result.Plan, 0)
	fmt.Println()
	if len(result.Warnings) > 0 {
		fmt.Println("Warnings:")
		for _, w := range result.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}

func runConfigCheck(path string) {
	cfg, err := optengine.LoadOptimizationConfig(path)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	fmt.Printf("config ok: max_iteration_rounds=%d min_iteration_rounds=%d max_exploration_rounds=%d adaptive=%v\n",
		cfg.MaxIterationRounds, cfg.MinIterationRounds, cfg.MaxExplorationRounds, cfg.EnableAdaptiveIteration)
}

// samplePlan builds ScanVertices(person) -> Filter(age > 30) -> Project(name),
// a small shape the rewrite rules can still act on (filter pushdown has
// nothing below it here, and IndexScanRule would replace the scan only if
// a candidate index were registered, which demoQueryContext below does not
// do).
func samplePlan() planir.PlanNode {
	scan := planir.NewScanVertices(1, "p", "person", []string{"p"})
	cond := planir.BinaryExpr{
		Op:    planir.OpGt,
		Left:  planir.ColumnRef{Name: "p.age"},
		Right: planir.Literal{Value: 30},
	}
	filter, err := planir.NewFilter(2, "p", scan, cond, []string{"p"})
	if err != nil {
		log.Fatalf("building filter: %v", err)
	}
	project, err := planir.NewProject(3, "p", filter, []planir.ProjectItem{
		{Expr: planir.ColumnRef{Name: "p.name"}, Alias: "name"},
	}, []string{"name"})
	if err != nil {
		log.Fatalf("building project: %v", err)
	}
	return project
}

func sampleStats() *gstats.StatisticsManager {
	s := gstats.NewStatisticsManager()
	s.RegisterTagID(1, "person")
	s.RefreshTagStats(gstats.TagStatistics{Name: "person", VertexCount: 1_000_000})
	return s
}

// describePlan prints a minimal indented tree of node kinds and output
// variables, enough for demo inspection without pulling in a full plan
// formatter.
func describePlan(w io.Writer, node planir.PlanNode, depth int) {
	if node == nil {
		return
	}
	fmt.Fprintf(w, "%s%s(%s)\n", indent(depth), node.Kind(), node.OutputVar())
	for _, c := range planir.Children(node) {
		describePlan(w, c, depth+1)
	}
}

func indent(depth int) string {
	b := make([]byte, depth*2)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// demoQueryContext is the minimal optengine.QueryContext this CLI needs;
// it has no schema or index catalog wired in, so IndexScanRule simply
// finds no candidates and the scan stays sequential.
type demoQueryContext struct {
	spaceID int64
	stats   *gstats.StatisticsManager
}

func (q *demoQueryContext) SpaceID() int64 { return q.spaceID }

func (q *demoQueryContext) Schema() optengine.SchemaManager { return noopSchema{} }

func (q *demoQueryContext) Indexes() optengine.IndexMetadataManager { return noopIndexes{} }

func (q *demoQueryContext) Stats() gstats.Reader { return q.stats }

func (q *demoQueryContext) Deadline() (time.Time, bool) { return time.Time{}, false }

type noopSchema struct{}

func (noopSchema) TagExists(string) bool      { return true }
func (noopSchema) EdgeTypeExists(string) bool { return true }

type noopIndexes struct{}

func (noopIndexes) IndexesForTag(string) []optengine.IndexInfo { return nil }
func (noopIndexes) IndexVersion() int64                        { return 1 }
