// Package optengine implements the optimizer's three-phase driver (spec
// §4.5): it builds a memo from an input plan, runs the rewrite, logical,
// and physical phases to convergence, and extracts the cheapest concrete
// plan. OptimizerEngine is the long-lived, concurrency-safe entry point;
// everything else in this package is plumbing one call to Optimize wires
// together.
package optengine

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kkkqkx123/graphdb-optimizer/internal/costmodel"
	"github.com/kkkqkx123/graphdb-optimizer/internal/doccache"
	"github.com/kkkqkx123/graphdb-optimizer/internal/fingerprint"
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/optlog"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rules"
)

var tracer = otel.Tracer("graphdb-optimizer/internal/optengine")

// memoPoolCap bounds the object pool BuildMemo uses while walking the
// input plan (spec §5's object-pool cap resource limit).
const memoPoolCap = 4096

// Result is everything one Optimize call returns beyond the chosen plan:
// diagnostics a caller may want to log or surface, per spec §8. Decision
// is the same value stored in the decision cache for this run's key, so
// callers and tests can inspect exactly what the physical phase chose
// without re-deriving it from Plan.
type Result struct {
	Plan          planir.PlanNode
	Warnings      []string
	Truncated     bool
	FromCache     bool
	CorrelationID string
	Elapsed       time.Duration
	Decision      *doccache.Decision
}

// OptimizerEngine holds everything shared across concurrent Optimize
// calls: the cost-model and optimization configs, the decision cache, and
// the logger. It is safe for concurrent use; Optimize builds a fresh memo
// and rule registry per call so no mutable optimization state is shared
// across queries.
type OptimizerEngine struct {
	CostConfig *costmodel.Config
	OptConfig  *OptimizationConfig
	Cache      *doccache.DecisionCache
	Log        *optlog.Logger
}

// NewEngine returns an engine with default cost and optimization configs
// and a fresh decision cache, logging to optlog.Default().
func NewEngine() (*OptimizerEngine, error) {
	cache, err := doccache.New(0, 0)
	if err != nil {
		return nil, fmt.Errorf("optengine: creating decision cache: %w", err)
	}
	return &OptimizerEngine{
		CostConfig: costmodel.Default(),
		OptConfig:  Default(),
		Cache:      cache,
		Log:        optlog.Default(),
	}, nil
}

// Close releases the engine's decision cache.
func (e *OptimizerEngine) Close() {
	if e.Cache != nil {
		e.Cache.Close()
	}
}

// Optimize runs the three-phase driver over plan and returns the cheapest
// rewritten plan (spec §4.1's optimize() entry point). It consults the
// decision cache first; a hit is logged (so it is observable to callers
// inspecting diagnostics) but the driver still recomputes the plan from
// the memo, since replaying a cached Decision directly against a fresh
// memo without re-running the phases is not implemented.
func (e *OptimizerEngine) Optimize(ctx context.Context, plan planir.PlanNode, qctx QueryContext) (*Result, error) {
	runID := uuid.NewString()
	start := time.Now()

	spanCtx, span := tracer.Start(ctx, "optengine.Optimize",
		trace.WithAttributes(attribute.String("optengine.run_id", runID)))
	defer span.End()

	stats := qctx.Stats()
	key := fingerprint.Combined(fmt.Sprintf("space:%d", qctx.SpaceID()), fmt.Sprintf("shape:%d", fingerprint.Of(plan)))
	statsVersion := stats.Version()
	indexVersion := qctx.Indexes().IndexVersion()

	cached, fromCache, err := e.lookupDecision(spanCtx, key, statsVersion, indexVersion)
	if err != nil {
		e.Log.RuleFailed("decision_cache", 0, err)
	}
	if fromCache && cached != nil {
		e.Log.Printf("run=%s decision cache hit: rewrite_rules=%v join_order=%v index_selection=%v traversal_start=%q",
			runID, cached.RewriteRules, cached.JoinOrder, cached.IndexSelection, cached.TraversalStart)
	}

	result, decision, runErr := e.run(spanCtx, runID, plan, qctx)
	if runErr != nil {
		return nil, runErr
	}
	result.FromCache = fromCache
	result.Elapsed = time.Since(start)

	decision.StatsVersion = statsVersion
	decision.IndexVersion = indexVersion
	decision.CreatedAtUnixMS = time.Now().UnixMilli()
	result.Decision = decision
	e.storeDecision(key, decision)

	e.Log.Printf("run=%s optimize done: elapsed=%s warnings=%d truncated=%v rules_fired=%d stats_version=%s",
		runID, result.Elapsed, len(result.Warnings), result.Truncated, len(decision.RewriteRules),
		humanize.Comma(int64(stats.Version())))
	return result, nil
}

func (e *OptimizerEngine) lookupDecision(ctx context.Context, key uint64, statsVersion, indexVersion int64) (*doccache.Decision, bool, error) {
	_, span := tracer.Start(ctx, "optengine.decisionCacheLookup")
	defer span.End()
	if e.Cache == nil {
		return nil, false, nil
	}
	d, ok := e.Cache.Get(key, statsVersion, indexVersion)
	return d, ok, nil
}

func (e *OptimizerEngine) storeDecision(key uint64, decision *doccache.Decision) {
	if e.Cache == nil || decision == nil {
		return
	}
	e.Cache.Set(key, decision, decision.StatsVersion, decision.IndexVersion)
}

// run builds a fresh memo and rule registry for plan and drives it through
// the rewrite/logical/physical phases, applying the direct-invocation
// analyzers (spec §4.6) during the physical phase, then extracts the
// cheapest plan and assembles the Decision spec §4.7 describes caching.
func (e *OptimizerEngine) run(ctx context.Context, runID string, plan planir.PlanNode, qctx QueryContext) (*Result, *doccache.Decision, error) {
	mctx, err := memo.BuildMemo(plan, memoPoolCap)
	if err != nil {
		return nil, nil, errInvalidPlanStructure(err)
	}

	calc := costmodel.NewCalculator(e.CostConfig, qctx.Stats())
	rows := &RowEstimator{Stats: qctx.Stats(), Selectivity: costmodel.NewSelectivityEstimator(qctx.Stats())}

	reg := rule.NewRegistry()
	if err := rules.RegisterAll(reg, rows, indexCandidates(qctx.Indexes())); err != nil {
		return nil, nil, fmt.Errorf("optengine: registering rules: %w", err)
	}

	warnings := make([]string, 0)
	var fired []rule.Name
	deadlineExceeded := deadlineCheck(ctx, qctx)

	_, span := tracer.Start(ctx, "optengine.phases")
	truncated, err := RunPhases(mctx, reg, e.OptConfig, deadlineExceeded, &warnings, &fired)
	span.End()
	if err != nil {
		e.Log.RuleFailed("phase_driver", int64(mctx.RootGroup()), err)
		return nil, nil, err
	}

	joinOrder := e.applyPhysicalAnalyzers(mctx, calc, rows)

	_, extractSpan := tracer.Start(ctx, "optengine.extract")
	estimator := &CostEstimator{Calc: calc, Rows: rows, EnableCostModel: e.OptConfig.EnableCostModel}
	extracted, err := Extract(mctx, estimator, e.OptConfig.EnableMultiPlan)
	extractSpan.End()
	if err != nil {
		return nil, nil, err
	}

	decision := &doccache.Decision{
		TraversalStart: firstTraversalStart(extracted),
		IndexSelection: collectIndexSelection(extracted),
		JoinOrder:      joinOrder,
		RewriteRules:   fired,
	}

	return &Result{
		Plan:          extracted,
		Warnings:      warnings,
		Truncated:     truncated,
		CorrelationID: runID,
	}, decision, nil
}

// applyPhysicalAnalyzers invokes the four analyzers spec §4.6 describes as
// consulted directly by the engine rather than pattern-matched (spec
// §4.6, rules/registry.go's doc comment), mutating the memo so each
// decision is actually observable in the extracted plan instead of being
// computed and discarded:
//
//   - AggregateStrategySelector's choice is written onto the Aggregate
//     node's Strategy field.
//   - TraversalDirectionOptimizer's choice is written onto the Traverse
//     node's Direction field.
//   - SortEliminationOptimizer's verdict decides, per group, which of the
//     Limit(Sort(...)) or TopN(...) alternatives TopNIntroductionRule left
//     behind survives extraction; the loser is erased from the memo
//     outright rather than left for cost comparison to (maybe) prefer.
//   - JoinOrder's decision over each binary join's two input relations is
//     collected into the ordered variable list returned, which becomes
//     the cached Decision's JoinOrder field.
func (e *OptimizerEngine) applyPhysicalAnalyzers(ctx *memo.OptContext, calc *costmodel.Calculator, rows *RowEstimator) []string {
	sortElim := rules.SortEliminationOptimizer{
		Cost: func(inputRows float64, k, limit int) (float64, float64) {
			return calc.SortCost(inputRows, k), calc.TopNCost(inputRows, limit)
		},
	}
	aggSelector := rules.AggregateStrategySelector{
		MemoryLimitBytes: 256 << 20,
		Cost: func(strategy rules.AggregateStrategy, inputRows, cardinality float64, groupKeys, aggs int) float64 {
			switch strategy {
			case rules.SortAggregate:
				return calc.SortCost(inputRows, groupKeys)
			default:
				return calc.FilterCost(inputRows, aggs) + cardinality*0.02
			}
		},
	}
	travDir := rules.TraversalDirectionOptimizer{SuperNodeThreshold: 10000}

	var joinOrder []string
	seenVar := make(map[string]bool)

	for _, gid := range ctx.AllGroups() {
		g, ok := ctx.Group(gid)
		if !ok {
			continue
		}
		e.resolveSortElimination(ctx, g, sortElim, rows)
		for _, m := range g.Members() {
			switch n := m.PlanNode().(type) {
			case *planir.Aggregate:
				deps := m.Dependencies()
				if len(deps) != 1 {
					continue
				}
				inputRows := rows.EstimateRows(ctx, deps[0])
				n.Strategy = aggSelector.Select(n, inputRows)
			case *planir.Traverse:
				decision := travDir.Choose(calc.AvgOutDegree(firstEdgeType(n.EdgeTypes)), calc.AvgInDegree(firstEdgeType(n.EdgeTypes)))
				n.Direction = decision.Direction
			case *planir.InnerJoin, *planir.LeftJoin, *planir.CrossJoin, *planir.HashInnerJoin, *planir.HashLeftJoin:
				deps := m.Dependencies()
				if len(deps) != 2 {
					continue
				}
				decision := rules.JoinOrder(ctx, deps, rows)
				for _, rel := range decision.Relations {
					v, ok := representativeVar(ctx, rel)
					if !ok || seenVar[v] {
						continue
					}
					seenVar[v] = true
					joinOrder = append(joinOrder, v)
				}
			}
		}
	}
	return joinOrder
}

// resolveSortElimination looks for TopNIntroductionRule's two surviving
// alternatives within g (a Limit(offset=0) over a Sort, and the TopN it
// was rewritten to) and erases whichever SortEliminationOptimizer rejects,
// so only one physical shape reaches extraction. Groups with no such pair
// are left untouched.
func (e *OptimizerEngine) resolveSortElimination(ctx *memo.OptContext, g *memo.OptGroup, sortElim rules.SortEliminationOptimizer, rows *RowEstimator) {
	var limitMember *memo.OptGroupNode
	var sortNode *planir.Sort
	var sortInputGID memo.GroupID
	var topNMember *memo.OptGroupNode
	var topNNode *planir.TopN

	for _, m := range g.Members() {
		switch n := m.PlanNode().(type) {
		case *planir.Limit:
			if n.Offset != 0 {
				continue
			}
			deps := m.Dependencies()
			if len(deps) != 1 {
				continue
			}
			sortGroup, ok := ctx.Group(deps[0])
			if !ok {
				continue
			}
			for _, sm := range sortGroup.Members() {
				s, ok := sm.PlanNode().(*planir.Sort)
				if !ok {
					continue
				}
				sdeps := sm.Dependencies()
				if len(sdeps) != 1 {
					continue
				}
				limitMember, sortNode, sortInputGID = m, s, sdeps[0]
			}
		case *planir.TopN:
			topNMember, topNNode = m, n
		}
	}

	if limitMember == nil || topNMember == nil || sortNode == nil {
		return
	}

	inputRows := rows.EstimateRows(ctx, sortInputGID)
	if sortElim.ShouldEliminate(inputRows, topNNode.Limit, len(sortNode.Items)) {
		ctx.EraseMember(limitMember.ID())
	} else {
		ctx.EraseMember(topNMember.ID())
	}
}

func representativeVar(ctx *memo.OptContext, gid memo.GroupID) (string, bool) {
	g, ok := ctx.Group(gid)
	if !ok {
		return "", false
	}
	members := g.Members()
	if len(members) == 0 {
		return "", false
	}
	return members[0].PlanNode().OutputVar(), true
}

// firstTraversalStart returns the output variable Traverse reads its
// starting vertex set from, for the first Traverse node reached in a
// post-order walk of plan (the deepest, and so earliest-executing, one).
// Returns "" for a plan with no traversal, which is a legitimate value,
// not a placeholder for a value that couldn't be derived.
func firstTraversalStart(plan planir.PlanNode) string {
	if plan == nil {
		return ""
	}
	start := ""
	_ = planir.WalkPostOrder(plan, memo.MaxRecursionDepth, func(n planir.PlanNode) error {
		if start != "" {
			return nil
		}
		if t, ok := n.(*planir.Traverse); ok {
			start = t.Input().OutputVar()
		}
		return nil
	})
	return start
}

// collectIndexSelection walks plan for every index-scan kind and records
// which index id was chosen to produce each output variable (spec §4.7's
// index_selection decision field).
func collectIndexSelection(plan planir.PlanNode) map[string]int64 {
	out := make(map[string]int64)
	if plan == nil {
		return out
	}
	_ = planir.WalkPostOrder(plan, memo.MaxRecursionDepth, func(n planir.PlanNode) error {
		switch idx := n.(type) {
		case *planir.IndexScan:
			out[idx.OutputVar()] = idx.IndexID
		case *planir.EdgeIndexScan:
			out[idx.OutputVar()] = idx.IndexID
		case *planir.FulltextIndexScan:
			out[idx.OutputVar()] = idx.IndexID
		}
		return nil
	})
	return out
}

func firstEdgeType(types []string) string {
	if len(types) == 0 {
		return ""
	}
	return types[0]
}

// indexCandidates adapts a QueryContext's IndexMetadataManager into the
// map rules.RegisterAll's IndexScanRule expects, keyed by tag.
func indexCandidates(idx IndexMetadataManager) map[string][]rules.IndexCandidate {
	out := make(map[string][]rules.IndexCandidate)
	if idx == nil {
		return out
	}
	for _, tag := range knownTagsFromIndexes(idx) {
		for _, info := range idx.IndexesForTag(tag) {
			out[tag] = append(out[tag], rules.IndexCandidate{
				IndexID:        info.IndexID,
				IndexedColumns: info.IndexedColumns,
				ReturnColumns:  info.ReturnColumns,
			})
		}
	}
	return out
}

// knownTagsFromIndexes has no generic way to enumerate every tag an
// IndexMetadataManager knows about from the interface alone; callers that
// need cross-tag index discovery implement TagEnumerator in addition to
// IndexMetadataManager. Without it, indexCandidates returns an empty map
// and IndexScanRule simply finds no candidates, falling back to full
// scans (spec §4.6 "no usable index").
func knownTagsFromIndexes(idx IndexMetadataManager) []string {
	if te, ok := idx.(TagEnumerator); ok {
		return te.KnownTags()
	}
	return nil
}

// TagEnumerator is an optional extension to IndexMetadataManager letting
// the engine discover every tag with at least one index, so it can build
// the full per-tag candidate map RegisterAll needs up front.
type TagEnumerator interface {
	KnownTags() []string
}

// deadlineCheck adapts qctx's optional deadline and ctx's cancellation
// into the func() bool RunPhases polls between phases and rule
// applications (spec §5).
func deadlineCheck(ctx context.Context, qctx QueryContext) func() bool {
	deadline, ok := qctx.Deadline()
	return func() bool {
		if ctx.Err() != nil {
			return true
		}
		if ok && time.Now().After(deadline) {
			return true
		}
		return false
	}
}
