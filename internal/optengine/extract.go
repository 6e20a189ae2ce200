package optengine

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planvalidate"
)

// extracted is one group's chosen plan and its cumulative cost, cached so
// a group referenced from more than one parent is only resolved once.
type extracted struct {
	node planir.PlanNode
	cost float64
}

// OwnCoster computes a single member's own execution cost, excluding its
// dependencies' cumulative cost. *CostEstimator (cost.go) is the concrete
// implementation the engine wires in.
type OwnCoster interface {
	OwnCost(ctx *memo.OptContext, member *memo.OptGroupNode) float64
}

// extractor walks the memo from the root group, picking each group's best
// member (spec §4.5's extraction phase) and rebuilding a concrete plan
// tree from the chosen members. Dependencies().GroupID is authoritative
// over a member's own embedded child pointer, which may reference a node
// superseded during search — so every chosen member's node is
// reconstructed with withChildren against whatever its children's groups
// actually extracted to.
type extractor struct {
	ctx             *memo.OptContext
	cache           map[memo.GroupID]*extracted
	visited         map[memo.GroupID]bool
	enableMultiPlan bool
}

// Extract returns the best full plan rooted at ctx's root group: the
// cheapest member of every group when enableMultiPlan is true (spec §6's
// enable_multi_plan), or each group's first-discovered member otherwise —
// grounded on the source's OptGroup::get_best_node(enable_multi_plan),
// which falls back to Vec::first() rather than a cost comparison.
func Extract(ctx *memo.OptContext, calc OwnCoster, enableMultiPlan bool) (planir.PlanNode, error) {
	ex := &extractor{ctx: ctx, cache: make(map[memo.GroupID]*extracted), visited: make(map[memo.GroupID]bool), enableMultiPlan: enableMultiPlan}
	root := ctx.RootGroup()
	if _, ok := ctx.Group(root); !ok {
		return nil, errNoViablePlan("memo has no root group")
	}
	result, err := ex.extractGroup(root, calc)
	if err != nil {
		return nil, err
	}
	if err := planvalidate.Validate(result.node, func(nodeID int64) (float64, bool) {
		return ex.costByNodeID(nodeID)
	}); err != nil {
		return nil, errInvalidPlanStructure(err)
	}
	return result.node, nil
}

func (ex *extractor) costByNodeID(nodeID int64) (float64, bool) {
	for _, e := range ex.cache {
		if e.node.ID() == nodeID {
			return e.cost, true
		}
	}
	return 0, false
}

func (ex *extractor) extractGroup(gid memo.GroupID, calc OwnCoster) (*extracted, error) {
	if cached, ok := ex.cache[gid]; ok {
		return cached, nil
	}
	if ex.visited[gid] {
		return nil, errCycle(int64(gid))
	}
	ex.visited[gid] = true
	defer delete(ex.visited, gid)

	group, ok := ex.ctx.Group(gid)
	if !ok {
		return nil, errGroupNotFound(int64(gid))
	}
	members := group.Members()
	if len(members) == 0 {
		return nil, errNoViablePlan("group has no members")
	}

	var best *extracted
	var bestMember *memo.OptGroupNode
	for _, member := range members {
		childExtractions := make([]*extracted, len(member.Dependencies()))
		for i, dep := range member.Dependencies() {
			childResult, err := ex.extractGroup(dep, calc)
			if err != nil {
				return nil, err
			}
			childExtractions[i] = childResult
		}

		total := calc.OwnCost(ex.ctx, member)
		children := make([]planir.PlanNode, len(childExtractions))
		for i, c := range childExtractions {
			total += c.cost
			children[i] = c.node
		}

		rebuilt, err := withChildren(member.PlanNode(), children)
		if err != nil {
			return nil, errInvalidPlanStructure(err)
		}

		if best == nil || (ex.enableMultiPlan && total < best.cost) {
			best = &extracted{node: rebuilt, cost: total}
			bestMember = member
		}
	}
	if bestMember != nil {
		bestMember.SetCost(best.cost)
	}
	ex.cache[gid] = best
	return best, nil
}

// withChildren rebuilds node with children substituted for whatever
// planir.Children(node) originally returned, preserving every kind-
// specific field via node's own accessors. Leaf kinds pass through
// unchanged since they carry no memo dependencies.
func withChildren(node planir.PlanNode, children []planir.PlanNode) (planir.PlanNode, error) {
	switch n := node.(type) {
	// Leaves: nothing to rebuild.
	case *planir.Start, *planir.ScanVertices, *planir.ScanEdges, *planir.IndexScan,
		*planir.EdgeIndexScan, *planir.FulltextIndexScan, *planir.GetVertices,
		*planir.GetEdges, *planir.GetNeighbors, *planir.Argument, *planir.PassThrough,
		*planir.ShortestPath, *planir.AllPaths:
		return node, nil

	case *planir.Project:
		return planir.NewProject(n.ID(), n.OutputVar(), children[0], n.Items, n.ColNames())
	case *planir.Filter:
		return planir.NewFilter(n.ID(), n.OutputVar(), children[0], n.Condition, n.ColNames())
	case *planir.Sort:
		return planir.NewSort(n.ID(), n.OutputVar(), children[0], n.Items, n.ColNames())
	case *planir.Limit:
		return planir.NewLimit(n.ID(), n.OutputVar(), children[0], n.Offset, n.Count, n.ColNames())
	case *planir.TopN:
		return planir.NewTopN(n.ID(), n.OutputVar(), children[0], n.Limit, n.Items, n.ColNames())
	case *planir.Sample:
		return planir.NewSample(n.ID(), n.OutputVar(), children[0], n.Count, n.ColNames())
	case *planir.Aggregate:
		agg, err := planir.NewAggregate(n.ID(), n.OutputVar(), children[0], n.GroupKeys, n.AggFunctions, n.ColNames())
		if err != nil {
			return nil, err
		}
		agg.InputSorted = n.InputSorted
		return agg, nil
	case *planir.Dedup:
		return planir.NewDedup(n.ID(), n.OutputVar(), children[0], n.ColNames())
	case *planir.Unwind:
		return planir.NewUnwind(n.ID(), n.OutputVar(), children[0], n.Expr, n.Alias, n.ColNames())
	case *planir.DataCollect:
		return planir.NewDataCollect(n.ID(), n.OutputVar(), children[0], n.CollectType, n.ColNames())
	case *planir.Union:
		return planir.NewUnion(n.ID(), n.OutputVar(), children[0], n.ColNames())
	case *planir.Assign:
		return planir.NewAssign(n.ID(), n.OutputVar(), children[0], n.Var, n.Expr, n.ColNames())
	case *planir.PatternApply:
		// Subplan is not part of Children() (it is not a memo
		// dependency), so it carries over unchanged.
		return planir.NewPatternApply(n.ID(), n.OutputVar(), children[0], n.Subplan, n.ColNames())
	case *planir.RollUpApply:
		return planir.NewRollUpApply(n.ID(), n.OutputVar(), children[0], n.Subplan, n.CollectVar, n.ColNames())
	case *planir.Traverse:
		tr, err := planir.NewTraverse(n.ID(), n.OutputVar(), children[0], n.EdgeTypes, n.Direction, n.MaxSteps, n.ColNames())
		if err != nil {
			return nil, err
		}
		tr.EFilter = n.EFilter
		tr.VFilter = n.VFilter
		return tr, nil

	case *planir.InnerJoin:
		return planir.NewInnerJoin(n.ID(), n.OutputVar(), children[0], children[1], n.HashKeys, n.ProbeKeys, n.ColNames())
	case *planir.LeftJoin:
		return planir.NewLeftJoin(n.ID(), n.OutputVar(), children[0], children[1], n.HashKeys, n.ProbeKeys, n.ColNames())
	case *planir.CrossJoin:
		return planir.NewCrossJoin(n.ID(), n.OutputVar(), children[0], children[1], n.ColNames())
	case *planir.HashInnerJoin:
		return planir.NewHashInnerJoin(n.ID(), n.OutputVar(), children[0], children[1], n.HashKeys, n.ProbeKeys, n.ColNames())
	case *planir.HashLeftJoin:
		return planir.NewHashLeftJoin(n.ID(), n.OutputVar(), children[0], children[1], n.HashKeys, n.ProbeKeys, n.ColNames())
	case *planir.FullOuterJoin:
		return planir.NewFullOuterJoin(n.ID(), n.OutputVar(), children[0], children[1], n.HashKeys, n.ProbeKeys, n.ColNames())
	case *planir.Minus:
		return planir.NewMinus(n.ID(), n.OutputVar(), children[0], children[1], n.ColNames())
	case *planir.Intersect:
		return planir.NewIntersect(n.ID(), n.OutputVar(), children[0], children[1], n.ColNames())

	case *planir.Expand:
		return planir.NewExpand(n.ID(), n.OutputVar(), children, n.EdgeTypes, n.Direction, n.ColNames())
	case *planir.ExpandAll:
		return planir.NewExpandAll(n.ID(), n.OutputVar(), children, n.EdgeTypes, n.Direction, n.MaxSteps, n.ColNames())
	case *planir.AppendVertices:
		av, err := planir.NewAppendVertices(n.ID(), n.OutputVar(), children, n.ColNames())
		if err != nil {
			return nil, err
		}
		av.Props = n.Props
		return av, nil

	case *planir.Select:
		var thenC, elsC planir.PlanNode
		idx := 0
		if n.Then() != nil {
			thenC = children[idx]
			idx++
		}
		if n.Else() != nil {
			elsC = children[idx]
			idx++
		}
		return planir.NewSelect(n.ID(), n.OutputVar(), n.Condition, thenC, elsC, n.ColNames())
	case *planir.Loop:
		return planir.NewLoop(n.ID(), n.OutputVar(), n.Condition, children[0], n.ColNames())

	case *planir.DDLPassthrough:
		var in planir.PlanNode
		if len(children) > 0 {
			in = children[0]
		}
		return planir.NewDDLPassthrough(n.ID(), n.Kind(), in, n.ColNames()), nil
	}
	return nil, errUnsupportedOperation(node.Kind().String())
}
