// Package rules implements the concrete rule families of spec §4.6, one
// file per family, registered into an internal/rule.Registry by
// RegisterAll.
package rules

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// soleDependency returns the only dependency group id of member, or false
// if it has a different arity.
func soleDependency(member *memo.OptGroupNode) (memo.GroupID, bool) {
	deps := member.Dependencies()
	if len(deps) != 1 {
		return 0, false
	}
	return deps[0], true
}

// collapseToChild proposes, for every member of the group at childGID,
// installing an equivalent alternative directly into the parent's own
// group — the standard memo "skip a redundant operator" move: the parent
// group gains a member identical to one of its child's, so cost-based
// extraction can pick whichever is cheaper (usually the shorter one).
func collapseToChild(ctx *memo.OptContext, parentGroupID, childGID memo.GroupID) *rule.TransformResult {
	childGroup, ok := ctx.Group(childGID)
	if !ok {
		return nil
	}
	var out []rule.NewGroupNode
	for _, cm := range childGroup.Members() {
		deps := cm.Dependencies()
		if rule.AlreadyPresent(ctx, parentGroupID, cm.PlanNode(), deps) {
			continue
		}
		out = append(out, rule.NewGroupNode{Node: cm.PlanNode(), Dependencies: deps})
	}
	if len(out) == 0 {
		return nil
	}
	return &rule.TransformResult{NewGroupNodes: out}
}

// representative returns some member's plan node from group gid, used when
// a rule needs a concrete PlanNode value to satisfy a constructor's
// non-nil-input validation without that value otherwise participating in
// the memo (the group id in NewGroupNode.Dependencies is what actually
// matters to the memo).
func representative(ctx *memo.OptContext, gid memo.GroupID) (planir.PlanNode, bool) {
	g, ok := ctx.Group(gid)
	if !ok || len(g.Members()) == 0 {
		return nil, false
	}
	return g.Members()[0].PlanNode(), true
}

// single wraps a one-element NewGroupNode result, returning nil when the
// proposed member already exists in the group (the termination
// guarantee every rule observes).
func single(ctx *memo.OptContext, groupID memo.GroupID, node planir.PlanNode, deps []memo.GroupID) *rule.TransformResult {
	if rule.AlreadyPresent(ctx, groupID, node, deps) {
		return nil
	}
	return &rule.TransformResult{NewGroupNodes: []rule.NewGroupNode{{Node: node, Dependencies: deps}}}
}

// RowEstimator supplies a group's estimated output row count, used by the
// join-algorithm and join-ordering rules to apply spec §4.6's cardinality
// thresholds. The engine wires in an implementation backed by
// internal/costmodel and internal/gstats; rules never import those
// packages directly, keeping the dependency direction one-way.
type RowEstimator interface {
	EstimateRows(ctx *memo.OptContext, gid memo.GroupID) float64
}

// newGroupFor allocates a fresh group holding exactly node as its sole
// member, used when a rule introduces a brand-new intermediate
// subexpression (e.g. a predicate pushed one level down) that needs its
// own group id to serve as a dependency of the rule's top-level result.
func newGroupFor(ctx *memo.OptContext, node planir.PlanNode, deps []memo.GroupID) memo.GroupID {
	g := ctx.NewGroup()
	ctx.AddMember(g.ID(), node, deps)
	return g.ID()
}
