package rule

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

// NewGroupNode is one replacement plan node a rule wants installed into a
// group, alongside the dependency groups it should reference.
type NewGroupNode struct {
	Node         planir.PlanNode
	Dependencies []memo.GroupID
}

// TransformResult is everything a rule's Apply may ask the engine to do to
// the memo as a result of firing on one member (spec §4.4). Every field is
// optional; the engine combines whichever are set.
type TransformResult struct {
	// NewGroupNodes are new members to install into the triggering
	// member's group.
	NewGroupNodes []NewGroupNode
	// EraseCurr removes the triggering member from its group.
	EraseCurr bool
	// EraseAll removes every member of the group except the ones just
	// installed by NewGroupNodes.
	EraseAll bool
	// NewDependencies are extra child group ids to append to the
	// triggering member in place, without replacing it.
	NewDependencies []memo.GroupID
}

// IsEmpty reports whether the result asks the engine to do nothing, the
// in-memory equivalent of a rule returning None.
func (r *TransformResult) IsEmpty() bool {
	return r == nil || (len(r.NewGroupNodes) == 0 && !r.EraseCurr && !r.EraseAll && len(r.NewDependencies) == 0)
}

// AlreadyPresent reports whether groupID's group already holds a member
// shaped like (node.Kind(), deps) — the check every rule performs before
// proposing a new member, so it never reintroduces one already present
// (spec §4.5's termination guarantee).
func AlreadyPresent(ctx *memo.OptContext, groupID memo.GroupID, node planir.PlanNode, deps []memo.GroupID) bool {
	g, ok := ctx.Group(groupID)
	if !ok {
		return false
	}
	return g.HasMemberLike(node.Kind(), deps)
}

// Rule is the contract every optimizer rule implements (spec §4.4): a
// stable Name, a structural Pattern used as a cheap prefilter, and Apply,
// which re-checks any non-structural precondition and produces the actual
// transformation.
type Rule interface {
	Name() Name
	Pattern() *MatchNode
	Apply(ctx *memo.OptContext, member *memo.OptGroupNode) (*TransformResult, error)
}
