package memo

import "github.com/kkkqkx123/graphdb-optimizer/internal/planir"

// OptGroupNode (OptGroupNode in spec §3) is one concrete plan-node
// representation inside a group. Its children are referenced by *group*
// id, not by node id, so the memo can share subplans without structural
// cycles (spec §9's "shared subtrees" design note).
type OptGroupNode struct {
	id           int64
	groupID      GroupID
	planNode     planir.PlanNode
	dependencies []GroupID
	loopBodies   []GroupID // only populated for Loop nodes
	cost         float64
	costValid    bool
	explored     map[string]bool
	hash         uint64
}

// ID returns the group-member's stable id.
func (n *OptGroupNode) ID() int64 { return n.id }

// GroupID returns the id of the group that owns this member.
func (n *OptGroupNode) GroupID() GroupID { return n.groupID }

// PlanNode returns the wrapped plan node.
func (n *OptGroupNode) PlanNode() planir.PlanNode { return n.planNode }

// Dependencies returns the child group ids, in the wrapped node's input
// order.
func (n *OptGroupNode) Dependencies() []GroupID { return append([]GroupID(nil), n.dependencies...) }

// LoopBodies returns the loop-body group ids for a Loop node member (nil
// for every other kind).
func (n *OptGroupNode) LoopBodies() []GroupID { return append([]GroupID(nil), n.loopBodies...) }

// Cost returns the member's cached cumulative cost and whether it has been
// computed yet.
func (n *OptGroupNode) Cost() (float64, bool) { return n.cost, n.costValid }

// SetCost caches cost as this member's cumulative cost.
func (n *OptGroupNode) SetCost(cost float64) {
	n.cost = cost
	n.costValid = true
}

// Explored reports whether rule has already examined this specific
// member.
func (n *OptGroupNode) Explored(rule string) bool { return n.explored[rule] }

// MarkExplored records that rule has examined this member and found it
// inapplicable (or already transformed).
func (n *OptGroupNode) MarkExplored(rule string) { n.explored[rule] = true }

func newGroupNode(id int64, planNode planir.PlanNode, deps []GroupID) *OptGroupNode {
	return &OptGroupNode{id: id, planNode: planNode, dependencies: deps, explored: make(map[string]bool)}
}

// reset clears a group-member for reuse from the object pool.
func (n *OptGroupNode) reset() {
	n.id = 0
	n.groupID = 0
	n.planNode = nil
	n.dependencies = n.dependencies[:0]
	n.loopBodies = n.loopBodies[:0]
	n.cost = 0
	n.costValid = false
	n.hash = 0
	for k := range n.explored {
		delete(n.explored, k)
	}
}
