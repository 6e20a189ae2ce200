// Package rule defines the pattern-matching and transformation contract
// every optimizer rule implements (spec §4.4).
package rule

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

// MatchNode is one node in a pattern tree: it constrains the plan-node kind
// at this position and, optionally, the shape of each dependency group. A
// nil Dependencies slot (via Any) means "match regardless of this child
// group's contents".
type MatchNode struct {
	Kind         planir.Kind
	Dependencies []*MatchNode
}

// Leaf returns a MatchNode that only constrains the node's kind.
func Leaf(kind planir.Kind) *MatchNode {
	return &MatchNode{Kind: kind}
}

// Pattern returns a MatchNode whose root is kind and whose dependency
// groups must each contain at least one member matching the corresponding
// entry of deps.
func Pattern(kind planir.Kind, deps ...*MatchNode) *MatchNode {
	return &MatchNode{Kind: kind, Dependencies: deps}
}

// Any matches a dependency group regardless of its members' shape.
func Any() *MatchNode { return nil }

// Matches reports whether member's wrapped node and its dependency groups
// satisfy the pattern rooted at m. Each dependency sub-pattern is checked
// recursively against the members of its group — matching is structural only
// (spec §4.4); predicates on constants/expressions are re-checked inside
// Apply.
func Matches(ctx *memo.OptContext, m *MatchNode, member *memo.OptGroupNode) bool {
	if m == nil {
		return true
	}
	if member == nil || member.PlanNode() == nil || member.PlanNode().Kind() != m.Kind {
		return false
	}
	if len(m.Dependencies) == 0 {
		return true
	}
	deps := member.Dependencies()
	for i, dep := range m.Dependencies {
		if dep == nil {
			continue
		}
		if i >= len(deps) {
			return false
		}
		if !groupHasMatch(ctx, dep, deps[i]) {
			return false
		}
	}
	return true
}

// groupHasMatch reports whether at least one member of the group gid
// matches the sub-pattern dep.
func groupHasMatch(ctx *memo.OptContext, dep *MatchNode, gid memo.GroupID) bool {
	_, ok := FindMatch(ctx, dep, gid)
	return ok
}

// FindMatch returns the first member of group gid whose shape matches dep,
// used by concrete rules to fetch a concrete plan node for a dependency
// they have already structurally confirmed via their own Pattern.
func FindMatch(ctx *memo.OptContext, dep *MatchNode, gid memo.GroupID) (*memo.OptGroupNode, bool) {
	g, ok := ctx.Group(gid)
	if !ok {
		return nil, false
	}
	for _, m := range g.Members() {
		if Matches(ctx, dep, m) {
			return m, true
		}
	}
	return nil, false
}
