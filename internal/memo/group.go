// Package memo implements the deduplicated search space the optimizer
// explores: groups of equivalent subplans (spec §4.2).
package memo

import "github.com/kkkqkx123/graphdb-optimizer/internal/planir"

// GroupID identifies one equivalence class of subplans.
type GroupID int64

// OptGroup is a set of mutually equivalent group-members discovered so
// far for one logical subplan position.
type OptGroup struct {
	id       GroupID
	isRoot   bool
	members  map[int64]*OptGroupNode
	order    []int64 // member ids in insertion order, for deterministic Members()
	explored map[string]bool // rules that have fully explored every member
	visited  bool             // transient, reset at the start of each traversal
	refCount int              // number of parents referencing this group
}

// ID returns the group's stable id.
func (g *OptGroup) ID() GroupID { return g.id }

// IsRoot reports whether this is the plan's root group.
func (g *OptGroup) IsRoot() bool { return g.isRoot }

// Members returns the group's members in insertion order, so that rule
// application and extraction observe the same order on every run over
// identical input (spec.md's "same input ... always yields the same
// output" ordering guarantee).
func (g *OptGroup) Members() []*OptGroupNode {
	out := make([]*OptGroupNode, 0, len(g.order))
	for _, id := range g.order {
		if m, ok := g.members[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

// addMember installs m into the group's map and records its id at the end
// of the insertion-order slice.
func (g *OptGroup) addMember(m *OptGroupNode) {
	g.members[m.id] = m
	g.order = append(g.order, m.id)
}

// removeMember deletes id from the group's map and insertion-order slice.
func (g *OptGroup) removeMember(id int64) {
	if _, ok := g.members[id]; !ok {
		return
	}
	delete(g.members, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// Explored reports whether rule has already fully explored this group.
func (g *OptGroup) Explored(rule string) bool { return g.explored[rule] }

// MarkExplored records that rule has fully explored this group.
func (g *OptGroup) MarkExplored(rule string) { g.explored[rule] = true }

// Rearm clears every rule's explored flag for this group, done whenever a
// rule introduces a new member so later rules observe it (spec §4.2).
func (g *OptGroup) Rearm() {
	for k := range g.explored {
		delete(g.explored, k)
	}
}

// Visited / SetVisited implement the transient single-traversal visited
// bit described in spec §3; SetVisited(false) clears it.
func (g *OptGroup) Visited() bool    { return g.visited }
func (g *OptGroup) SetVisited(v bool) { g.visited = v }

// RefCount returns how many parents currently reference this group via a
// dependencies entry.
func (g *OptGroup) RefCount() int { return g.refCount }

// HasMemberLike reports whether this group already has a member with the
// given kind and dependency group ids, the structural-equality check every
// rule must perform before proposing a new member so it never reintroduces
// an already-present one (spec §4.5's termination guarantee).
func (g *OptGroup) HasMemberLike(kind planir.Kind, deps []GroupID) bool {
	h := StructuralHash(kind, deps)
	for _, m := range g.members {
		if m.hash == h && m.planNode.Kind() == kind && sameDeps(m.dependencies, deps) {
			return true
		}
	}
	return false
}

func newGroup(id GroupID) *OptGroup {
	return &OptGroup{id: id, members: make(map[int64]*OptGroupNode), explored: make(map[string]bool)}
}
