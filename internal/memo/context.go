package memo

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

// MaxRecursionDepth bounds memo-construction and extraction recursion
// (spec §5 max_recursion_depth).
const MaxRecursionDepth = 512

// OptContext owns everything scoped to one optimization run: the memo
// itself, the id counter, the group-member pool, the dirty/changed flag,
// a per-table stats cache populated lazily, and the runtime-feedback
// table. It is created fresh per optimize() call and is never shared
// across goroutines (spec §5) — it needs no internal locking beyond the
// per-table stats cache, which is read from multiple rule goroutines in
// principle even though the current engine is single-threaded.
type OptContext struct {
	groups    map[GroupID]*OptGroup
	members   map[int64]*OptGroupNode
	rootGroup GroupID
	nextID    int64
	pool      *Pool
	changed   bool
	Feedback  *FeedbackStats

	statsMu    sync.Mutex
	statsCache map[string]any
}

// NewOptContext returns an empty context backed by a pool capped at
// poolCap idle members.
func NewOptContext(poolCap int) *OptContext {
	return &OptContext{
		groups:     make(map[GroupID]*OptGroup),
		members:    make(map[int64]*OptGroupNode),
		pool:       NewPool(poolCap),
		Feedback:   NewFeedbackStats(),
		statsCache: make(map[string]any),
	}
}

// NextID issues the next unique id shared across groups and members.
func (c *OptContext) NextID() int64 {
	c.nextID++
	return c.nextID
}

// RootGroup returns the id of the plan's root group.
func (c *OptContext) RootGroup() GroupID { return c.rootGroup }

// Group returns the group with id, if it still exists.
func (c *OptContext) Group(id GroupID) (*OptGroup, bool) {
	g, ok := c.groups[id]
	return g, ok
}

// Member returns the group-member with id, if it still exists.
func (c *OptContext) Member(id int64) (*OptGroupNode, bool) {
	m, ok := c.members[id]
	return m, ok
}

// NewGroup allocates a fresh, empty group.
func (c *OptContext) NewGroup() *OptGroup {
	g := newGroup(GroupID(c.NextID()))
	c.groups[g.id] = g
	return g
}

// AddMember wraps planNode into a new group-member with the given child
// group ids and installs it into the group identified by groupID,
// creating the group if it doesn't exist yet. This is BuildMemo's "parent's
// dependencies list receives the child's group id" step, and is also how
// a rule's new_group_nodes are installed into an existing group.
func (c *OptContext) AddMember(groupID GroupID, planNode planir.PlanNode, deps []GroupID) *OptGroupNode {
	g, ok := c.groups[groupID]
	if !ok {
		g = newGroup(groupID)
		c.groups[groupID] = g
	}
	m := c.pool.Get()
	m.id = c.NextID()
	m.groupID = groupID
	m.planNode = planNode
	m.dependencies = append(m.dependencies[:0], deps...)
	m.hash = StructuralHash(planNode.Kind(), deps)
	g.addMember(m)
	c.members[m.id] = m
	for _, d := range deps {
		if dg, ok := c.groups[d]; ok {
			dg.refCount++
		}
	}
	return m
}

// AddLoopBodies records the loop-body group ids on a Loop group-member.
func (c *OptContext) AddLoopBodies(memberID int64, bodies []GroupID) {
	if m, ok := c.members[memberID]; ok {
		m.loopBodies = append(m.loopBodies, bodies...)
	}
}

// RearmGroup clears every rule's explored flag on groupID's group and
// every member in it, so subsequent rule passes re-examine the group now
// that it has a new member (spec §4.2, §4.5).
func (c *OptContext) RearmGroup(groupID GroupID) {
	g, ok := c.groups[groupID]
	if !ok {
		return
	}
	g.Rearm()
	for k := range g.members {
		for rk := range g.members[k].explored {
			delete(g.members[k].explored, rk)
		}
	}
}

// EraseMember removes memberID from its owning group only — other groups
// that reference the same underlying node (they don't; nodes are owned by
// exactly one member) are unaffected, matching spec §4.2's erase_curr
// semantics.
func (c *OptContext) EraseMember(memberID int64) {
	m, ok := c.members[memberID]
	if !ok {
		return
	}
	if g, ok := c.groups[m.groupID]; ok {
		g.removeMember(memberID)
	}
	delete(c.members, memberID)
	c.pool.Put(m)
}

// EraseAllExcept removes every member of groupID's group whose id is not
// in keep, implementing erase_all.
func (c *OptContext) EraseAllExcept(groupID GroupID, keep map[int64]bool) {
	g, ok := c.groups[groupID]
	if !ok {
		return
	}
	ids := append([]int64(nil), g.order...)
	for _, id := range ids {
		if keep[id] {
			continue
		}
		c.EraseMember(id)
	}
}

// SetChanged marks the current round as having produced a change.
func (c *OptContext) SetChanged() { c.changed = true }

// Changed reports whether SetChanged has been called since the last
// ResetChanged.
func (c *OptContext) Changed() bool { return c.changed }

// ResetChanged clears the changed flag at the start of each iteration
// round.
func (c *OptContext) ResetChanged() { c.changed = false }

// CacheStat lazily populates and returns a per-table stats-cache entry
// keyed by name, invoking compute only on a cache miss.
func (c *OptContext) CacheStat(name string, compute func() any) any {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if v, ok := c.statsCache[name]; ok {
		return v
	}
	v := compute()
	c.statsCache[name] = v
	return v
}

// GroupCount returns the number of live groups.
func (c *OptContext) GroupCount() int { return len(c.groups) }

// MemberCount returns the number of live group-members across every
// group.
func (c *OptContext) MemberCount() int { return len(c.members) }

// AllGroups returns every live group id sorted ascending by id (i.e.
// allocation order), so that callers iterating every group — the engine's
// physical-phase analyzers among them — observe the same order on every
// run over identical input (spec.md's ordering guarantee).
func (c *OptContext) AllGroups() []GroupID {
	out := make([]GroupID, 0, len(c.groups))
	for id := range c.groups {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var errRootGroupMissing = fmt.Errorf("memo: failed to resolve root group after build")
