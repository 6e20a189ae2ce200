package memo

import (
	"fmt"

	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

// BuildMemo walks root post-order and constructs a fresh memo: every node
// becomes a singleton group with one group-member wrapping it, and every
// parent's dependencies list is rewritten to point at its children's
// group ids (spec §4.2 "Construction").
func BuildMemo(root planir.PlanNode, poolCap int) (*OptContext, error) {
	if root == nil {
		return nil, fmt.Errorf("memo: cannot build from a nil plan")
	}
	ctx := NewOptContext(poolCap)
	groupOf := make(map[planir.PlanNode]GroupID)

	err := planir.WalkPostOrder(root, MaxRecursionDepth, func(n planir.PlanNode) error {
		children := planir.Children(n)
		deps := make([]GroupID, 0, len(children))
		for _, c := range children {
			gid, ok := groupOf[c]
			if !ok {
				return fmt.Errorf("memo: no group built yet for child node id %d", c.ID())
			}
			deps = append(deps, gid)
		}

		g := ctx.NewGroup()
		member := ctx.AddMember(g.ID(), n, deps)

		if loop, ok := n.(*planir.Loop); ok {
			if bodyGID, ok := groupOf[loop.Body()]; ok {
				ctx.AddLoopBodies(member.ID(), []GroupID{bodyGID})
			}
		}

		groupOf[n] = g.ID()
		return nil
	})
	if err != nil {
		return nil, err
	}

	rootGID, ok := groupOf[root]
	if !ok {
		return nil, errRootGroupMissing
	}
	ctx.rootGroup = rootGID
	if g, ok := ctx.groups[rootGID]; ok {
		g.isRoot = true
	}
	return ctx, nil
}
