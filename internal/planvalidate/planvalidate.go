// Package planvalidate implements the post-extraction plan validator (spec
// §4.8): it rejects a chosen physical plan instead of letting the executor
// discover a structural defect at runtime.
package planvalidate

import (
	"fmt"

	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

// Error reports a single validation failure, naming the offending node so
// callers can report it back without crashing the process (spec §4.8).
type Error struct {
	NodeID  int64
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("planvalidate: node %d: %s", e.NodeID, e.Message)
}

// NodeCost resolves a node's cached cumulative cost, mirroring
// memo.OptGroupNode.Cost's (float64, bool) shape.
type NodeCost func(nodeID int64) (float64, bool)

// Validate traverses the plan rooted at root and reports the first
// violation found among spec §4.8's rejection conditions: a non-leaf node
// with zero inputs, an expression referencing an unknown column, an
// Aggregate with an empty function name or with neither group keys nor
// functions, a Loop with no body or Select with neither branch, or a
// negative cached cost. cost may be nil if costs are not being
// checked (e.g. validating a plan built outside the optimizer).
func Validate(root planir.PlanNode, cost NodeCost) error {
	return validate(root, nil, cost)
}

func validate(n planir.PlanNode, parentCols []string, cost NodeCost) error {
	if n == nil {
		return nil
	}

	if err := checkStructure(n); err != nil {
		return err
	}
	if err := checkCost(n, cost); err != nil {
		return err
	}

	children := planir.Children(n)
	available := childColumns(children)
	if err := checkExpressions(n, available); err != nil {
		return err
	}
	for _, c := range children {
		if err := validate(c, parentCols, cost); err != nil {
			return err
		}
	}
	return nil
}

func childColumns(children []planir.PlanNode) map[string]struct{} {
	cols := make(map[string]struct{})
	for _, c := range children {
		for _, name := range c.ColNames() {
			cols[name] = struct{}{}
		}
	}
	return cols
}

// checkStructure rejects a non-leaf node with zero inputs and the
// Loop/Select-specific branch-presence conditions.
func checkStructure(n planir.PlanNode) error {
	switch v := n.(type) {
	case *planir.Loop:
		if v.Body() == nil {
			return &Error{NodeID: n.ID(), Message: "loop has no body"}
		}
	case *planir.Select:
		if v.Then() == nil && v.Else() == nil {
			return &Error{NodeID: n.ID(), Message: "select has neither branch"}
		}
	case *planir.DDLPassthrough:
		// Input is allowed to be nil for DDL operations with no upstream
		// data flow (e.g. CreateTag); see DDLPassthrough.Input's doc.
		return nil
	case planir.Leaf:
		return nil
	case planir.SingleInput:
		if v.Input() == nil {
			return &Error{NodeID: n.ID(), Message: "non-leaf node has zero inputs"}
		}
	case planir.BinaryInput:
		if v.LeftInput() == nil || v.RightInput() == nil {
			return &Error{NodeID: n.ID(), Message: "non-leaf node has zero inputs"}
		}
	case planir.SetOpInput:
		if v.Input() == nil || v.OtherInput() == nil {
			return &Error{NodeID: n.ID(), Message: "non-leaf node has zero inputs"}
		}
	case planir.MultiInput:
		if len(v.Inputs()) == 0 {
			return &Error{NodeID: n.ID(), Message: "non-leaf node has zero inputs"}
		}
	}
	return nil
}

func checkCost(n planir.PlanNode, cost NodeCost) error {
	if cost == nil {
		return nil
	}
	if c, ok := cost(n.ID()); ok && c < 0 {
		return &Error{NodeID: n.ID(), Message: fmt.Sprintf("cached cost is negative: %v", c)}
	}
	return nil
}

func checkExpressions(n planir.PlanNode, available map[string]struct{}) error {
	exprs := exprsOf(n)
	for _, e := range exprs {
		for _, col := range planir.ColumnsReferenced(e) {
			if _, ok := available[col]; !ok {
				return &Error{NodeID: n.ID(), Message: fmt.Sprintf("expression references unknown column %q", col)}
			}
		}
	}
	if agg, ok := n.(*planir.Aggregate); ok {
		if len(agg.AggFunctions) == 0 && len(agg.GroupKeys) == 0 {
			return &Error{NodeID: n.ID(), Message: "aggregate has no group keys and no aggregate functions"}
		}
		for _, f := range agg.AggFunctions {
			if f.Name == "" {
				return &Error{NodeID: n.ID(), Message: "aggregate function name is empty"}
			}
		}
	}
	return nil
}

// exprsOf returns the expressions n carries that should be checked for
// column references; leaf filter/project-style expressions embedded in
// scan nodes are intentionally excluded since those reference the scan's
// own source schema, not a child's.
func exprsOf(n planir.PlanNode) []planir.Expr {
	switch v := n.(type) {
	case *planir.Filter:
		return []planir.Expr{v.Condition}
	case *planir.Assign:
		return []planir.Expr{v.Expr}
	case *planir.Unwind:
		return []planir.Expr{v.Expr}
	case *planir.Project:
		out := make([]planir.Expr, 0, len(v.Items))
		for _, item := range v.Items {
			out = append(out, item.Expr)
		}
		return out
	}
	return nil
}

// ValidateMemberDependencies checks that every dependency group id a member
// references still exists in ctx's memo — the "references a child group id
// that does not exist" rejection condition, checked while extraction is
// resolving a member's children rather than after the fact on a plain
// tree that no longer carries group ids.
func ValidateMemberDependencies(ctx *memo.OptContext, member *memo.OptGroupNode) error {
	for _, gid := range member.Dependencies() {
		if _, ok := ctx.Group(gid); !ok {
			return &Error{NodeID: member.ID(), Message: fmt.Sprintf("references nonexistent group %d", gid)}
		}
	}
	return nil
}
