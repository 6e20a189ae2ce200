package planir

// Children returns n's direct input nodes in a uniform order, regardless
// of which capability trait n implements. This is the single dispatch
// point every traversal (memo construction, extraction, validation) goes
// through instead of re-deriving the node's shape with its own switch.
func Children(n PlanNode) []PlanNode {
	switch v := n.(type) {
	case Leaf:
		_ = v
		return nil
	case BinaryInput:
		return []PlanNode{v.LeftInput(), v.RightInput()}
	case SetOpInput:
		return []PlanNode{v.Input(), v.OtherInput()}
	case MultiInput:
		return v.Inputs()
	case SingleInput:
		if v.Input() == nil {
			return nil
		}
		return []PlanNode{v.Input()}
	}
	// Select and Loop expose their children only through Then/Else and
	// Body, which no capability trait covers, so they are handled here.
	switch v := n.(type) {
	case *Select:
		var out []PlanNode
		if v.Then() != nil {
			out = append(out, v.Then())
		}
		if v.Else() != nil {
			out = append(out, v.Else())
		}
		return out
	case *Loop:
		return []PlanNode{v.Body()}
	}
	return nil
}

// WalkPostOrder visits every node in the tree rooted at n in post-order
// (children before parent) and calls visit on each. maxDepth bounds
// recursion (spec §5 max_recursion_depth); exceeding it returns
// ErrMaxDepthExceeded.
func WalkPostOrder(n PlanNode, maxDepth int, visit func(PlanNode) error) error {
	return walkPostOrder(n, 0, maxDepth, visit)
}

func walkPostOrder(n PlanNode, depth, maxDepth int, visit func(PlanNode) error) error {
	if n == nil {
		return nil
	}
	if depth > maxDepth {
		return ErrMaxDepthExceeded
	}
	for _, c := range Children(n) {
		if err := walkPostOrder(c, depth+1, maxDepth, visit); err != nil {
			return err
		}
	}
	return visit(n)
}

// ErrMaxDepthExceeded is returned by WalkPostOrder when a plan's nesting
// exceeds the configured recursion cap.
var ErrMaxDepthExceeded = newSentinel("planir: max recursion depth exceeded")

func newSentinel(msg string) error { return sentinelError(msg) }

type sentinelError string

func (e sentinelError) Error() string { return string(e) }
