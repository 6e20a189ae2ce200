package planir

import "fmt"

// PlanNode is the tagged-variant interface every concrete node kind
// implements. Rewrite rules never mutate a node; they build a replacement.
// The one in-place write is the physical phase setting Aggregate.Strategy.
type PlanNode interface {
	ID() int64
	Kind() Kind
	OutputVar() string
	ColNames() []string
}

// Leaf is implemented by node kinds with no inputs.
type Leaf interface {
	PlanNode
	isLeaf()
}

// SingleInput is implemented by node kinds with exactly one child.
type SingleInput interface {
	PlanNode
	Input() PlanNode
}

// BinaryInput is implemented by node kinds with a left and a right child.
type BinaryInput interface {
	PlanNode
	LeftInput() PlanNode
	RightInput() PlanNode
}

// MultiInput is implemented by node kinds that carry a variable number of
// dependencies (Expand, ExpandAll, AppendVertices).
type MultiInput interface {
	PlanNode
	Inputs() []PlanNode
}

// SetOpInput is implemented by Minus and Intersect, which are binary-like
// but expose two differently-named accessors instead of Left/Right.
type SetOpInput interface {
	PlanNode
	Input() PlanNode
	OtherInput() PlanNode
}

// base carries the attributes every node kind shares: a stable id, an
// optional output variable name, and the ordered output column list.
type base struct {
	id        int64
	outputVar string
	colNames  []string
}

func (b *base) ID() int64          { return b.id }
func (b *base) OutputVar() string  { return b.outputVar }
func (b *base) ColNames() []string { return append([]string(nil), b.colNames...) }

func newBase(id int64, outputVar string, colNames []string) base {
	return base{id: id, outputVar: outputVar, colNames: colNames}
}

// ErrEmptyCondition is returned when a Filter is constructed without a
// condition expression.
var ErrEmptyCondition = fmt.Errorf("planir: filter condition must not be nil")

// ErrEmptyAggregate is returned when an Aggregate has neither group keys
// nor aggregate functions.
var ErrEmptyAggregate = fmt.Errorf("planir: aggregate must have at least one group key or aggregate function")

// ErrNoInput is returned when a non-leaf node is constructed with zero
// inputs of the kind its capability trait requires.
var ErrNoInput = fmt.Errorf("planir: node requires at least one input")

// ErrEmptySortItems is returned when Sort or TopN is constructed with no
// sort items.
var ErrEmptySortItems = fmt.Errorf("planir: sort requires at least one sort item")

// ErrDuplicateOutputVar is returned by ValidateSiblingOutputVars when two
// sibling nodes declare the same output variable.
var ErrDuplicateOutputVar = fmt.Errorf("planir: output_var must be unique among siblings")

// ValidateSiblingOutputVars enforces the invariant that output_var is
// unique among siblings inside one plan.
func ValidateSiblingOutputVars(siblings []PlanNode) error {
	seen := make(map[string]struct{}, len(siblings))
	for _, s := range siblings {
		v := s.OutputVar()
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateOutputVar, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}
