package planir

// Expand expands one step over a variable number of dependency inputs
// (one per candidate edge type partition produced upstream).
type Expand struct {
	base
	inputs    []PlanNode
	EdgeTypes []string
	Direction Direction
}

func NewExpand(id int64, outputVar string, inputs []PlanNode, edgeTypes []string, dir Direction, colNames []string) (*Expand, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}
	return &Expand{base: newBase(id, outputVar, colNames), inputs: inputs, EdgeTypes: edgeTypes, Direction: dir}, nil
}
func (*Expand) Kind() Kind          { return KindExpand }
func (e *Expand) Inputs() []PlanNode { return append([]PlanNode(nil), e.inputs...) }

// ExpandAll is Expand's variable-length-path counterpart: it keeps
// expanding from every dependency input until no new vertices are found.
type ExpandAll struct {
	base
	inputs    []PlanNode
	EdgeTypes []string
	Direction Direction
	MaxSteps  int
}

func NewExpandAll(id int64, outputVar string, inputs []PlanNode, edgeTypes []string, dir Direction, maxSteps int, colNames []string) (*ExpandAll, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}
	return &ExpandAll{base: newBase(id, outputVar, colNames), inputs: inputs, EdgeTypes: edgeTypes, Direction: dir, MaxSteps: maxSteps}, nil
}
func (*ExpandAll) Kind() Kind           { return KindExpandAll }
func (e *ExpandAll) Inputs() []PlanNode { return append([]PlanNode(nil), e.inputs...) }

// AppendVertices joins vertex objects onto every dependency input keyed by
// the vertex id column each one carries.
type AppendVertices struct {
	base
	inputs []PlanNode
	Props  []string
}

func NewAppendVertices(id int64, outputVar string, inputs []PlanNode, colNames []string) (*AppendVertices, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}
	return &AppendVertices{base: newBase(id, outputVar, colNames), inputs: inputs}, nil
}
func (*AppendVertices) Kind() Kind           { return KindAppendVertices }
func (a *AppendVertices) Inputs() []PlanNode { return append([]PlanNode(nil), a.inputs...) }

// IsRedundant reports whether this AppendVertices has a single input and
// no Props, and therefore adds nothing beyond what that input already
// produces (the
// condition under which EliminateAppendVertices may fire).
func (a *AppendVertices) IsRedundant() bool { return len(a.inputs) == 1 && len(a.Props) == 0 }
