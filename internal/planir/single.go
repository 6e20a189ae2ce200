package planir

// ProjectItem is one projected expression with its output alias.
type ProjectItem struct {
	Expr  Expr
	Alias string
}

// Project evaluates Items against Input and emits only those columns.
type Project struct {
	base
	input PlanNode
	Items []ProjectItem
}

func NewProject(id int64, outputVar string, input PlanNode, items []ProjectItem, colNames []string) (*Project, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	return &Project{base: newBase(id, outputVar, colNames), input: input, Items: items}, nil
}
func (*Project) Kind() Kind          { return KindProject }
func (p *Project) Input() PlanNode   { return p.input }

// IsIdentity reports whether every item is a bare column reference whose
// alias matches the source column and whose order matches colNames,
// i.e. Project(* -> *).
func (p *Project) IsIdentity(childCols []string) bool {
	if len(p.Items) != len(childCols) {
		return false
	}
	for i, item := range p.Items {
		col, ok := item.Expr.(*ColumnRef)
		if !ok || col.Name != childCols[i] {
			return false
		}
		if item.Alias != "" && item.Alias != col.Name {
			return false
		}
	}
	return true
}

// Filter keeps only the rows of Input for which Condition holds.
type Filter struct {
	base
	input     PlanNode
	Condition Expr
}

func NewFilter(id int64, outputVar string, input PlanNode, cond Expr, colNames []string) (*Filter, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	if cond == nil {
		return nil, ErrEmptyCondition
	}
	return &Filter{base: newBase(id, outputVar, colNames), input: input, Condition: cond}, nil
}
func (*Filter) Kind() Kind        { return KindFilter }
func (f *Filter) Input() PlanNode { return f.input }

// Sort orders Input by Items.
type Sort struct {
	base
	input PlanNode
	Items []SortItem
}

func NewSort(id int64, outputVar string, input PlanNode, items []SortItem, colNames []string) (*Sort, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	if len(items) == 0 {
		return nil, ErrEmptySortItems
	}
	return &Sort{base: newBase(id, outputVar, colNames), input: input, Items: items}, nil
}
func (*Sort) Kind() Kind        { return KindSort }
func (s *Sort) Input() PlanNode { return s.input }

// Limit skips Offset rows of Input then takes up to Count.
type Limit struct {
	base
	input  PlanNode
	Offset int
	Count  int
}

func NewLimit(id int64, outputVar string, input PlanNode, offset, count int, colNames []string) (*Limit, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	return &Limit{base: newBase(id, outputVar, colNames), input: input, Offset: offset, Count: count}, nil
}
func (*Limit) Kind() Kind        { return KindLimit }
func (l *Limit) Input() PlanNode { return l.input }

// TopN keeps the Limit smallest/largest rows of Input ordered by Items,
// without materializing a full sort.
type TopN struct {
	base
	input PlanNode
	Limit int
	Items []SortItem
}

func NewTopN(id int64, outputVar string, input PlanNode, limit int, items []SortItem, colNames []string) (*TopN, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	if len(items) == 0 {
		return nil, ErrEmptySortItems
	}
	return &TopN{base: newBase(id, outputVar, colNames), input: input, Limit: limit, Items: items}, nil
}
func (*TopN) Kind() Kind        { return KindTopN }
func (t *TopN) Input() PlanNode { return t.input }

// Sample keeps a random subset of Count rows from Input.
type Sample struct {
	base
	input PlanNode
	Count int
}

func NewSample(id int64, outputVar string, input PlanNode, count int, colNames []string) (*Sample, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	return &Sample{base: newBase(id, outputVar, colNames), input: input, Count: count}, nil
}
func (*Sample) Kind() Kind        { return KindSample }
func (s *Sample) Input() PlanNode { return s.input }

// AggregateStrategy is the physical execution strategy chosen for an
// Aggregate node by the optimizer's physical phase (spec §4.6
// "Aggregate-strategy selection"). AggregateStrategyUnset means the
// physical phase has not yet annotated this node.
type AggregateStrategy int

const (
	AggregateStrategyUnset AggregateStrategy = iota
	StreamingAggregate
	HashAggregate
	SortAggregate
)

func (s AggregateStrategy) String() string {
	switch s {
	case StreamingAggregate:
		return "streaming"
	case HashAggregate:
		return "hash"
	case SortAggregate:
		return "sort"
	default:
		return "unset"
	}
}

// Aggregate groups Input by GroupKeys and evaluates AggFunctions per group.
// InputSorted records whether Input is already sorted on GroupKeys, which
// enables the streaming-aggregate strategy. Strategy is set by the
// optimizer's physical phase once a concrete execution strategy has been
// chosen; it is AggregateStrategyUnset until then.
type Aggregate struct {
	base
	input        PlanNode
	GroupKeys    []string
	AggFunctions []AggFunc
	InputSorted  bool
	Strategy     AggregateStrategy
}

func NewAggregate(id int64, outputVar string, input PlanNode, groupKeys []string, aggs []AggFunc, colNames []string) (*Aggregate, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	if len(groupKeys) == 0 && len(aggs) == 0 {
		return nil, ErrEmptyAggregate
	}
	return &Aggregate{base: newBase(id, outputVar, colNames), input: input, GroupKeys: groupKeys, AggFunctions: aggs}, nil
}
func (*Aggregate) Kind() Kind        { return KindAggregate }
func (a *Aggregate) Input() PlanNode { return a.input }

// Dedup removes duplicate rows of Input.
type Dedup struct {
	base
	input PlanNode
}

func NewDedup(id int64, outputVar string, input PlanNode, colNames []string) (*Dedup, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	return &Dedup{base: newBase(id, outputVar, colNames), input: input}, nil
}
func (*Dedup) Kind() Kind        { return KindDedup }
func (d *Dedup) Input() PlanNode { return d.input }

// Unwind expands a list-valued expression into one row per element.
type Unwind struct {
	base
	input PlanNode
	Expr  Expr
	Alias string
}

func NewUnwind(id int64, outputVar string, input PlanNode, expr Expr, alias string, colNames []string) (*Unwind, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	return &Unwind{base: newBase(id, outputVar, colNames), input: input, Expr: expr, Alias: alias}, nil
}
func (*Unwind) Kind() Kind        { return KindUnwind }
func (u *Unwind) Input() PlanNode { return u.input }

// DataCollect folds Input's rows into a single collection value (list or
// bag semantics, chosen by CollectType).
type DataCollect struct {
	base
	input       PlanNode
	CollectType string
}

func NewDataCollect(id int64, outputVar string, input PlanNode, collectType string, colNames []string) (*DataCollect, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	return &DataCollect{base: newBase(id, outputVar, colNames), input: input, CollectType: collectType}, nil
}
func (*DataCollect) Kind() Kind        { return KindDataCollect }
func (d *DataCollect) Input() PlanNode { return d.input }

// Union is the single-input form used when the branches of a set
// operation have already been reduced to one combined input upstream (the
// multi-branch shape lives in the planner, out of this optimizer's scope).
type Union struct {
	base
	input PlanNode
}

func NewUnion(id int64, outputVar string, input PlanNode, colNames []string) (*Union, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	return &Union{base: newBase(id, outputVar, colNames), input: input}, nil
}
func (*Union) Kind() Kind        { return KindUnion }
func (u *Union) Input() PlanNode { return u.input }

// Assign binds Expr's value to Var for every row of Input.
type Assign struct {
	base
	input PlanNode
	Var   string
	Expr  Expr
}

func NewAssign(id int64, outputVar string, input PlanNode, v string, expr Expr, colNames []string) (*Assign, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	return &Assign{base: newBase(id, outputVar, colNames), input: input, Var: v, Expr: expr}, nil
}
func (*Assign) Kind() Kind        { return KindAssign }
func (a *Assign) Input() PlanNode { return a.input }

// PatternApply evaluates Subplan once per row of Input and joins the
// results back (used for pattern-matching sub-queries such as EXISTS).
type PatternApply struct {
	base
	input   PlanNode
	Subplan PlanNode
}

func NewPatternApply(id int64, outputVar string, input, subplan PlanNode, colNames []string) (*PatternApply, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	return &PatternApply{base: newBase(id, outputVar, colNames), input: input, Subplan: subplan}, nil
}
func (*PatternApply) Kind() Kind        { return KindPatternApply }
func (p *PatternApply) Input() PlanNode { return p.input }

// RollUpApply evaluates Subplan once per row of Input and rolls the
// results up into CollectVar (used for variable-length traversal with
// per-path collection semantics).
type RollUpApply struct {
	base
	input      PlanNode
	Subplan    PlanNode
	CollectVar string
}

func NewRollUpApply(id int64, outputVar string, input, subplan PlanNode, collectVar string, colNames []string) (*RollUpApply, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	return &RollUpApply{base: newBase(id, outputVar, colNames), input: input, Subplan: subplan, CollectVar: collectVar}, nil
}
func (*RollUpApply) Kind() Kind        { return KindRollUpApply }
func (r *RollUpApply) Input() PlanNode { return r.input }

// Traverse expands one or more steps from Input's bound vertex over
// EdgeTypes in Direction, applying EFilter to candidate edges and VFilter
// to candidate destination vertices.
type Traverse struct {
	base
	input     PlanNode
	EdgeTypes []string
	Direction Direction
	MaxSteps  int
	EFilter   Expr
	VFilter   Expr
}

func NewTraverse(id int64, outputVar string, input PlanNode, edgeTypes []string, dir Direction, maxSteps int, colNames []string) (*Traverse, error) {
	if input == nil {
		return nil, ErrNoInput
	}
	return &Traverse{base: newBase(id, outputVar, colNames), input: input, EdgeTypes: edgeTypes, Direction: dir, MaxSteps: maxSteps}, nil
}
func (*Traverse) Kind() Kind        { return KindTraverse }
func (t *Traverse) Input() PlanNode { return t.input }

// IsSingleStep reports whether this Traverse expands exactly one edge,
// the condition under which PushFilterDownTraverse may fire.
func (t *Traverse) IsSingleStep() bool { return t.MaxSteps == 1 }
