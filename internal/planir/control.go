package planir

// Select is an if/else branch: Then runs when Condition holds for a row,
// Else otherwise.
type Select struct {
	base
	Condition Expr
	then      PlanNode
	els       PlanNode
}

func NewSelect(id int64, outputVar string, cond Expr, then, els PlanNode, colNames []string) (*Select, error) {
	if then == nil && els == nil {
		return nil, ErrNoInput
	}
	return &Select{base: newBase(id, outputVar, colNames), Condition: cond, then: then, els: els}, nil
}
func (*Select) Kind() Kind       { return KindSelect }
func (s *Select) Then() PlanNode { return s.then }
func (s *Select) Else() PlanNode { return s.els }

// Loop repeatedly evaluates Body while Condition holds.
type Loop struct {
	base
	Condition Expr
	body      PlanNode
}

func NewLoop(id int64, outputVar string, cond Expr, body PlanNode, colNames []string) (*Loop, error) {
	if body == nil {
		return nil, ErrNoInput
	}
	return &Loop{base: newBase(id, outputVar, colNames), Condition: cond, body: body}, nil
}
func (*Loop) Kind() Kind       { return KindLoop }
func (l *Loop) Body() PlanNode { return l.body }
