package planir

// joinBase holds the fields shared by every binary join kind.
type joinBase struct {
	base
	left, right PlanNode
	HashKeys    []string
	ProbeKeys   []string
}

func (j *joinBase) Input() PlanNode      { return j.left }
func (j *joinBase) LeftInput() PlanNode  { return j.left }
func (j *joinBase) RightInput() PlanNode { return j.right }

func newJoinBase(id int64, outputVar string, left, right PlanNode, hashKeys, probeKeys []string, colNames []string) (joinBase, error) {
	if left == nil || right == nil {
		return joinBase{}, ErrNoInput
	}
	return joinBase{base: newBase(id, outputVar, colNames), left: left, right: right, HashKeys: hashKeys, ProbeKeys: probeKeys}, nil
}

// InnerJoin is a logical (algorithm-unselected) inner join.
type InnerJoin struct{ joinBase }

func NewInnerJoin(id int64, outputVar string, left, right PlanNode, hashKeys, probeKeys []string, colNames []string) (*InnerJoin, error) {
	jb, err := newJoinBase(id, outputVar, left, right, hashKeys, probeKeys, colNames)
	if err != nil {
		return nil, err
	}
	return &InnerJoin{joinBase: jb}, nil
}
func (*InnerJoin) Kind() Kind { return KindInnerJoin }

// LeftJoin is a logical left outer join.
type LeftJoin struct{ joinBase }

func NewLeftJoin(id int64, outputVar string, left, right PlanNode, hashKeys, probeKeys []string, colNames []string) (*LeftJoin, error) {
	jb, err := newJoinBase(id, outputVar, left, right, hashKeys, probeKeys, colNames)
	if err != nil {
		return nil, err
	}
	return &LeftJoin{joinBase: jb}, nil
}
func (*LeftJoin) Kind() Kind { return KindLeftJoin }

// CrossJoin is the Cartesian product of its two inputs.
type CrossJoin struct{ joinBase }

func NewCrossJoin(id int64, outputVar string, left, right PlanNode, colNames []string) (*CrossJoin, error) {
	jb, err := newJoinBase(id, outputVar, left, right, nil, nil, colNames)
	if err != nil {
		return nil, err
	}
	return &CrossJoin{joinBase: jb}, nil
}
func (*CrossJoin) Kind() Kind { return KindCrossJoin }

// HashInnerJoin is the hash-join physical algorithm for an inner join. By
// the join build-side invariant (spec §8), Left is always the estimated
// build (smaller) side.
type HashInnerJoin struct{ joinBase }

func NewHashInnerJoin(id int64, outputVar string, left, right PlanNode, hashKeys, probeKeys []string, colNames []string) (*HashInnerJoin, error) {
	jb, err := newJoinBase(id, outputVar, left, right, hashKeys, probeKeys, colNames)
	if err != nil {
		return nil, err
	}
	return &HashInnerJoin{joinBase: jb}, nil
}
func (*HashInnerJoin) Kind() Kind { return KindHashInnerJoin }

// HashLeftJoin is the hash-join physical algorithm for a left outer join.
type HashLeftJoin struct{ joinBase }

func NewHashLeftJoin(id int64, outputVar string, left, right PlanNode, hashKeys, probeKeys []string, colNames []string) (*HashLeftJoin, error) {
	jb, err := newJoinBase(id, outputVar, left, right, hashKeys, probeKeys, colNames)
	if err != nil {
		return nil, err
	}
	return &HashLeftJoin{joinBase: jb}, nil
}
func (*HashLeftJoin) Kind() Kind { return KindHashLeftJoin }

// FullOuterJoin keeps unmatched rows from both sides.
type FullOuterJoin struct{ joinBase }

func NewFullOuterJoin(id int64, outputVar string, left, right PlanNode, hashKeys, probeKeys []string, colNames []string) (*FullOuterJoin, error) {
	jb, err := newJoinBase(id, outputVar, left, right, hashKeys, probeKeys, colNames)
	if err != nil {
		return nil, err
	}
	return &FullOuterJoin{joinBase: jb}, nil
}
func (*FullOuterJoin) Kind() Kind { return KindFullOuterJoin }

// Minus computes Input minus OtherInput (set difference).
type Minus struct {
	base
	input, minusInput PlanNode
}

func NewMinus(id int64, outputVar string, input, minusInput PlanNode, colNames []string) (*Minus, error) {
	if input == nil || minusInput == nil {
		return nil, ErrNoInput
	}
	return &Minus{base: newBase(id, outputVar, colNames), input: input, minusInput: minusInput}, nil
}
func (*Minus) Kind() Kind          { return KindMinus }
func (m *Minus) Input() PlanNode   { return m.input }
func (m *Minus) OtherInput() PlanNode { return m.minusInput }

// Intersect computes the set intersection of Input and OtherInput.
type Intersect struct {
	base
	input, intersectInput PlanNode
}

func NewIntersect(id int64, outputVar string, input, intersectInput PlanNode, colNames []string) (*Intersect, error) {
	if input == nil || intersectInput == nil {
		return nil, ErrNoInput
	}
	return &Intersect{base: newBase(id, outputVar, colNames), input: input, intersectInput: intersectInput}, nil
}
func (*Intersect) Kind() Kind            { return KindIntersect }
func (i *Intersect) Input() PlanNode     { return i.input }
func (i *Intersect) OtherInput() PlanNode { return i.intersectInput }
