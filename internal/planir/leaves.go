package planir

// Direction is the traversal direction of an edge-type relative to the
// source vertex.
type Direction int

const (
	DirOutgoing Direction = iota
	DirIncoming
	DirBoth
)

func (d Direction) Reverse() Direction {
	switch d {
	case DirOutgoing:
		return DirIncoming
	case DirIncoming:
		return DirOutgoing
	default:
		return DirBoth
	}
}

// ScanLimit is one index-column bound, e.g. age >= 18.
type ScanLimit struct {
	Column string
	Op     BinOp
	Value  any
}

// Start is the trivial single-row leaf every plan with no data source
// ultimately bottoms out at (e.g. for literal-only queries).
type Start struct {
	base
}

func NewStart(id int64) *Start { return &Start{base: newBase(id, "", nil)} }
func (*Start) Kind() Kind      { return KindStart }
func (*Start) isLeaf()         {}

// ScanVertices performs a full scan of every vertex carrying Tag (or every
// vertex if Tag is empty).
type ScanVertices struct {
	base
	Tag     string
	VFilter Expr
	Limit   *int
}

func NewScanVertices(id int64, outputVar, tag string, colNames []string) *ScanVertices {
	return &ScanVertices{base: newBase(id, outputVar, colNames), Tag: tag}
}
func (*ScanVertices) Kind() Kind { return KindScanVertices }
func (*ScanVertices) isLeaf()    {}

// ScanEdges performs a full scan of every edge of EdgeType.
type ScanEdges struct {
	base
	EdgeType string
	EFilter  Expr
	Limit    *int
}

func NewScanEdges(id int64, outputVar, edgeType string, colNames []string) *ScanEdges {
	return &ScanEdges{base: newBase(id, outputVar, colNames), EdgeType: edgeType}
}
func (*ScanEdges) Kind() Kind { return KindScanEdges }
func (*ScanEdges) isLeaf()    {}

// IndexScan reads vertices through a secondary tag index.
type IndexScan struct {
	base
	IndexID    int64
	ScanType   string // "range" or "prefix"
	ScanLimits []ScanLimit
	ReturnCols []string
	Limit      *int
}

func NewIndexScan(id int64, outputVar string, indexID int64, colNames []string) *IndexScan {
	return &IndexScan{base: newBase(id, outputVar, colNames), IndexID: indexID, ScanType: "range"}
}
func (*IndexScan) Kind() Kind { return KindIndexScan }
func (*IndexScan) isLeaf()    {}

// EdgeIndexScan reads edges through a secondary edge index.
type EdgeIndexScan struct {
	base
	IndexID    int64
	ScanLimits []ScanLimit
	Limit      *int
}

func NewEdgeIndexScan(id int64, outputVar string, indexID int64, colNames []string) *EdgeIndexScan {
	return &EdgeIndexScan{base: newBase(id, outputVar, colNames), IndexID: indexID}
}
func (*EdgeIndexScan) Kind() Kind { return KindEdgeIndexScan }
func (*EdgeIndexScan) isLeaf()    {}

// FulltextIndexScan reads vertices or edges through a fulltext index.
type FulltextIndexScan struct {
	base
	IndexID    int64
	SearchText string
	Limit      *int
}

func NewFulltextIndexScan(id int64, outputVar string, indexID int64, searchText string, colNames []string) *FulltextIndexScan {
	return &FulltextIndexScan{base: newBase(id, outputVar, colNames), IndexID: indexID, SearchText: searchText}
}
func (*FulltextIndexScan) Kind() Kind { return KindFulltextIndexScan }
func (*FulltextIndexScan) isLeaf()    {}

// GetVertices materializes full vertex objects (or specific props) for a
// set of ids produced by Src.
type GetVertices struct {
	base
	Src   Expr
	Props []string
	Limit *int
}

func NewGetVertices(id int64, outputVar string, src Expr, colNames []string) *GetVertices {
	return &GetVertices{base: newBase(id, outputVar, colNames), Src: src}
}
func (*GetVertices) Kind() Kind { return KindGetVertices }
func (*GetVertices) isLeaf()    {}

// GetEdges materializes full edge objects for a set of (src,dst) pairs.
type GetEdges struct {
	base
	Src      Expr
	Dst      Expr
	EdgeType string
	Limit    *int
}

func NewGetEdges(id int64, outputVar, edgeType string, src, dst Expr, colNames []string) *GetEdges {
	return &GetEdges{base: newBase(id, outputVar, colNames), Src: src, Dst: dst, EdgeType: edgeType}
}
func (*GetEdges) Kind() Kind { return KindGetEdges }
func (*GetEdges) isLeaf()    {}

// GetNeighbors expands one step from Src over EdgeTypes in Direction.
type GetNeighbors struct {
	base
	Src       Expr
	EdgeTypes []string
	Direction Direction
	EFilter   Expr
	Limit     *int
}

func NewGetNeighbors(id int64, outputVar string, src Expr, edgeTypes []string, dir Direction, colNames []string) *GetNeighbors {
	return &GetNeighbors{base: newBase(id, outputVar, colNames), Src: src, EdgeTypes: edgeTypes, Direction: dir}
}
func (*GetNeighbors) Kind() Kind { return KindGetNeighbors }
func (*GetNeighbors) isLeaf()    {}

// Argument is a placeholder leaf that stands for a value bound by an
// enclosing operator (e.g. the loop variable of a RollUpApply).
type Argument struct {
	base
	Alias string
}

func NewArgument(id int64, alias string, colNames []string) *Argument {
	return &Argument{base: newBase(id, alias, colNames), Alias: alias}
}
func (*Argument) Kind() Kind { return KindArgument }
func (*Argument) isLeaf()    {}

// PassThrough forwards its (implicit, executor-managed) input unchanged;
// used as the leaf DDL/DML nodes attach above.
type PassThrough struct {
	base
}

func NewPassThrough(id int64) *PassThrough { return &PassThrough{base: newBase(id, "", nil)} }
func (*PassThrough) Kind() Kind            { return KindPassThrough }
func (*PassThrough) isLeaf()               {}

// ShortestPath computes the shortest path(s) between From and To.
type ShortestPath struct {
	base
	From, To  Expr
	EdgeTypes []string
	MaxSteps  int
}

func NewShortestPath(id int64, outputVar string, from, to Expr, maxSteps int, colNames []string) *ShortestPath {
	return &ShortestPath{base: newBase(id, outputVar, colNames), From: from, To: to, MaxSteps: maxSteps}
}
func (*ShortestPath) Kind() Kind { return KindShortestPath }
func (*ShortestPath) isLeaf()    {}

// AllPaths enumerates every path between From and To with length in
// [MinSteps, MaxSteps]. EFilter, when set, is applied to each traversed
// edge; it is only ever populated by pushdown when MinSteps == MaxSteps,
// since a variable-length walk cannot apply one filter across all steps.
type AllPaths struct {
	base
	From, To           Expr
	EdgeTypes          []string
	MinSteps, MaxSteps int
	EFilter            Expr
}

func NewAllPaths(id int64, outputVar string, from, to Expr, minSteps, maxSteps int, colNames []string) *AllPaths {
	return &AllPaths{base: newBase(id, outputVar, colNames), From: from, To: to, MinSteps: minSteps, MaxSteps: maxSteps}
}
func (*AllPaths) Kind() Kind { return KindAllPaths }
func (*AllPaths) isLeaf()    {}

// IsConstantLength reports whether the path length is pinned to a single
// value (min == max), the condition under which PushFilterDownAllPaths may
// fire.
func (a *AllPaths) IsConstantLength() bool { return a.MinSteps == a.MaxSteps }
