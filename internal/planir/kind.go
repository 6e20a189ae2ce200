// Package planir defines the plan intermediate representation consumed and
// produced by the optimizer: a tagged variant over every logical/physical
// node kind plus the structural capability traits rules dispatch on.
package planir

// Kind identifies the concrete variant a PlanNode carries. It replaces
// reflection-based dispatch: every node knows its own Kind and every rule
// pattern matches against it directly.
type Kind int

const (
	KindUnknown Kind = iota

	// Leaves.
	KindStart
	KindScanVertices
	KindScanEdges
	KindIndexScan
	KindEdgeIndexScan
	KindFulltextIndexScan
	KindGetVertices
	KindGetEdges
	KindGetNeighbors
	KindArgument
	KindPassThrough
	KindShortestPath
	KindAllPaths

	// Single-input.
	KindProject
	KindFilter
	KindSort
	KindLimit
	KindTopN
	KindSample
	KindAggregate
	KindDedup
	KindUnwind
	KindDataCollect
	KindUnion
	KindAssign
	KindPatternApply
	KindRollUpApply
	KindTraverse

	// Multi-input.
	KindExpand
	KindExpandAll
	KindAppendVertices

	// Binary.
	KindInnerJoin
	KindLeftJoin
	KindCrossJoin
	KindHashInnerJoin
	KindHashLeftJoin
	KindFullOuterJoin
	KindMinus
	KindIntersect

	// Control-flow.
	KindSelect
	KindLoop

	// DDL/DML opaque kinds (all implemented by DDLPassthrough).
	KindCreateSpace
	KindCreateTag
	KindCreateEdge
	KindAlterTag
	KindAlterEdge
	KindCreateIndex
	KindCreateFTIndex
	KindDropTag
	KindDropEdge
	KindDropIndex
	KindDescribeTag
	KindDescribeEdge
	KindShowTags
	KindShowEdges
	KindInsertVertices
	KindInsertEdges
	KindUpdateVertex
	KindUpdateEdge
	KindDeleteVertices
	KindDeleteEdges
)

var kindNames = map[Kind]string{
	KindUnknown:           "Unknown",
	KindStart:             "Start",
	KindScanVertices:      "ScanVertices",
	KindScanEdges:         "ScanEdges",
	KindIndexScan:         "IndexScan",
	KindEdgeIndexScan:     "EdgeIndexScan",
	KindFulltextIndexScan: "FulltextIndexScan",
	KindGetVertices:       "GetVertices",
	KindGetEdges:          "GetEdges",
	KindGetNeighbors:      "GetNeighbors",
	KindArgument:          "Argument",
	KindPassThrough:       "PassThrough",
	KindShortestPath:      "ShortestPath",
	KindAllPaths:          "AllPaths",
	KindProject:           "Project",
	KindFilter:            "Filter",
	KindSort:              "Sort",
	KindLimit:             "Limit",
	KindTopN:              "TopN",
	KindSample:            "Sample",
	KindAggregate:         "Aggregate",
	KindDedup:             "Dedup",
	KindUnwind:            "Unwind",
	KindDataCollect:       "DataCollect",
	KindUnion:             "Union",
	KindAssign:            "Assign",
	KindPatternApply:      "PatternApply",
	KindRollUpApply:       "RollUpApply",
	KindTraverse:          "Traverse",
	KindExpand:            "Expand",
	KindExpandAll:         "ExpandAll",
	KindAppendVertices:    "AppendVertices",
	KindInnerJoin:         "InnerJoin",
	KindLeftJoin:          "LeftJoin",
	KindCrossJoin:         "CrossJoin",
	KindHashInnerJoin:     "HashInnerJoin",
	KindHashLeftJoin:      "HashLeftJoin",
	KindFullOuterJoin:     "FullOuterJoin",
	KindMinus:             "Minus",
	KindIntersect:         "Intersect",
	KindSelect:            "Select",
	KindLoop:              "Loop",
	KindCreateSpace:       "CreateSpace",
	KindCreateTag:         "CreateTag",
	KindCreateEdge:        "CreateEdge",
	KindAlterTag:          "AlterTag",
	KindAlterEdge:         "AlterEdge",
	KindCreateIndex:       "CreateIndex",
	KindCreateFTIndex:     "CreateFTIndex",
	KindDropTag:           "DropTag",
	KindDropEdge:          "DropEdge",
	KindDropIndex:         "DropIndex",
	KindDescribeTag:       "DescribeTag",
	KindDescribeEdge:      "DescribeEdge",
	KindShowTags:          "ShowTags",
	KindShowEdges:         "ShowEdges",
	KindInsertVertices:    "InsertVertices",
	KindInsertEdges:       "InsertEdges",
	KindUpdateVertex:      "UpdateVertex",
	KindUpdateEdge:        "UpdateEdge",
	KindDeleteVertices:    "DeleteVertices",
	KindDeleteEdges:       "DeleteEdges",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Invalid"
}

// IsHashJoin reports whether k is one of the hash-join physical kinds.
func (k Kind) IsHashJoin() bool {
	return k == KindHashInnerJoin || k == KindHashLeftJoin
}

// IsJoin reports whether k is any binary join kind (hash or otherwise).
func (k Kind) IsJoin() bool {
	switch k {
	case KindInnerJoin, KindLeftJoin, KindCrossJoin, KindHashInnerJoin, KindHashLeftJoin, KindFullOuterJoin:
		return true
	}
	return false
}

// IsIndexScan reports whether k reads through a secondary index.
func (k Kind) IsIndexScan() bool {
	switch k {
	case KindIndexScan, KindEdgeIndexScan, KindFulltextIndexScan:
		return true
	}
	return false
}
