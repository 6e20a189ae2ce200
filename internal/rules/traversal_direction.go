package rules

import "github.com/kkkqkx123/graphdb-optimizer/internal/planir"

// TraversalDirectionDecision is TraversalDirectionOptimizer's verdict for
// one edge type: which direction to traverse and whether either direction
// was avoided for exceeding the super-node threshold.
type TraversalDirectionDecision struct {
	Direction      planir.Direction
	AvoidSuperNode bool
}

// TraversalDirectionOptimizer picks the traversal direction with the lower
// average degree for an edge type, steering away from super-nodes (spec
// §4.6 "Traversal-direction hint").
type TraversalDirectionOptimizer struct {
	SuperNodeThreshold float64
}

// Choose returns the preferred direction given avgOutDegree/avgInDegree for
// the edge type being traversed.
func (o TraversalDirectionOptimizer) Choose(avgOutDegree, avgInDegree float64) TraversalDirectionDecision {
	outOver := avgOutDegree > o.SuperNodeThreshold
	inOver := avgInDegree > o.SuperNodeThreshold

	switch {
	case outOver && inOver:
		if avgOutDegree <= avgInDegree {
			return TraversalDirectionDecision{Direction: planir.DirOutgoing, AvoidSuperNode: true}
		}
		return TraversalDirectionDecision{Direction: planir.DirIncoming, AvoidSuperNode: true}
	case outOver:
		return TraversalDirectionDecision{Direction: planir.DirIncoming, AvoidSuperNode: true}
	case inOver:
		return TraversalDirectionDecision{Direction: planir.DirOutgoing, AvoidSuperNode: true}
	default:
		if avgOutDegree <= avgInDegree {
			return TraversalDirectionDecision{Direction: planir.DirOutgoing}
		}
		return TraversalDirectionDecision{Direction: planir.DirIncoming}
	}
}
