// Package optengine implements the three-phase optimizer driver (spec
// §4.5): it builds the per-call rule registry and cost model, owns the
// decision cache, and provides the top-level Optimize entry point.
package optengine

import "fmt"

// Kind identifies the category of an OptimizerError (spec §7).
type Kind int

const (
	KindGroupNotFound Kind = iota
	KindNoViablePlan
	KindRuleApplicationFailed
	KindCycleDetected
	KindInvalidPlanStructure
	KindUnsupportedOperation
	KindValidation
	KindCostError
	KindDecisionCacheError
)

func (k Kind) String() string {
	switch k {
	case KindGroupNotFound:
		return "GroupNotFound"
	case KindNoViablePlan:
		return "NoViablePlan"
	case KindRuleApplicationFailed:
		return "RuleApplicationFailed"
	case KindCycleDetected:
		return "CycleDetected"
	case KindInvalidPlanStructure:
		return "InvalidPlanStructure"
	case KindUnsupportedOperation:
		return "UnsupportedOperation"
	case KindValidation:
		return "Validation"
	case KindCostError:
		return "CostError"
	case KindDecisionCacheError:
		return "DecisionCacheError"
	default:
		return "Unknown"
	}
}

// recoverableKinds are the error kinds the engine may skip past rather than
// fail the whole optimization on (spec §7's propagation policy): a rule
// misbehaving on one member shouldn't sink the run, but a torn memo should.
var recoverableKinds = map[Kind]bool{
	KindRuleApplicationFailed: true,
	KindCostError:             true,
}

// OptimizerError is the single error type every fallible optimizer
// operation returns, wrapping a Kind plus whatever detail applies (spec
// §7). It implements Unwrap so callers can still errors.Is/As through to
// the underlying cause.
type OptimizerError struct {
	Kind    Kind
	GroupID int64 // set for GroupNotFound / CycleDetected
	RuleName string // set for RuleApplicationFailed
	Detail  string
	Cause   error
}

func (e *OptimizerError) Error() string {
	switch e.Kind {
	case KindGroupNotFound:
		return fmt.Sprintf("optengine: group %d not found", e.GroupID)
	case KindRuleApplicationFailed:
		return fmt.Sprintf("optengine: rule %s failed: %s", e.RuleName, e.Detail)
	case KindCycleDetected:
		return fmt.Sprintf("optengine: cycle detected at node %d", e.GroupID)
	default:
		if e.Detail != "" {
			return fmt.Sprintf("optengine: %s: %s", e.Kind, e.Detail)
		}
		return fmt.Sprintf("optengine: %s", e.Kind)
	}
}

func (e *OptimizerError) Unwrap() error { return e.Cause }

// Recoverable reports whether the engine may skip past this error and
// continue the optimization rather than aborting it (spec §7).
func (e *OptimizerError) Recoverable() bool { return recoverableKinds[e.Kind] }

func errGroupNotFound(id int64) *OptimizerError {
	return &OptimizerError{Kind: KindGroupNotFound, GroupID: id}
}

func errNoViablePlan(detail string) *OptimizerError {
	return &OptimizerError{Kind: KindNoViablePlan, Detail: detail}
}

func errRuleFailed(ruleName string, cause error) *OptimizerError {
	return &OptimizerError{Kind: KindRuleApplicationFailed, RuleName: ruleName, Detail: cause.Error(), Cause: cause}
}

func errCycle(nodeID int64) *OptimizerError {
	return &OptimizerError{Kind: KindCycleDetected, GroupID: nodeID}
}

func errInvalidPlanStructure(cause error) *OptimizerError {
	return &OptimizerError{Kind: KindInvalidPlanStructure, Detail: cause.Error(), Cause: cause}
}

func errUnsupportedOperation(op string) *OptimizerError {
	return &OptimizerError{Kind: KindUnsupportedOperation, Detail: op}
}

func errValidation(cause error) *OptimizerError {
	return &OptimizerError{Kind: KindValidation, Detail: cause.Error(), Cause: cause}
}

func errDecisionCache(cause error) *OptimizerError {
	return &OptimizerError{Kind: KindDecisionCacheError, Detail: cause.Error(), Cause: cause}
}
