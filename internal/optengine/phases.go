package optengine

import (
	"github.com/kkkqkx123/graphdb-optimizer/internal/memo"
	"github.com/kkkqkx123/graphdb-optimizer/internal/rule"
)

// PhaseOrder is the fixed sequence the driver runs phases in (spec §4.5):
// rewrites first collapse redundant shape, logical rules pick access
// paths once the shape has settled, and physical rules pick concrete
// algorithms last, when cardinalities are most trustworthy.
var PhaseOrder = []rule.Phase{rule.PhaseRewrite, rule.PhaseLogical, rule.PhasePhysical}

// RunPhases runs every phase in PhaseOrder to convergence against ctx's
// memo, in registration order within each phase. deadlineExceeded, when
// non-nil, is polled between phases and before each rule's traversal
// (spec §5); once it reports true the driver stops applying further
// rules and returns truncated=true rather than erroring, so the caller
// can still extract whatever plan the memo has so far. Every rule name
// that actually fires (spec §4.7's decision-cache "rewrite_rules") is
// appended to fired, in firing order, duplicates included.
func RunPhases(ctx *memo.OptContext, reg *rule.Registry, cfg *OptimizationConfig, deadlineExceeded func() bool, warnings *[]string, fired *[]rule.Name) (truncated bool, err error) {
	budget := cfg.MaxExplorationRounds
	if budget <= 0 {
		budget = 128
	}
	for _, phase := range PhaseOrder {
		if deadlineExceeded != nil && deadlineExceeded() {
			*warnings = append(*warnings, "optimization truncated: deadline exceeded before phase "+phase.String())
			return true, nil
		}
		t, err := runPhase(ctx, reg, phase, cfg, budget, deadlineExceeded, warnings, fired)
		if err != nil {
			return false, err
		}
		if t {
			return true, nil
		}
	}
	return false, nil
}

func runPhase(ctx *memo.OptContext, reg *rule.Registry, phase rule.Phase, cfg *OptimizationConfig, budget int, deadlineExceeded func() bool, warnings *[]string, fired *[]rule.Name) (bool, error) {
	active := activeRules(reg, phase, cfg)
	if len(active) == 0 {
		return false, nil
	}

	maxRounds := cfg.MaxIterationRounds
	if maxRounds <= 0 {
		maxRounds = 16
	}
	minRounds := cfg.MinIterationRounds
	stableCount := 0

	for round := 1; round <= maxRounds; round++ {
		if deadlineExceeded != nil && deadlineExceeded() {
			*warnings = append(*warnings, "optimization truncated: deadline exceeded during phase "+phase.String())
			return true, nil
		}
		ctx.ResetChanged()
		for _, r := range active {
			if deadlineExceeded != nil && deadlineExceeded() {
				*warnings = append(*warnings, "optimization truncated: deadline exceeded during phase "+phase.String())
				return true, nil
			}
			resetVisited(ctx)
			if _, err := exploreRuleFromRoot(ctx, ctx.RootGroup(), r, budget, warnings, fired); err != nil {
				return false, err
			}
			resetVisited(ctx)
		}

		if round < minRounds {
			continue
		}
		if !ctx.Changed() {
			stableCount++
		} else {
			stableCount = 0
		}
		if cfg.EnableAdaptiveIteration && stableCount >= cfg.StableThreshold {
			break
		}
		if !cfg.EnableAdaptiveIteration && !ctx.Changed() {
			break
		}
	}
	return false, nil
}

// activeRules returns phase's registered rules filtered by the config's
// enabled/disabled lists, in registration order.
func activeRules(reg *rule.Registry, phase rule.Phase, cfg *OptimizationConfig) []rule.Rule {
	all := reg.ForPhase(phase)
	enabled := cfg.enabledSet()
	disabled := cfg.disabledSet()
	out := make([]rule.Rule, 0, len(all))
	for _, r := range all {
		if cfg.ruleAllowed(r.Name(), enabled, disabled) {
			out = append(out, r)
		}
	}
	return out
}

// resetVisited clears every group's transient visited bit, done before
// and after each rule's traversal (spec §4.5).
func resetVisited(ctx *memo.OptContext) {
	for _, gid := range ctx.AllGroups() {
		if g, ok := ctx.Group(gid); ok {
			g.SetVisited(false)
		}
	}
}

// exploreRuleFromRoot implements spec §4.5's "exploration of one
// group/rule": recurse into dependency groups first (post-order), then
// repeatedly apply r to gid's own members until a full pass fires
// nothing or budget passes are exhausted. Firing a rule rearms the group
// so later passes (and later rules) see the new member.
func exploreRuleFromRoot(ctx *memo.OptContext, gid memo.GroupID, r rule.Rule, budget int, warnings *[]string, fired *[]rule.Name) (bool, error) {
	group, ok := ctx.Group(gid)
	if !ok {
		return false, errGroupNotFound(int64(gid))
	}
	if group.Visited() {
		return false, nil
	}
	group.SetVisited(true)

	changed := false
	seenDeps := make(map[memo.GroupID]bool)
	for _, m := range group.Members() {
		for _, dep := range m.Dependencies() {
			if seenDeps[dep] {
				continue
			}
			seenDeps[dep] = true
			c, err := exploreRuleFromRoot(ctx, dep, r, budget, warnings, fired)
			if err != nil {
				return changed, err
			}
			changed = changed || c
		}
	}

	name := string(r.Name())
	for pass := 0; pass < budget; pass++ {
		firedThisPass := false
		for _, m := range group.Members() {
			if m.Explored(name) {
				continue
			}
			if !rule.Matches(ctx, r.Pattern(), m) {
				continue
			}
			result, err := r.Apply(ctx, m)
			if err != nil {
				oerr := errRuleFailed(name, err)
				if !oerr.Recoverable() {
					return changed, oerr
				}
				*warnings = append(*warnings, oerr.Error())
				m.MarkExplored(name)
				continue
			}
			if result.IsEmpty() {
				m.MarkExplored(name)
				continue
			}
			applyTransform(ctx, gid, m, result)
			ctx.RearmGroup(gid)
			ctx.SetChanged()
			if fired != nil {
				*fired = append(*fired, r.Name())
			}
			changed = true
			firedThisPass = true
			break // member set mutated; restart the pass over the live set
		}
		if !firedThisPass {
			break
		}
	}
	return changed, nil
}

// applyTransform installs result's effects into the memo on behalf of the
// member that produced it (spec §4.4/§4.5).
func applyTransform(ctx *memo.OptContext, groupID memo.GroupID, member *memo.OptGroupNode, result *rule.TransformResult) {
	installed := make(map[int64]bool, len(result.NewGroupNodes))
	for _, ngn := range result.NewGroupNodes {
		nm := ctx.AddMember(groupID, ngn.Node, ngn.Dependencies)
		installed[nm.ID()] = true
	}
	if result.EraseAll {
		ctx.EraseAllExcept(groupID, installed)
	}
	if result.EraseCurr {
		ctx.EraseMember(member.ID())
	}
	if len(result.NewDependencies) > 0 {
		// OptGroupNode exposes no in-place dependency mutator, so the
		// "append in place" instruction is realized as replacing the
		// member with an equivalent one carrying the extended
		// dependency list; AlreadyPresent still guards against
		// reintroducing a duplicate shape.
		deps := append(append([]memo.GroupID(nil), member.Dependencies()...), result.NewDependencies...)
		if !rule.AlreadyPresent(ctx, groupID, member.PlanNode(), deps) {
			ctx.AddMember(groupID, member.PlanNode(), deps)
		}
		ctx.EraseMember(member.ID())
	}
}
