package match

import (
	"fmt"

	"github.com/standardbeagle/gritql/internal/errors"
	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/symtab"
)

// ExecutePredicate evaluates a Predicate, threading the same State and
// ExecContext Execute uses for Patterns. Predicates have no external
// match target of their own; constructs that need "the thing currently
// being considered" (PredMatch, a bare pattern used as a predicate)
// read the reserved global $match slot the way a `where` clause body
// does after its enclosing pattern bound it.
func ExecutePredicate(p pattern.Predicate, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	switch p := p.(type) {
	case *pattern.PredAnd:
		for _, child := range p.Predicates {
			ok, err := ExecutePredicate(child, state, ectx, logs)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case *pattern.PredOr, *pattern.PredAny:
		children := predicateChildren(p)
		for _, child := range children {
			snap := state.Save()
			ok, err := ExecutePredicate(child, state, ectx, logs)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
			state.Restore(snap)
		}
		return false, nil
	case *pattern.PredNot:
		snap := state.Save()
		ok, err := ExecutePredicate(p.Inner, state, ectx, logs)
		state.Restore(snap)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case *pattern.PredMaybe:
		snap := state.Save()
		ok, err := ExecutePredicate(p.Inner, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if !ok {
			state.Restore(snap)
		}
		return true, nil
	case *pattern.PredIf:
		snap := state.Save()
		cond, err := ExecutePredicate(p.Predicate, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if cond {
			return ExecutePredicate(p.Then, state, ectx, logs)
		}
		state.Restore(snap)
		if p.Else == nil {
			return true, nil
		}
		return ExecutePredicate(p.Else, state, ectx, logs)
	case *pattern.PredMatch:
		return executePredMatch(p, state, ectx, logs)
	case *pattern.PredEqual:
		lv, err := FromPattern(p.Left, state, ectx, logs)
		if err != nil {
			return false, err
		}
		rv, err := FromPattern(p.Right, state, ectx, logs)
		if err != nil {
			return false, err
		}
		return Equal(lv, rv, state, ectx)
	case *pattern.PredAssignment:
		v, err := FromPattern(p.Value, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if err := WriteContainer(p.Target, v, state); err != nil {
			return false, err
		}
		return true, nil
	case *pattern.PredAccumulate:
		v, err := FromPattern(p.Value, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if err := AccumulateContainer(p.Target, v, state); err != nil {
			return false, err
		}
		return true, nil
	case *pattern.PredCall:
		return executePredCall(p, state, ectx, logs)
	case pattern.PredTrue:
		return true, nil
	case pattern.PredFalse:
		return false, nil
	case *pattern.PredRewrite:
		return executePredRewrite(p, state, ectx, logs)
	case *pattern.PredReturn:
		// Reached only when a return appears outside a function body
		// (e.g. a predicate definition); there is nowhere to deliver the
		// value, so it is evaluated for its side effects and discarded.
		_, err := FromPattern(p.Value, state, ectx, logs)
		return err == nil, err
	case *pattern.PredLog:
		return executePredLog(p, state, ectx, logs)
	default:
		return false, fmt.Errorf("unsupported predicate type %T", p)
	}
}

func predicateChildren(p pattern.Predicate) []pattern.Predicate {
	switch p := p.(type) {
	case *pattern.PredOr:
		return p.Predicates
	case *pattern.PredAny:
		return p.Predicates
	default:
		return nil
	}
}

func executePredMatch(p *pattern.PredMatch, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	current, err := FromPattern(&pattern.VariablePattern{Var: symtab.Variable{Scope: symtab.GlobalScope, Slot: symtab.SlotMatch}}, state, ectx, logs)
	if err != nil {
		return false, err
	}
	ok, err := Execute(p.Target, current, state, ectx, logs)
	if err != nil || !ok {
		return false, err
	}
	return Execute(p.Value, current, state, ectx, logs)
}

func executePredCall(p *pattern.PredCall, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	if p.DefinitionIndex < 0 || p.DefinitionIndex >= len(ectx.PredicateDefs) {
		return false, fmt.Errorf("call to undefined predicate index %d", p.DefinitionIndex)
	}
	if !consumeLimit(state) {
		return false, nil
	}
	def := ectx.PredicateDefs[p.DefinitionIndex]
	state.PushFrame(def.Scope, ectx.Scopes.ScopeSize(def.Scope))
	defer state.PopFrame(def.Scope)
	if err := bindParameters(def, p.Args, state, ectx, logs); err != nil {
		return false, err
	}
	return ExecutePredicate(def.PredicateBody, state, ectx, logs)
}

func executePredRewrite(p *pattern.PredRewrite, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	lv, err := FromPattern(p.LHS, state, ectx, logs)
	if err != nil {
		return false, err
	}
	rb, ok := lv.(*pattern.ResolvedBinding)
	if !ok || len(rb.Bindings) != 1 {
		return false, fmt.Errorf("rewrite target has no single binding to replace")
	}
	rv, err := FromPattern(p.RHS, state, ectx, logs)
	if err != nil {
		return false, err
	}
	state.Effects = append(state.Effects, pattern.Effect{Binding: rb.Bindings[0], Replacement: rv, Kind: pattern.EffectRewrite})
	return true, nil
}

func executePredLog(p *pattern.PredLog, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	v, err := FromPattern(p.Message, state, ectx, logs)
	if err != nil {
		return false, err
	}
	text, err := Text(v, state, ectx)
	if err != nil {
		return false, err
	}
	if logs != nil {
		*logs = append(*logs, errors.AnalysisLog{Level: mapLevel(p.Level), Message: text})
	}
	return true, nil
}

func mapLevel(level int) errors.Level {
	switch {
	case level >= int(errors.LevelDebug):
		return errors.LevelDebug
	case level >= int(errors.LevelInfo):
		return errors.LevelInfo
	case level >= int(errors.LevelWarn):
		return errors.LevelWarn
	default:
		return errors.LevelError
	}
}
