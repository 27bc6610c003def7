package match

import (
	"fmt"

	"github.com/standardbeagle/gritql/internal/pattern"
)

// consumeLimit reports whether a recursive step is still within the
// innermost active Limit's budget, decrementing it on success.
// limitBudget of -1 means unbounded.
func consumeLimit(state *State) bool {
	if state.limitBudget < 0 {
		return true
	}
	if state.limitBudget == 0 {
		return false
	}
	state.limitBudget--
	return true
}

func executeCall(p *pattern.Call, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	if p.DefinitionIndex < 0 || p.DefinitionIndex >= len(ectx.PatternDefs) {
		return false, fmt.Errorf("call to undefined pattern index %d", p.DefinitionIndex)
	}
	if !consumeLimit(state) {
		return false, nil
	}
	def := ectx.PatternDefs[p.DefinitionIndex]
	state.PushFrame(def.Scope, ectx.Scopes.ScopeSize(def.Scope))
	defer state.PopFrame(def.Scope)
	if err := bindParameters(def, p.Args, state, ectx, logs); err != nil {
		return false, err
	}
	return Execute(def.PatternBody, binding, state, ectx, logs)
}

// executeBubble delegates directly to Definition. Bubble's compiled
// form shares its enclosing scope with the pattern it wraps (see
// internal/compiler's autoWrap), so there is no separate activation
// frame to isolate here; callers that need isolation already get it
// from Contains/Or's snapshot-restore around each attempt.
func executeBubble(p *pattern.Bubble, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	return Execute(p.Definition, binding, state, ectx, logs)
}

// bindParameters fills the already-pushed frame for def.Scope with
// each argument's resolved value, positionally.
func bindParameters(def pattern.Definition, args []pattern.Pattern, state *State, ectx *ExecContext, logs Logs) error {
	frame := state.Top(def.Scope)
	for i, param := range def.Parameters {
		frame[i].Name = param.Name
		if i >= len(args) {
			continue
		}
		v, err := FromPattern(args[i], state, ectx, logs)
		if err != nil {
			return err
		}
		if c, ok := v.(*pattern.ResolvedConstant); ok && c.Value.Kind == pattern.ConstUndefined {
			continue
		}
		frame[i].Value = v
	}
	return nil
}

func callFunction(p *pattern.CallFunction, state *State, ectx *ExecContext, logs Logs) (pattern.ResolvedPattern, error) {
	if p.DefinitionIndex < 0 || p.DefinitionIndex >= len(ectx.FunctionDefs) {
		return nil, fmt.Errorf("call to undefined function index %d", p.DefinitionIndex)
	}
	def := ectx.FunctionDefs[p.DefinitionIndex]
	state.PushFrame(def.Scope, ectx.Scopes.ScopeSize(def.Scope))
	defer state.PopFrame(def.Scope)
	if err := bindParameters(def, p.Args, state, ectx, logs); err != nil {
		return nil, err
	}
	return executeFunctionBody(def.FunctionBody, state, ectx, logs)
}

// executeFunctionBody runs a function's statement list, returning the
// value of the first PredReturn reached, or undefined if the body
// finishes (or a statement fails) without one.
func executeFunctionBody(body pattern.Predicate, state *State, ectx *ExecContext, logs Logs) (pattern.ResolvedPattern, error) {
	stmts := []pattern.Predicate{body}
	if and, ok := body.(*pattern.PredAnd); ok {
		stmts = and.Predicates
	}
	for _, stmt := range stmts {
		if ret, ok := stmt.(*pattern.PredReturn); ok {
			return FromPattern(ret.Value, state, ectx, logs)
		}
		ok, err := ExecutePredicate(stmt, state, ectx, logs)
		if err != nil {
			return nil, err
		}
		if !ok {
			return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}}, nil
		}
	}
	return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}}, nil
}

func callForeignFunction(p *pattern.CallForeignFunction, state *State, ectx *ExecContext, logs Logs) (pattern.ResolvedPattern, error) {
	if p.DefinitionIndex < 0 || p.DefinitionIndex >= len(ectx.ForeignFunctionDefs) {
		return nil, fmt.Errorf("call to undefined foreign function index %d", p.DefinitionIndex)
	}
	if ectx.ForeignFunctionRunner == nil {
		return nil, fmt.Errorf("no foreign function runner configured")
	}
	def := ectx.ForeignFunctionDefs[p.DefinitionIndex]
	args := make([]string, len(p.Args))
	for i, a := range p.Args {
		v, err := FromPattern(a, state, ectx, logs)
		if err != nil {
			return nil, err
		}
		t, err := Text(v, state, ectx)
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	out, err := ectx.ForeignFunctionRunner.Run(def.ForeignFunctionCall.Command, args)
	if err != nil {
		return nil, err
	}
	return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstString, Str: out}}, nil
}
