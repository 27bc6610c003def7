package match

import (
	"fmt"
	"regexp"

	"github.com/standardbeagle/gritql/internal/errors"
	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/symtab"
)

// Execute matches p against binding, threading state/ectx through every
// recursive call and appending diagnostics to logs. It is the counterpart
// to FromPattern: where FromPattern reads a pattern as a value, Execute
// tests a pattern as a constraint, binding variables as it succeeds.
func Execute(p pattern.Pattern, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	bindFileGlobals(binding, state, ectx)

	switch p := p.(type) {
	case pattern.Top:
		return true, nil
	case pattern.Bottom:
		return false, nil
	case pattern.Underscore:
		return true, nil
	case pattern.Dots:
		return false, fmt.Errorf("dots pattern used outside list position")

	case *pattern.And:
		for _, child := range p.Patterns {
			ok, err := Execute(child, binding, state, ectx, logs)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case *pattern.Or:
		return executeDisjunction(p.Patterns, binding, state, ectx, logs)
	case *pattern.Any:
		return executeDisjunction(p.Patterns, binding, state, ectx, logs)
	case *pattern.Not:
		snap := state.Save()
		ok, err := Execute(p.Inner, binding, state, ectx, logs)
		state.Restore(snap)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case *pattern.Maybe:
		snap := state.Save()
		ok, err := Execute(p.Inner, binding, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if !ok {
			state.Restore(snap)
		}
		return true, nil
	case *pattern.If:
		snap := state.Save()
		cond, err := ExecutePredicate(p.Predicate, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if cond {
			return Execute(p.Then, binding, state, ectx, logs)
		}
		state.Restore(snap)
		if p.Else == nil {
			return true, nil
		}
		return Execute(p.Else, binding, state, ectx, logs)
	case *pattern.Where:
		snap := state.Save()
		ok, err := Execute(p.Inner, binding, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if !ok {
			state.Restore(snap)
			return false, nil
		}
		ok, err = ExecutePredicate(p.Predicate, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if !ok {
			state.Restore(snap)
			return false, nil
		}
		return true, nil

	case *pattern.StringConstant, *pattern.IntConstant, *pattern.FloatConstant,
		*pattern.BooleanConstant, pattern.Undefined, *pattern.BinaryOp, *pattern.DynamicPattern:
		val, err := FromPattern(p, state, ectx, logs)
		if err != nil {
			return false, err
		}
		return Equal(val, binding, state, ectx)

	case *pattern.Regex:
		return executeRegex(p, binding, state, ectx, logs)
	case *pattern.RangePattern:
		return executeRange(p, binding)

	case *pattern.Assignment:
		v, err := FromPattern(p.Value, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if err := WriteContainer(p.Target, v, state); err != nil {
			return false, err
		}
		return Equal(v, binding, state, ectx)
	case *pattern.Accumulate:
		v, err := FromPattern(p.Right, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if err := AccumulateContainer(p.Left, v, state); err != nil {
			return false, err
		}
		return true, nil
	case *pattern.Rewrite:
		return executeRewrite(p, binding, state, ectx, logs)
	case *pattern.Log:
		text, err := logMessageText(p.Message, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if logs != nil {
			*logs = append(*logs, errors.AnalysisLog{Level: mapLevel(p.Level), Message: text})
		}
		return true, nil
	case *pattern.Sequential:
		for _, step := range p.Steps {
			ok, err := Execute(step, binding, state, ectx, logs)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case *pattern.FilePattern:
		return executeFilePattern(p, binding, state, ectx, logs)
	case *pattern.FilesPattern:
		items, ok := resolveSequence(binding)
		if !ok {
			return false, nil
		}
		return Execute(p.Inner, &pattern.ResolvedList{Items: items}, state, ectx, logs)
	case *pattern.Limit:
		prev := state.limitBudget
		state.limitBudget = p.N
		ok, err := Execute(p.Inner, binding, state, ectx, logs)
		state.limitBudget = prev
		return ok, err
	case *pattern.CallBuiltIn:
		return executeCallBuiltIn(p, binding, state, ectx, logs)

	case *pattern.VariablePattern:
		return executeVariable(p, binding, state, ectx, logs)

	case *pattern.AstNode:
		return executeAstNode(p, binding, state, ectx, logs)
	case *pattern.List:
		return executeList(p, binding, state, ectx, logs)
	case *pattern.Map:
		return executeMap(p, binding, state, ectx, logs)

	case *pattern.Contains:
		return executeContains(p, binding, state, ectx, logs)
	case *pattern.Within:
		return executeWithin(p, binding, state, ectx, logs)
	case *pattern.Some:
		return executeSome(p, binding, state, ectx, logs)
	case *pattern.Every:
		return executeEvery(p, binding, state, ectx, logs)
	case *pattern.Includes:
		return executeIncludes(p, binding, state, ectx, logs)
	case *pattern.After:
		// Positional enumeration order isn't tracked by this runtime;
		// After/Before degrade to their Inner constraint alone.
		return Execute(p.Inner, binding, state, ectx, logs)
	case *pattern.Before:
		return Execute(p.Inner, binding, state, ectx, logs)

	case *pattern.Like:
		return executeLike(p, binding, state, ectx, logs)

	case *pattern.Call:
		return executeCall(p, binding, state, ectx, logs)
	case *pattern.Bubble:
		return executeBubble(p, binding, state, ectx, logs)
	case *pattern.CallFunction:
		v, err := callFunction(p, state, ectx, logs)
		if err != nil {
			return false, err
		}
		return Equal(v, binding, state, ectx)
	case *pattern.CallForeignFunction:
		v, err := callForeignFunction(p, state, ectx, logs)
		if err != nil {
			return false, err
		}
		return Equal(v, binding, state, ectx)

	case *pattern.CodeSnippet:
		return executeCodeSnippet(p, binding, state, ectx, logs)

	default:
		return false, fmt.Errorf("pattern of type %T is not executable", p)
	}
}

func executeDisjunction(children []pattern.Pattern, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	for _, child := range children {
		snap := state.Save()
		ok, err := Execute(child, binding, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		state.Restore(snap)
	}
	return false, nil
}

// executeVariable implements first-occurrence-binds, subsequent-must-
// match: the slot's first successful execution captures binding
// unconditionally; every later occurrence of the same variable must
// denote the same content.
func executeVariable(p *pattern.VariablePattern, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	frame := state.Top(p.Var.Scope)
	slot := &frame[p.Var.Slot]
	if slot.Value == nil {
		slot.Value = binding
		return true, nil
	}
	eq, err := Equal(slot.Value, binding, state, ectx)
	if err != nil {
		return false, err
	}
	if !eq {
		logInfo(logs, fmt.Sprintf("variable %q did not match its existing binding", slot.Name))
	}
	return eq, nil
}

func executeRegex(p *pattern.Regex, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	text, err := Text(binding, state, ectx)
	if err != nil {
		return false, err
	}
	re, err := regexp.Compile(p.Source)
	if err != nil {
		return false, fmt.Errorf("invalid regex %q: %w", p.Source, err)
	}
	names := re.SubexpNames()
	match := re.FindStringSubmatch(text)
	if match == nil {
		return false, nil
	}
	for i, name := range names {
		inner, ok := p.Binding[name]
		if name == "" || !ok {
			continue
		}
		captured := &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstString, Str: match[i]}}
		ok, err := Execute(inner, captured, state, ectx, logs)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func executeRange(p *pattern.RangePattern, binding pattern.ResolvedPattern) (bool, error) {
	nb, ok := nodeBindingOf(binding)
	if !ok {
		return false, nil
	}
	r := p.Range
	return nb.Node.StartByte() == r.StartByte && nb.Node.EndByte() == r.EndByte, nil
}

// executeRewrite first confirms LHS structurally matches binding
// (capturing any variables LHS mentions), then records an effect
// replacing binding's single node with RHS's rendered value.
func executeRewrite(p *pattern.Rewrite, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	ok, err := Execute(p.LHS, binding, state, ectx, logs)
	if err != nil || !ok {
		return false, err
	}
	rb, ok := binding.(*pattern.ResolvedBinding)
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

func logMessageText(p pattern.Pattern, state *State, ectx *ExecContext, logs Logs) (string, error) {
	v, err := FromPattern(p, state, ectx, logs)
	if err != nil {
		return "", err
	}
	return Text(v, state, ectx)
}

func executeFilePattern(p *pattern.FilePattern, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	rf, ok := binding.(*pattern.ResolvedFile)
	if !ok {
		ok, err := Execute(p.Name, currentFileName(state), state, ectx, logs)
		if err != nil || !ok {
			return false, err
		}
		return Execute(p.Body, binding, state, ectx, logs)
	}
	ok, err := Execute(p.Name, rf.Name, state, ectx, logs)
	if err != nil || !ok {
		return false, err
	}
	return Execute(p.Body, rf.Body, state, ectx, logs)
}

func currentFileName(state *State) pattern.ResolvedPattern {
	return state.Top(symtab.GlobalScope)[symtab.SlotFilename].Value
}

func executeCodeSnippet(p *pattern.CodeSnippet, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	if nb, ok := nodeBindingOf(binding); ok {
		if inner, ok := p.PatternsBySort[nb.Node.Kind()]; ok {
			return Execute(inner, binding, state, ectx, logs)
		}
	}
	for _, inner := range p.PatternsBySort {
		snap := state.Save()
		ok, err := Execute(inner, binding, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		state.Restore(snap)
	}
	if p.Dynamic != nil {
		return Execute(p.Dynamic, binding, state, ectx, logs)
	}
	return false, nil
}

// bindFileGlobals mirrors the reference matcher's top-of-execute side
// effect: whenever binding carries a file, $filename/$absolute_filename
// /$program are (re)populated from it before the pattern is tested.
// This runtime tracks a single current file name/path on ExecContext
// rather than per-FilePtr absolute paths, so $filename and
// $absolute_filename currently read the same value.
func bindFileGlobals(binding pattern.ResolvedPattern, state *State, ectx *ExecContext) {
	ptr, ok := filePtrOf(binding)
	if !ok {
		return
	}
	frame := state.Top(symtab.GlobalScope)
	name := state.Files.Name(ptr)
	frame[symtab.SlotFilename].Value = &pattern.ResolvedBinding{Bindings: []pattern.Binding{&pattern.FileNameBinding{Path: name}}}
	absName := name
	if ectx.AbsoluteFileName != "" {
		absName = ectx.AbsoluteFileName
	}
	frame[symtab.SlotAbsoluteFilename].Value = &pattern.ResolvedBinding{Bindings: []pattern.Binding{&pattern.FileNameBinding{Path: absName}}}
	root := state.Files.Root(ptr)
	frame[symtab.SlotProgram].Value = &pattern.ResolvedBinding{Bindings: []pattern.Binding{&pattern.NodeBinding{File: ptr, Node: root}}}
}

func filePtrOf(r pattern.ResolvedPattern) (pattern.FilePtr, bool) {
	rb, ok := r.(*pattern.ResolvedBinding)
	if !ok || len(rb.Bindings) == 0 {
		return pattern.FilePtr{}, false
	}
	switch b := rb.Bindings[0].(type) {
	case *pattern.NodeBinding:
		return b.File, true
	case *pattern.ListBinding:
		return b.File, true
	case *pattern.StringBinding:
		return b.File, true
	case *pattern.EmptyBinding:
		return b.File, true
	}
	return pattern.FilePtr{}, false
}
