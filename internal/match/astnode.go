package match

import (
	"github.com/standardbeagle/gritql/internal/pattern"
)

func executeAstNode(p *pattern.AstNode, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	rb, ok := binding.(*pattern.ResolvedBinding)
	if !ok || len(rb.Bindings) != 1 {
		return false, nil
	}
	nb, ok := rb.Bindings[0].(*pattern.NodeBinding)
	if !ok {
		return false, nil
	}
	if nb.Node.Kind() != p.Sort {
		return false, nil
	}
	for _, field := range p.Fields {
		ok, err := executeFieldPattern(field, nb, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func executeFieldPattern(field pattern.FieldPattern, nb *pattern.NodeBinding, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	if field.Multiple {
		listBinding := &pattern.ResolvedBinding{Bindings: []pattern.Binding{
			&pattern.ListBinding{File: nb.File, Parent: nb.Node, FieldID: field.FieldID},
		}}
		return Execute(field.Value, listBinding, state, ectx, logs)
	}
	child, ok := nb.Node.ChildByFieldName(field.FieldID)
	if !ok {
		empty := &pattern.ResolvedBinding{Bindings: []pattern.Binding{
			&pattern.EmptyBinding{File: nb.File, Parent: nb.Node, FieldID: field.FieldID},
		}}
		return Execute(field.Value, empty, state, ectx, logs)
	}
	childBinding := &pattern.ResolvedBinding{Bindings: []pattern.Binding{
		&pattern.NodeBinding{File: nb.File, Node: child},
	}}
	return Execute(field.Value, childBinding, state, ectx, logs)
}
