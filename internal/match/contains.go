package match

import (
	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/pattern"
)

// nodeBindingOf extracts the single NodeBinding a resolved value is
// anchored to, when it has exactly one.
func nodeBindingOf(r pattern.ResolvedPattern) (*pattern.NodeBinding, bool) {
	rb, ok := r.(*pattern.ResolvedBinding)
	if !ok || len(rb.Bindings) != 1 {
		return nil, false
	}
	nb, ok := rb.Bindings[0].(*pattern.NodeBinding)
	return nb, ok
}

func nodeTarget(file pattern.FilePtr, n lang.Node) pattern.ResolvedPattern {
	return &pattern.ResolvedBinding{Bindings: []pattern.Binding{&pattern.NodeBinding{File: file, Node: n}}}
}

func executeContains(p *pattern.Contains, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	nb, ok := nodeBindingOf(binding)
	if !ok {
		return false, nil
	}
	return tryContainsNode(p, nb.File, nb.Node, state, ectx, logs)
}

func tryContainsNode(p *pattern.Contains, file pattern.FilePtr, node lang.Node, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	target := nodeTarget(file, node)

	snap := state.Save()
	ok, err := Execute(p.Inner, target, state, ectx, logs)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	state.Restore(snap)

	if p.Until != nil {
		snap2 := state.Save()
		stop, err := Execute(p.Until, target, state, ectx, logs)
		state.Restore(snap2)
		if err != nil {
			return false, err
		}
		if stop {
			return false, nil
		}
	}

	for i := 0; i < node.ChildCount(); i++ {
		child, ok := node.Child(i)
		if !ok || !child.IsNamed() {
			continue
		}
		found, err := tryContainsNode(p, file, child, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

// findPath returns the chain of nodes from root down to (and including)
// the innermost node whose byte range exactly bounds [start, end); used
// to enumerate a target node's ancestors for Within, since the Node
// interface has no parent pointer.
func findPath(root lang.Node, start, end uint32) []lang.Node {
	if root.StartByte() > start || root.EndByte() < end {
		return nil
	}
	path := []lang.Node{root}
	for i := 0; i < root.ChildCount(); i++ {
		child, ok := root.Child(i)
		if !ok {
			continue
		}
		if child.StartByte() <= start && child.EndByte() >= end {
			path = append(path, findPath(child, start, end)[1:]...)
			break
		}
	}
	return path
}

func executeWithin(p *pattern.Within, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	nb, ok := nodeBindingOf(binding)
	if !ok {
		return false, nil
	}
	root := state.Files.Root(nb.File)
	path := findPath(root, nb.Node.StartByte(), nb.Node.EndByte())
	if len(path) == 0 {
		return false, nil
	}
	ancestors := path[:len(path)-1]
	for i := len(ancestors) - 1; i >= 0; i-- {
		target := nodeTarget(nb.File, ancestors[i])
		snap := state.Save()
		ok, err := Execute(p.Inner, target, state, ectx, logs)
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

func executeSome(p *pattern.Some, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	items, ok := resolveSequence(binding)
	if !ok {
		return false, nil
	}
	for _, item := range items {
		snap := state.Save()
		ok, err := Execute(p.Inner, item, state, ectx, logs)
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

func executeEvery(p *pattern.Every, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	items, ok := resolveSequence(binding)
	if !ok {
		return false, nil
	}
	snap := state.Save()
	for _, item := range items {
		ok, err := Execute(p.Inner, item, state, ectx, logs)
		if err != nil {
			return false, err
		}
		if !ok {
			state.Restore(snap)
			return false, nil
		}
	}
	return true, nil
}

// executeIncludes reports whether Inner matches some element of a
// sequence or some value of a map, without requiring Includes' caller
// to know which shape binding has.
func executeIncludes(p *pattern.Includes, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	if items, ok := resolveSequence(binding); ok {
		for _, item := range items {
			snap := state.Save()
			ok, err := Execute(p.Inner, item, state, ectx, logs)
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
	if m, ok := binding.(*pattern.ResolvedMap); ok {
		for _, v := range m.Entries {
			snap := state.Save()
			ok, err := Execute(p.Inner, v, state, ectx, logs)
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
	return false, nil
}
