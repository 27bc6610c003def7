package match

import "github.com/standardbeagle/gritql/internal/pattern"

// resolveSequence flattens binding into an ordered slice of resolved
// items the list matcher can index into: a literal ResolvedList as-is,
// or a ListBinding (a grammar field's children, addressed as a unit)
// expanded into one NodeBinding-wrapped value per child.
func resolveSequence(binding pattern.ResolvedPattern) ([]pattern.ResolvedPattern, bool) {
	switch v := binding.(type) {
	case *pattern.ResolvedList:
		return v.Items, true
	case *pattern.ResolvedFiles:
		items := make([]pattern.ResolvedPattern, len(v.Files))
		for i := range v.Files {
			items[i] = &v.Files[i]
		}
		return items, true
	case *pattern.ResolvedBinding:
		if len(v.Bindings) != 1 {
			return nil, false
		}
		lb, ok := v.Bindings[0].(*pattern.ListBinding)
		if !ok {
			return nil, false
		}
		children := FieldChildren(lb.Parent, lb.FieldID)
		items := make([]pattern.ResolvedPattern, len(children))
		for i, c := range children {
			items[i] = &pattern.ResolvedBinding{Bindings: []pattern.Binding{
				&pattern.NodeBinding{File: lb.File, Node: c},
			}}
		}
		return items, true
	default:
		return nil, false
	}
}

func executeList(p *pattern.List, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	items, ok := resolveSequence(binding)
	if !ok {
		return false, nil
	}
	return matchSequence(p.Elements, items, state, ectx, logs)
}

// matchSequence matches elems (which may contain Dots wildcards) against
// items, backtracking over how many items a Dots run absorbs.
func matchSequence(elems []pattern.Pattern, items []pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	if len(elems) == 0 {
		return len(items) == 0, nil
	}
	head := elems[0]
	if isDots(head) {
		for k := 0; k <= len(items); k++ {
			snap := state.Save()
			ok, err := matchSequence(elems[1:], items[k:], state, ectx, logs)
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
	if len(items) == 0 {
		return false, nil
	}
	ok, err := Execute(head, items[0], state, ectx, logs)
	if err != nil || !ok {
		return false, err
	}
	return matchSequence(elems[1:], items[1:], state, ectx, logs)
}

func executeMap(p *pattern.Map, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	m, ok := binding.(*pattern.ResolvedMap)
	if !ok {
		return false, nil
	}
	for key, want := range p.Entries {
		got, present := m.Entries[key]
		if !present {
			got = &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}}
		}
		ok, err := Execute(want, got, state, ectx, logs)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
