package match

import (
	"fmt"

	"github.com/standardbeagle/gritql/internal/pattern"
)

// ReadContainer evaluates c in read position: the variable's current
// binding, a map's keyed entry, a list's indexed element, or a function
// call's return value.
func ReadContainer(c pattern.Container, state *State, ectx *ExecContext, logs Logs) (pattern.ResolvedPattern, error) {
	switch c := c.(type) {
	case *pattern.VariableContainer:
		return FromPattern(&pattern.VariablePattern{Var: c.Var}, state, ectx, logs)
	case *pattern.Accessor:
		base, err := ReadContainer(c.Map, state, ectx, logs)
		if err != nil {
			return nil, err
		}
		m, ok := base.(*pattern.ResolvedMap)
		if !ok {
			return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}}, nil
		}
		v, ok := m.Entries[c.Key]
		if !ok {
			return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}}, nil
		}
		return v, nil
	case *pattern.ListIndex:
		base, err := ReadContainer(c.List, state, ectx, logs)
		if err != nil {
			return nil, err
		}
		l, ok := base.(*pattern.ResolvedList)
		if !ok {
			return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}}, nil
		}
		idx, ok := normalizeIndex(c.Index, len(l.Items))
		if !ok {
			return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}}, nil
		}
		return l.Items[idx], nil
	case *pattern.FunctionCallContainer:
		return callFunction(c.Call, state, ectx, logs)
	default:
		return nil, fmt.Errorf("unsupported container type %T", c)
	}
}

// WriteContainer binds value at c's address: a variable slot, a map
// entry (creating the map if the variable was previously unbound), or a
// list element (creating/extending the list if needed).
func WriteContainer(c pattern.Container, value pattern.ResolvedPattern, state *State) error {
	switch c := c.(type) {
	case *pattern.VariableContainer:
		frame := state.Top(c.Var.Scope)
		frame[c.Var.Slot].Value = value
		return nil
	case *pattern.Accessor:
		base, err := readOrInitMap(c.Map, state)
		if err != nil {
			return err
		}
		base.Entries[c.Key] = value
		return writeBack(c.Map, base, state)
	case *pattern.ListIndex:
		base, err := readOrInitList(c.List, state)
		if err != nil {
			return err
		}
		idx, ok := normalizeIndex(c.Index, len(base.Items))
		if !ok {
			for len(base.Items) <= indexOrZero(c.Index) {
				base.Items = append(base.Items, &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}})
			}
			idx, _ = normalizeIndex(c.Index, len(base.Items))
		}
		base.Items[idx] = value
		return writeBack(c.List, base, state)
	case *pattern.FunctionCallContainer:
		return fmt.Errorf("cannot assign through a function call")
	default:
		return fmt.Errorf("unsupported container type %T", c)
	}
}

// AccumulateContainer appends value to the list bound at c (`+=`),
// initializing an empty list the first time a variable is accumulated
// into.
func AccumulateContainer(c pattern.Container, value pattern.ResolvedPattern, state *State) error {
	base, err := readOrInitList(c, state)
	if err != nil {
		return err
	}
	base.Items = append(base.Items, value)
	return writeBack(c, base, state)
}

func readOrInitMap(c pattern.Container, state *State) (*pattern.ResolvedMap, error) {
	v, err := ReadContainer(c, state, nil, nil)
	if err != nil {
		return nil, err
	}
	if m, ok := v.(*pattern.ResolvedMap); ok {
		return m, nil
	}
	return &pattern.ResolvedMap{Entries: make(map[string]pattern.ResolvedPattern)}, nil
}

func readOrInitList(c pattern.Container, state *State) (*pattern.ResolvedList, error) {
	v, err := ReadContainer(c, state, nil, nil)
	if err != nil {
		return nil, err
	}
	if l, ok := v.(*pattern.ResolvedList); ok {
		return l, nil
	}
	return &pattern.ResolvedList{}, nil
}

func writeBack(c pattern.Container, value pattern.ResolvedPattern, state *State) error {
	return WriteContainer(c, value, state)
}

func normalizeIndex(index, length int) (int, bool) {
	i := index
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

func indexOrZero(index int) int {
	if index < 0 {
		return 0
	}
	return index
}
