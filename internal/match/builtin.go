package match

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/gritql/internal/pattern"
)

// executeCallBuiltIn evaluates one of the small set of stdlib pattern
// constructors (string/list helpers that don't need their own Pattern
// variant), then matches its result against binding the same way a
// constant pattern does: compute the value, compare with Equal.
func executeCallBuiltIn(p *pattern.CallBuiltIn, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	if p.Index < 0 || p.Index >= len(ectx.BuiltinNames) {
		return false, fmt.Errorf("call to unregistered built-in index %d", p.Index)
	}
	name := ectx.BuiltinNames[p.Index]

	args := make([]pattern.ResolvedPattern, len(p.Args))
	for i, a := range p.Args {
		v, err := FromPattern(a, state, ectx, logs)
		if err != nil {
			return false, err
		}
		args[i] = v
	}

	result, err := evalBuiltin(name, args, state, ectx)
	if err != nil {
		return false, err
	}
	return Equal(result, binding, state, ectx)
}

func evalBuiltin(name string, args []pattern.ResolvedPattern, state *State, ectx *ExecContext) (pattern.ResolvedPattern, error) {
	switch name {
	case "lowercase":
		s, err := argText(args, 0, state, ectx)
		if err != nil {
			return nil, err
		}
		return stringConst(strings.ToLower(s)), nil
	case "uppercase":
		s, err := argText(args, 0, state, ectx)
		if err != nil {
			return nil, err
		}
		return stringConst(strings.ToUpper(s)), nil
	case "capitalize":
		s, err := argText(args, 0, state, ectx)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return stringConst(s), nil
		}
		return stringConst(strings.ToUpper(s[:1]) + s[1:]), nil
	case "trim":
		s, err := argText(args, 0, state, ectx)
		if err != nil {
			return nil, err
		}
		return stringConst(strings.TrimSpace(s)), nil
	case "join":
		if len(args) < 1 {
			return nil, fmt.Errorf("join() requires a list argument")
		}
		items, ok := resolveSequence(args[0])
		if !ok {
			return nil, fmt.Errorf("join()'s first argument is not a list")
		}
		sep := ", "
		if len(args) > 1 {
			s, err := argText(args, 1, state, ectx)
			if err != nil {
				return nil, err
			}
			sep = s
		}
		parts := make([]string, len(items))
		for i, item := range items {
			t, err := Text(item, state, ectx)
			if err != nil {
				return nil, err
			}
			parts[i] = t
		}
		return stringConst(strings.Join(parts, sep)), nil
	case "distinct":
		if len(args) < 1 {
			return nil, fmt.Errorf("distinct() requires a list argument")
		}
		items, ok := resolveSequence(args[0])
		if !ok {
			return nil, fmt.Errorf("distinct()'s first argument is not a list")
		}
		seen := make(map[string]bool, len(items))
		out := make([]pattern.ResolvedPattern, 0, len(items))
		for _, item := range items {
			t, err := Text(item, state, ectx)
			if err != nil {
				return nil, err
			}
			if seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, item)
		}
		return &pattern.ResolvedList{Items: out}, nil
	case "length":
		if len(args) < 1 {
			return nil, fmt.Errorf("length() requires a list argument")
		}
		items, ok := resolveSequence(args[0])
		if !ok {
			return nil, fmt.Errorf("length()'s argument is not a list")
		}
		return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstInt, Int: int64(len(items))}}, nil
	default:
		return nil, fmt.Errorf("unknown built-in pattern %q", name)
	}
}

func argText(args []pattern.ResolvedPattern, i int, state *State, ectx *ExecContext) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("missing argument %d", i)
	}
	return Text(args[i], state, ectx)
}

func stringConst(s string) *pattern.ResolvedConstant {
	return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstString, Str: s}}
}
