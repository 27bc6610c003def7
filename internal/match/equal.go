package match

import "github.com/standardbeagle/gritql/internal/pattern"

// Equal reports whether two resolved values denote the same content:
// constants compare by value, everything else compares by rendered
// text (mirroring the original's fallback to source-text equality for
// bindings that aren't simple scalars).
func Equal(a, b pattern.ResolvedPattern, state *State, ectx *ExecContext) (bool, error) {
	ac, aok := a.(*pattern.ResolvedConstant)
	bc, bok := b.(*pattern.ResolvedConstant)
	if aok && bok {
		return constantsEqual(ac.Value, bc.Value), nil
	}
	at, err := Text(a, state, ectx)
	if err != nil {
		return false, err
	}
	bt, err := Text(b, state, ectx)
	if err != nil {
		return false, err
	}
	return at == bt, nil
}

func constantsEqual(a, b pattern.Constant) bool {
	if a.Kind == pattern.ConstUndefined || b.Kind == pattern.ConstUndefined {
		return a.Kind == b.Kind
	}
	if a.Kind != b.Kind {
		// Allow cross int/float comparison since QL arithmetic freely
		// promotes between them.
		af, aok := numeric(a)
		bf, bok := numeric(b)
		return aok && bok && af == bf
	}
	switch a.Kind {
	case pattern.ConstString:
		return a.Str == b.Str
	case pattern.ConstInt:
		return a.Int == b.Int
	case pattern.ConstFloat:
		return a.Float == b.Float
	case pattern.ConstBool:
		return a.Bool == b.Bool
	}
	return false
}

func numeric(c pattern.Constant) (float64, bool) {
	switch c.Kind {
	case pattern.ConstInt:
		return float64(c.Int), true
	case pattern.ConstFloat:
		return c.Float, true
	}
	return 0, false
}

// matchesUndefined reports whether r denotes the undefined constant,
// is nil, or is a binding made up only of EmptyBindings (the state an
// absent optional field collapses to).
func matchesUndefined(r pattern.ResolvedPattern) bool {
	switch r := r.(type) {
	case *pattern.ResolvedConstant:
		return r.Value.Kind == pattern.ConstUndefined
	case *pattern.ResolvedBinding:
		for _, b := range r.Bindings {
			if _, ok := b.(*pattern.EmptyBinding); !ok {
				return false
			}
		}
		return true
	case nil:
		return true
	default:
		return false
	}
}
