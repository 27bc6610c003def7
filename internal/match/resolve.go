package match

import (
	"fmt"
	"strconv"

	"github.com/standardbeagle/gritql/internal/pattern"
)

// FromPattern evaluates p in value (not match) position, producing the
// ResolvedPattern it denotes: a constant's own value, a variable's
// current binding, or a structural literal (List/Map) built from its
// elements' own FromPattern. This is the RHS counterpart to Execute,
// used for `:=`/`+=` values and anywhere a pattern is read rather than
// matched against.
func FromPattern(p pattern.Pattern, state *State, ectx *ExecContext, logs Logs) (pattern.ResolvedPattern, error) {
	switch p := p.(type) {
	case *pattern.StringConstant:
		return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstString, Str: p.Value}}, nil
	case *pattern.IntConstant:
		return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstInt, Int: p.Value}}, nil
	case *pattern.FloatConstant:
		return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstFloat, Float: p.Value}}, nil
	case *pattern.BooleanConstant:
		return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstBool, Bool: p.Value}}, nil
	case pattern.Undefined:
		return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}}, nil
	case pattern.Underscore, pattern.Top:
		return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}}, nil
	case *pattern.VariablePattern:
		slot := state.Top(p.Var.Scope)[p.Var.Slot]
		if slot.Value != nil {
			return slot.Value, nil
		}
		if slot.Pattern != nil {
			return FromPattern(slot.Pattern, state, ectx, logs)
		}
		return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}}, nil
	case *pattern.List:
		items := make([]pattern.ResolvedPattern, 0, len(p.Elements))
		for _, e := range p.Elements {
			if isDots(e) {
				continue
			}
			v, err := FromPattern(e, state, ectx, logs)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return &pattern.ResolvedList{Items: items}, nil
	case *pattern.Map:
		entries := make(map[string]pattern.ResolvedPattern, len(p.Entries))
		for k, v := range p.Entries {
			rv, err := FromPattern(v, state, ectx, logs)
			if err != nil {
				return nil, err
			}
			entries[k] = rv
		}
		return &pattern.ResolvedMap{Entries: entries}, nil
	case *pattern.DynamicPattern:
		text, err := renderDynamic(p, state, ectx, logs)
		if err != nil {
			return nil, err
		}
		return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstString, Str: text}}, nil
	case *pattern.BinaryOp:
		return evalBinaryOp(p, state, ectx, logs)
	case *pattern.CallFunction:
		return callFunction(p, state, ectx, logs)
	case *pattern.CallForeignFunction:
		return callForeignFunction(p, state, ectx, logs)
	case *pattern.CodeSnippet:
		// A snippet read in value position (e.g. bound by a prior match)
		// has no single concrete rendering of its own; it is read as the
		// value of one of its sort patterns (map order decides which).
		// A sort pattern that cannot be read as a value, such as an
		// AstNode, makes this an error; only an empty snippet is
		// undefined.
		for _, inner := range p.PatternsBySort {
			return FromPattern(inner, state, ectx, logs)
		}
		return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}}, nil
	default:
		return nil, fmt.Errorf("pattern of type %T cannot be evaluated as a value", p)
	}
}

func isDots(p pattern.Pattern) bool {
	_, ok := p.(pattern.Dots)
	return ok
}

func evalBinaryOp(p *pattern.BinaryOp, state *State, ectx *ExecContext, logs Logs) (pattern.ResolvedPattern, error) {
	lv, err := FromPattern(p.Left, state, ectx, logs)
	if err != nil {
		return nil, err
	}
	rv, err := FromPattern(p.Right, state, ectx, logs)
	if err != nil {
		return nil, err
	}
	lf, lok := asFloat(lv)
	rf, rok := asFloat(rv)
	if !lok || !rok {
		return nil, fmt.Errorf("arithmetic operand is not numeric")
	}
	var result float64
	switch p.Op {
	case pattern.OpAdd:
		result = lf + rf
	case pattern.OpSub:
		result = lf - rf
	case pattern.OpMul:
		result = lf * rf
	case pattern.OpDiv:
		if rf == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		result = lf / rf
	case pattern.OpMod:
		result = float64(int64(lf) % int64(rf))
	}
	if result == float64(int64(result)) {
		return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstInt, Int: int64(result)}}, nil
	}
	return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstFloat, Float: result}}, nil
}

func asFloat(r pattern.ResolvedPattern) (float64, bool) {
	c, ok := r.(*pattern.ResolvedConstant)
	if !ok {
		return 0, false
	}
	switch c.Value.Kind {
	case pattern.ConstInt:
		return float64(c.Value.Int), true
	case pattern.ConstFloat:
		return c.Value.Float, true
	}
	return 0, false
}

func renderDynamic(p *pattern.DynamicPattern, state *State, ectx *ExecContext, logs Logs) (string, error) {
	out := ""
	for _, part := range p.Parts {
		if part.Var == nil {
			out += part.Literal
			continue
		}
		slot := state.Top(part.Var.Scope)[part.Var.Slot]
		if slot.Value == nil {
			return "", fmt.Errorf("variable used in rewrite template is unbound")
		}
		text, err := Text(slot.Value, state, ectx)
		if err != nil {
			return "", err
		}
		out += text
	}
	return out, nil
}

// Text renders a resolved value to source text: the exact source slice
// for a node/list/string binding, the literal form of a constant, or
// the rendered RHS of a snippet/dynamic pattern.
func Text(r pattern.ResolvedPattern, state *State, ectx *ExecContext) (string, error) {
	switch r := r.(type) {
	case *pattern.ResolvedBinding:
		out := ""
		for i, b := range r.Bindings {
			if i > 0 {
				out += " "
			}
			t, err := bindingText(b, state)
			if err != nil {
				return "", err
			}
			out += t
		}
		return out, nil
	case *pattern.ResolvedConstant:
		return constantText(r.Value), nil
	case *pattern.ResolvedList:
		out := ""
		for i, item := range r.Items {
			if i > 0 {
				out += ", "
			}
			t, err := Text(item, state, ectx)
			if err != nil {
				return "", err
			}
			out += t
		}
		return out, nil
	case *pattern.ResolvedSnippets:
		if len(r.Snippets) == 0 {
			return "", nil
		}
		return "", fmt.Errorf("structural snippet value has no single text rendering")
	default:
		return "", fmt.Errorf("resolved value of type %T has no text rendering", r)
	}
}

func bindingText(b pattern.Binding, state *State) (string, error) {
	switch b := b.(type) {
	case *pattern.NodeBinding:
		src := state.Files.Source(b.File)
		return b.Node.Text(src), nil
	case *pattern.StringBinding:
		src := state.Files.Source(b.File)
		start, end := b.ByteRange.ByteRange()
		return string(src[start:end]), nil
	case *pattern.FileNameBinding:
		return b.Path, nil
	case *pattern.EmptyBinding:
		return "", nil
	case *pattern.ListBinding:
		r, _ := b.Range()
		src := state.Files.Source(b.File)
		start, end := r.ByteRange()
		return string(src[start:end]), nil
	case *pattern.ConstantRefBinding:
		return constantText(b.Value), nil
	default:
		return "", fmt.Errorf("binding of type %T has no text rendering", b)
	}
}

func constantText(c pattern.Constant) string {
	switch c.Kind {
	case pattern.ConstString:
		return c.Str
	case pattern.ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case pattern.ConstFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case pattern.ConstBool:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}
