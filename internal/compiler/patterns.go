package compiler

import (
	"fmt"
	"strconv"

	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/ql"
)

// compilePattern recursively compiles a QL syntax node into a Pattern,
// threading scope through every sub-call the way NodeCompiler's
// from_node threads (vars, vars_array, scope_index, global_vars, logs).
func (ctx *Context) compilePattern(n *ql.Node, scope int) (pattern.Pattern, error) {
	if n == nil {
		return pattern.Top{}, nil
	}
	switch n.Kind {
	case ql.And:
		items, err := ctx.compilePatternList(n.Children, scope)
		if err != nil {
			return nil, err
		}
		return &pattern.And{Patterns: items}, nil
	case ql.Or:
		items, err := ctx.compilePatternList(n.Children, scope)
		if err != nil {
			return nil, err
		}
		return &pattern.Or{Patterns: items}, nil
	case ql.Any:
		items, err := ctx.compilePatternList(n.Children, scope)
		if err != nil {
			return nil, err
		}
		return &pattern.Any{Patterns: items}, nil
	case ql.Not:
		inner, err := ctx.compilePattern(n.Field("pattern"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.Not{Inner: inner}, nil
	case ql.Maybe:
		inner, err := ctx.compilePattern(n.Field("pattern"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.Maybe{Inner: inner}, nil
	case ql.Some:
		inner, err := ctx.compilePattern(n.Field("pattern"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.Some{Inner: inner}, nil
	case ql.Every:
		inner, err := ctx.compilePattern(n.Field("pattern"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.Every{Inner: inner}, nil
	case ql.Within:
		inner, err := ctx.compilePattern(n.Field("pattern"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.Within{Inner: inner}, nil
	case ql.Contains:
		inner, err := ctx.compilePattern(n.Field("pattern"), scope)
		if err != nil {
			return nil, err
		}
		var until pattern.Pattern
		if u := n.Field("until"); u != nil {
			until, err = ctx.compilePattern(u, scope)
			if err != nil {
				return nil, err
			}
		}
		return &pattern.Contains{Inner: inner, Until: until}, nil
	case ql.Sequential:
		steps, err := ctx.compilePatternList(n.Children, scope)
		if err != nil {
			return nil, err
		}
		return &pattern.Sequential{Steps: steps}, nil
	case ql.Files:
		inner, err := ctx.compilePattern(n.Field("pattern"), scope)
		if err != nil {
			return nil, err
		}
		ctx.IsMultifile = true
		return &pattern.FilesPattern{Inner: inner}, nil
	case ql.Bubble:
		args, err := ctx.compilePatternList(n.Children, scope)
		if err != nil {
			return nil, err
		}
		inner, err := ctx.compilePattern(n.Field("pattern"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.Bubble{Args: args, Definition: inner}, nil
	case ql.Like:
		ref, err := ctx.compilePattern(n.Field("reference"), scope)
		if err != nil {
			return nil, err
		}
		threshold := 0.9
		if t := n.Field("threshold"); t != nil {
			threshold = literalFloat(t)
		}
		return &pattern.Like{Reference: ref, Threshold: threshold}, nil
	case ql.If:
		cond, err := ctx.compilePredicate(n.Field("if"), scope)
		if err != nil {
			return nil, err
		}
		then, err := ctx.compilePattern(n.Field("then"), scope)
		if err != nil {
			return nil, err
		}
		var els pattern.Pattern
		if e := n.Field("else"); e != nil {
			els, err = ctx.compilePattern(e, scope)
			if err != nil {
				return nil, err
			}
		}
		return &pattern.If{Predicate: cond, Then: then, Else: els}, nil
	case ql.Where:
		inner, err := ctx.compilePattern(n.Field("pattern"), scope)
		if err != nil {
			return nil, err
		}
		cond, err := ctx.compilePredicate(n.Field("predicate"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.Where{Inner: inner, Predicate: cond}, nil
	case ql.Rewrite:
		lhs, err := ctx.compilePattern(n.Field("lhs"), scope)
		if err != nil {
			return nil, err
		}
		rhs, err := ctx.compilePattern(n.Field("rhs"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.Rewrite{LHS: lhs, RHS: rhs}, nil
	case ql.Limit:
		count, err := strconv.Atoi(n.Name)
		if err != nil {
			return nil, fmt.Errorf("invalid limit count %q: %w", n.Name, err)
		}
		inner, err := ctx.compilePattern(n.Field("pattern"), scope)
		if err != nil {
			return nil, err
		}
		ctx.HasLimit = true
		return &pattern.Limit{N: count, Inner: inner}, nil
	case ql.List:
		return ctx.compileList(n, scope)
	case ql.Map:
		entries := make(map[string]pattern.Pattern, len(n.Children))
		for _, entry := range n.Children {
			v, err := ctx.compilePattern(entry.Field("value"), scope)
			if err != nil {
				return nil, err
			}
			entries[entry.Name] = v
		}
		return &pattern.Map{Entries: entries}, nil
	case ql.Variable:
		return ctx.compileVariableReference(n, scope)
	case ql.StringLiteral:
		return &pattern.StringConstant{Value: n.Str}, nil
	case ql.IntLiteral:
		v, err := strconv.ParseInt(n.Str, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer literal %q: %w", n.Str, err)
		}
		return &pattern.IntConstant{Value: v}, nil
	case ql.FloatLiteral:
		v, err := strconv.ParseFloat(n.Str, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float literal %q: %w", n.Str, err)
		}
		return &pattern.FloatConstant{Value: v}, nil
	case ql.BooleanLiteral:
		return &pattern.BooleanConstant{Value: n.Bool}, nil
	case ql.Undefined:
		return pattern.Undefined{}, nil
	case ql.Dots:
		return pattern.Dots{}, nil
	case ql.Underscore:
		return pattern.Underscore{}, nil
	case ql.Accessor, ql.ListIndex:
		// A bare accessor/index in pattern position reads the addressed
		// container's current value and matches it by equivalence,
		// expressed here as a variable-shaped read through the
		// container compiler.
		c, err := ctx.compileContainer(n, scope)
		if err != nil {
			return nil, err
		}
		return containerAsPattern(c), nil
	case ql.BacktickSnippet, ql.RawBacktickSnippet, ql.LanguageSpecificSnippet:
		return ctx.compileSnippet(n, scope)
	case ql.NodeLike:
		return ctx.compileNodeLikePattern(n, scope)
	default:
		return nil, fmt.Errorf("unsupported pattern syntax: %v", n.Kind)
	}
}

func (ctx *Context) compilePatternList(nodes []*ql.Node, scope int) ([]pattern.Pattern, error) {
	out := make([]pattern.Pattern, 0, len(nodes))
	for _, n := range nodes {
		p, err := ctx.compilePattern(n, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// compileList compiles a `[...]` literal, enforcing that no two
// consecutive elements are both Dots (a compile error per the list
// semantics every multi-field and bracket literal shares).
func (ctx *Context) compileList(n *ql.Node, scope int) (pattern.Pattern, error) {
	elements, err := ctx.compilePatternList(n.Children, scope)
	if err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(elements); i++ {
		if isDots(elements[i]) && isDots(elements[i+1]) {
			return nil, fmt.Errorf("two consecutive ... wildcards in a list pattern")
		}
	}
	return &pattern.List{Elements: elements}, nil
}

func isDots(p pattern.Pattern) bool {
	_, ok := p.(pattern.Dots)
	return ok
}

func literalFloat(n *ql.Node) float64 {
	switch n.Kind {
	case ql.FloatLiteral, ql.IntLiteral:
		v, _ := strconv.ParseFloat(n.Str, 64)
		return v
	}
	return 0.9
}

// compileVariableReference resolves a `$name` reference: first use
// within scope (or globals, for `$GLOBAL_*`) registers it; later uses
// just resolve to the same slot.
func (ctx *Context) compileVariableReference(n *ql.Node, scope int) (pattern.Pattern, error) {
	v := ctx.Scope.ResolveOrRegister(scope, n.Name, posOf(n))
	return &pattern.VariablePattern{Var: v}, nil
}

// compileNodeLikePattern resolves a `name(args...)` call appearing in
// pattern position: the built-in unary wrappers includes/after/before
// (which have no dedicated keyword token), a call to a user pattern or
// function definition, or an unrecognized built-in.
func (ctx *Context) compileNodeLikePattern(n *ql.Node, scope int) (pattern.Pattern, error) {
	switch n.Name {
	case "includes":
		return ctx.wrapUnaryPattern(n, scope, func(p pattern.Pattern) pattern.Pattern { return &pattern.Includes{Inner: p} })
	case "after":
		return ctx.wrapUnaryPattern(n, scope, func(p pattern.Pattern) pattern.Pattern { return &pattern.After{Inner: p} })
	case "before":
		return ctx.wrapUnaryPattern(n, scope, func(p pattern.Pattern) pattern.Pattern { return &pattern.Before{Inner: p} })
	}

	args, err := ctx.compilePatternList(n.Children, scope)
	if err != nil {
		return nil, err
	}
	if info, ok := ctx.lookupDefinition(pattern.KindPattern, n.Name); ok {
		return &pattern.Call{DefinitionIndex: info.index, Args: args}, nil
	}
	if info, ok := ctx.lookupDefinition(pattern.KindFunction, n.Name); ok {
		return &pattern.CallFunction{DefinitionIndex: info.index, Args: args}, nil
	}
	if info, ok := ctx.lookupDefinition(pattern.KindForeignFunction, n.Name); ok {
		return &pattern.CallForeignFunction{DefinitionIndex: info.index, Args: args}, nil
	}
	return &pattern.CallBuiltIn{Index: ctx.builtinIndex(n.Name), Args: args}, nil
}

func (ctx *Context) wrapUnaryPattern(n *ql.Node, scope int, wrap func(pattern.Pattern) pattern.Pattern) (pattern.Pattern, error) {
	if len(n.Children) != 1 {
		return nil, fmt.Errorf("%s expects exactly one argument", n.Name)
	}
	inner, err := ctx.compilePattern(n.Children[0], scope)
	if err != nil {
		return nil, err
	}
	return wrap(inner), nil
}

func containerAsPattern(c pattern.Container) pattern.Pattern {
	switch c := c.(type) {
	case *pattern.VariableContainer:
		return &pattern.VariablePattern{Var: c.Var}
	default:
		// Accessor/ListIndex/FunctionCallContainer reads have no direct
		// Pattern equivalent in the data model; wrap in an Assignment-
		// free read by matching against Underscore is incorrect, so
		// these are only valid on the left of `:=`/`=`/`+=` and the
		// compiler should not reach here for a well-formed program.
		return pattern.Underscore{}
	}
}
