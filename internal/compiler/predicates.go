package compiler

import (
	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/ql"
)

// compilePredicate recursively compiles a QL syntax node appearing in
// predicate position (where/if clauses, predicate and function bodies)
// into a Predicate.
func (ctx *Context) compilePredicate(n *ql.Node, scope int) (pattern.Predicate, error) {
	if n == nil {
		return pattern.PredTrue{}, nil
	}
	switch n.Kind {
	case ql.And:
		items, err := ctx.compilePredicateList(n.Children, scope)
		if err != nil {
			return nil, err
		}
		return &pattern.PredAnd{Predicates: items}, nil
	case ql.Or:
		items, err := ctx.compilePredicateList(n.Children, scope)
		if err != nil {
			return nil, err
		}
		return &pattern.PredOr{Predicates: items}, nil
	case ql.Any:
		items, err := ctx.compilePredicateList(n.Children, scope)
		if err != nil {
			return nil, err
		}
		return &pattern.PredAny{Predicates: items}, nil
	case ql.Not:
		inner, err := ctx.compilePredicate(n.Field("predicate"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.PredNot{Inner: inner}, nil
	case ql.Maybe:
		inner, err := ctx.compilePredicate(n.Field("predicate"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.PredMaybe{Inner: inner}, nil
	case ql.If:
		cond, err := ctx.compilePredicate(n.Field("if"), scope)
		if err != nil {
			return nil, err
		}
		then, err := ctx.compilePredicate(n.Field("then"), scope)
		if err != nil {
			return nil, err
		}
		var els pattern.Predicate
		if e := n.Field("else"); e != nil {
			els, err = ctx.compilePredicate(e, scope)
			if err != nil {
				return nil, err
			}
		}
		return &pattern.PredIf{Predicate: cond, Then: then, Else: els}, nil
	case ql.Return:
		value, err := ctx.compilePattern(n.Field("value"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.PredReturn{Value: value}, nil
	case ql.Log:
		msg, err := ctx.compilePattern(n.Field("message"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.PredLog{Message: msg}, nil
	case ql.BooleanLiteral:
		if n.Bool {
			return pattern.PredTrue{}, nil
		}
		return pattern.PredFalse{}, nil
	case ql.Assignment:
		target, err := ctx.compileContainer(n.Field("target"), scope)
		if err != nil {
			return nil, err
		}
		value, err := ctx.compilePattern(n.Field("value"), scope)
		if err != nil {
			return nil, err
		}
		if n.Name == "+=" {
			return &pattern.PredAccumulate{Target: target, Value: value}, nil
		}
		return &pattern.PredAssignment{Target: target, Value: value}, nil
	case ql.Rewrite:
		lhs, err := ctx.compilePattern(n.Field("lhs"), scope)
		if err != nil {
			return nil, err
		}
		rhs, err := ctx.compilePattern(n.Field("rhs"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.PredRewrite{LHS: lhs, RHS: rhs}, nil
	case ql.NodeLike:
		return ctx.compileNodeLikePredicate(n, scope)
	default:
		// Anything else reaching predicate position is a bare pattern
		// expression (e.g. a snippet or variable used as a truthy
		// check); it succeeds iff matching it here succeeds.
		target, err := ctx.compilePattern(n, scope)
		if err != nil {
			return nil, err
		}
		return &pattern.PredMatch{Target: target, Value: pattern.Underscore{}}, nil
	}
}

func (ctx *Context) compilePredicateList(nodes []*ql.Node, scope int) ([]pattern.Predicate, error) {
	out := make([]pattern.Predicate, 0, len(nodes))
	for _, n := range nodes {
		p, err := ctx.compilePredicate(n, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// compileNodeLikePredicate handles calls appearing in predicate
// position: `==`/`!=` comparisons, calls to predicate definitions, and
// pattern/function calls used as a truthy match check.
func (ctx *Context) compileNodeLikePredicate(n *ql.Node, scope int) (pattern.Predicate, error) {
	if n.Name == "==" || n.Name == "!=" {
		left, err := ctx.compilePattern(n.Children[0], scope)
		if err != nil {
			return nil, err
		}
		right, err := ctx.compilePattern(n.Children[1], scope)
		if err != nil {
			return nil, err
		}
		eq := &pattern.PredEqual{Left: left, Right: right}
		if n.Name == "!=" {
			return &pattern.PredNot{Inner: eq}, nil
		}
		return eq, nil
	}

	if info, ok := ctx.lookupDefinition(pattern.KindPredicate, n.Name); ok {
		args, err := ctx.compilePatternList(n.Children, scope)
		if err != nil {
			return nil, err
		}
		return &pattern.PredCall{DefinitionIndex: info.index, Args: args}, nil
	}

	p, err := ctx.compileNodeLikePattern(n, scope)
	if err != nil {
		return nil, err
	}
	return &pattern.PredMatch{Target: p, Value: p}, nil
}
