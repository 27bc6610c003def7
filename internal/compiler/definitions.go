package compiler

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/ql"
)

// compileDefinition compiles one definition's body against a fresh
// scope, with its parameters pre-registered as slots 0..n-1, and writes
// the result into the slot the inventory pass reserved for it.
func (ctx *Context) compileDefinition(def *ql.Node) error {
	info, ok := ctx.byName[key(defKindOf(def), def.Name)]
	if !ok {
		return fmt.Errorf("internal error: %s not inventoried", def.Name)
	}

	scope := ctx.Scope.NewScope()
	params := ctx.compileParameters(def.Field("params"), scope)

	base := pattern.Definition{
		Kind:       info.kind,
		Name:       def.Name,
		Parameters: params,
		Scope:      scope,
		Pos:        posOf(def),
	}

	switch def.Kind {
	case ql.PatternDefinition:
		body, err := ctx.compilePattern(def.Field("body"), scope)
		if err != nil {
			return fmt.Errorf("pattern %s: %w", def.Name, err)
		}
		base.PatternBody = body
		ctx.PatternDefs[info.index] = base
	case ql.PredicateDefinition:
		body, err := ctx.compilePredicate(def.Field("body"), scope)
		if err != nil {
			return fmt.Errorf("predicate %s: %w", def.Name, err)
		}
		base.PredicateBody = body
		ctx.PredicateDefs[info.index] = base
	case ql.FunctionDefinition:
		body, err := ctx.compilePredicate(def.Field("body"), scope)
		if err != nil {
			return fmt.Errorf("function %s: %w", def.Name, err)
		}
		base.FunctionBody = body
		ctx.FunctionDefs[info.index] = base
	case ql.ForeignFunctionDefinition:
		base.ForeignFunctionCall = &pattern.ForeignFunctionCall{Command: splitCommandLines(def.Str)}
		ctx.ForeignFunctionDefs[info.index] = base
	default:
		return fmt.Errorf("unexpected definition kind %v", def.Kind)
	}
	return nil
}

func defKindOf(def *ql.Node) pattern.DefinitionKind {
	switch def.Kind {
	case ql.PatternDefinition:
		return pattern.KindPattern
	case ql.PredicateDefinition:
		return pattern.KindPredicate
	case ql.FunctionDefinition:
		return pattern.KindFunction
	case ql.ForeignFunctionDefinition:
		return pattern.KindForeignFunction
	}
	return pattern.KindPattern
}

func (ctx *Context) compileParameters(list *ql.Node, scope int) []pattern.Parameter {
	if list == nil {
		return nil
	}
	params := make([]pattern.Parameter, 0, len(list.Children))
	for _, p := range list.Children {
		ctx.Scope.Register(scope, p.Name, posOf(p))
		params = append(params, pattern.Parameter{Name: p.Name, Pos: posOf(p)})
	}
	return params
}

// splitCommandLines turns a captured foreign-function body into a
// command template: one token per non-empty trimmed line, the simplest
// thing a foreign function invocation step can exec.argv from.
func splitCommandLines(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
