package compiler

import (
	"fmt"
	"regexp"

	"github.com/standardbeagle/gritql/internal/gritpos"
	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/ql"
)

// compileSnippet compiles a backtick-delimited code snippet into a
// Pattern. A body that is exactly one metavariable becomes a plain
// variable reference; a body containing a bracketed metavariable
// becomes a DynamicPattern wherever the snippet appears (the compiler
// does not reject one on a rewrite's LHS); a `raw`
// snippet is always dynamic text; everything else is parsed against
// the target language's grammar into a structural CodeSnippet.
func (ctx *Context) compileSnippet(n *ql.Node, scope int) (pattern.Pattern, error) {
	body := n.Str

	if n.Kind == ql.RawBacktickSnippet {
		return ctx.compileDynamicSnippet(body, scope)
	}

	if name, ok := exactVariableName(ctx.Lang.ExactVariableRegex(), body); ok {
		v := ctx.Scope.ResolveOrRegister(scope, name, posOf(n))
		return &pattern.VariablePattern{Var: v}, nil
	}

	if ctx.Lang.BracketedMetavariableRegex().MatchString(body) {
		return ctx.compileDynamicSnippet(body, scope)
	}

	return ctx.compileStructuralSnippet(body, scope)
}

// compileDynamicSnippet splits body on metavariable occurrences into a
// sequence of literal/variable parts, used for rewrite RHS text that
// interpolates bound variables into new source text.
func (ctx *Context) compileDynamicSnippet(body string, scope int) (pattern.Pattern, error) {
	matches := ctx.Lang.MetavariableRegex().FindAllStringIndex(body, -1)
	if len(matches) == 0 {
		return &pattern.DynamicPattern{Parts: []pattern.DynamicPart{{Literal: body}}}, nil
	}
	var parts []pattern.DynamicPart
	last := 0
	for _, m := range matches {
		if m[0] > last {
			parts = append(parts, pattern.DynamicPart{Literal: body[last:m[0]]})
		}
		v := ctx.Scope.ResolveOrRegister(scope, body[m[0]:m[1]], gritpos.Position{})
		parts = append(parts, pattern.DynamicPart{Var: &v})
		last = m[1]
	}
	if last < len(body) {
		parts = append(parts, pattern.DynamicPart{Literal: body[last:]})
	}
	return &pattern.DynamicPattern{Parts: parts}, nil
}

// compileStructuralSnippet tries every snippet context the target
// language offers, keeping one candidate AstNode-shaped pattern per
// sort that parsed cleanly; the matcher tries all of them disjunctively
// against a target value.
func (ctx *Context) compileStructuralSnippet(body string, scope int) (pattern.Pattern, error) {
	bySort := make(map[string]pattern.Pattern)
	var lastErr error
	for _, sctx := range ctx.Lang.SnippetContexts() {
		tree, err := ctx.Lang.ParseSnippet(sctx.Prefix, body, sctx.Suffix)
		if err != nil {
			lastErr = err
			continue
		}
		source := []byte(sctx.Prefix + body + sctx.Suffix)
		root := findSnippetRoot(tree.RootNode(), len(sctx.Prefix), len(sctx.Prefix)+len(body))
		if root == nil {
			tree.Close()
			continue
		}
		p, err := ctx.compileSnippetNode(root, source, scope)
		tree.Close()
		if err != nil {
			return nil, err
		}
		bySort[root.Kind()] = p
	}
	if len(bySort) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("snippet %q did not parse under any context: %w", body, lastErr)
		}
		return nil, fmt.Errorf("snippet %q did not parse under any context", body)
	}
	return &pattern.CodeSnippet{PatternsBySort: bySort}, nil
}

// findSnippetRoot walks down to the innermost node whose byte range
// exactly covers [start, end), the body's span once sandwiched between
// a context's prefix and suffix.
func findSnippetRoot(n lang.Node, start, end int) lang.Node {
	if n == nil || int(n.StartByte()) > start || int(n.EndByte()) < end {
		return nil
	}
	if cursor := n.Walk(); cursor.GotoFirstChild() {
		for {
			if found := findSnippetRoot(cursor.Node(), start, end); found != nil {
				return found
			}
			if !cursor.GotoNextSibling() {
				break
			}
		}
	}
	if int(n.StartByte()) == start && int(n.EndByte()) == end {
		return n
	}
	return nil
}

// compileSnippetNode converts one parsed target-language node into an
// AstNode pattern, recognizing metavariable leaves as VariablePattern
// and falling back to an exact text match for other leaves.
func (ctx *Context) compileSnippetNode(n lang.Node, source []byte, scope int) (pattern.Pattern, error) {
	if !n.IsNamed() {
		return pattern.Underscore{}, nil
	}
	text := n.Text(source)
	if name, ok := exactVariableName(ctx.Lang.ExactVariableRegex(), text); ok {
		v := ctx.Scope.ResolveOrRegister(scope, name, n.StartPosition())
		return &pattern.VariablePattern{Var: v}, nil
	}
	if n.NamedChildCount() == 0 {
		return &pattern.StringConstant{Value: text}, nil
	}
	info, ok := ctx.Lang.NodeTypes()[n.Kind()]
	if !ok {
		return &pattern.AstNode{Sort: n.Kind()}, nil
	}
	fields := make([]pattern.FieldPattern, 0, len(info.Fields))
	for _, f := range info.Fields {
		child, ok := n.ChildByFieldName(f.Name)
		if !ok {
			continue
		}
		value, err := ctx.compileSnippetNode(child, source, scope)
		if err != nil {
			return nil, err
		}
		fields = append(fields, pattern.FieldPattern{FieldID: f.Name, Multiple: f.Multiple, Value: value})
	}
	return &pattern.AstNode{Sort: n.Kind(), Fields: fields}, nil
}

// exactVariableName reports whether body is, in its entirety (modulo
// surrounding whitespace), a single metavariable reference, and returns
// its canonical `$name` form. re's first two capture groups hold the
// `$name`/`^name` alternatives respectively.
func exactVariableName(re *regexp.Regexp, body string) (string, bool) {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	for _, name := range m[1:] {
		if name != "" {
			return "$" + name, true
		}
	}
	return "", false
}
