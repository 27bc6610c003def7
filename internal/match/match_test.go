package match

import (
	"testing"

	"github.com/standardbeagle/gritql/internal/gritpos"
	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/symtab"
)

func goTree(t *testing.T, source string) (lang.TargetLanguage, lang.Tree) {
	t.Helper()
	r := lang.NewRegistry()
	goLang, ok := r.ForName("go")
	if !ok {
		t.Fatal("go language not registered")
	}
	tree, err := goLang.Parse([]byte(source), "main.go")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	t.Cleanup(tree.Close)
	return goLang, tree
}

func newTestState(scopes *symtab.Table, files *FileRegistry) *State {
	sizes := make([]int, scopes.ScopeCount())
	for i := range sizes {
		sizes[i] = scopes.ScopeSize(i)
	}
	return NewState(sizes, files)
}

func firstNodeOfKind(n lang.Node, kind string) (lang.Node, bool) {
	if n.Kind() == kind {
		return n, true
	}
	for i := 0; i < n.ChildCount(); i++ {
		c, ok := n.Child(i)
		if !ok {
			continue
		}
		if found, ok := firstNodeOfKind(c, kind); ok {
			return found, true
		}
	}
	return nil, false
}

func TestExecuteAstNodeMatchesSortAndField(t *testing.T) {
	_, tree := goTree(t, "package main\nfunc main() { return }\n")
	files := NewFileRegistry()
	ptr := files.AddFile("main.go", []byte("package main\nfunc main() { return }\n"), tree)

	retStmt, ok := firstNodeOfKind(files.Root(ptr), "return_statement")
	if !ok {
		t.Fatal("expected to find a return_statement node")
	}

	scopes := symtab.NewTable()
	state := newTestState(scopes, files)
	ectx := &ExecContext{Scopes: scopes}

	p := &pattern.AstNode{Sort: "return_statement"}
	binding := nodeTarget(ptr, retStmt)
	ok, err := Execute(p, binding, state, ectx, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ok {
		t.Fatal("expected return_statement pattern to match")
	}

	wrongSort := &pattern.AstNode{Sort: "if_statement"}
	ok, err = Execute(wrongSort, binding, state, ectx, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ok {
		t.Fatal("expected if_statement pattern not to match a return_statement")
	}
}

func TestExecuteVariableFirstBindsThenRequiresEquivalence(t *testing.T) {
	scopes := symtab.NewTable()
	scope := scopes.NewScope()
	v := scopes.Register(scope, "$x", gritpos.Position{})

	files := NewFileRegistry()
	state := newTestState(scopes, files)
	state.PushFrame(scope, scopes.ScopeSize(scope))
	defer state.PopFrame(scope)
	ectx := &ExecContext{Scopes: scopes}

	p := &pattern.VariablePattern{Var: v}
	one := &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstInt, Int: 1}}
	two := &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstInt, Int: 2}}

	ok, err := Execute(p, one, state, ectx, nil)
	if err != nil || !ok {
		t.Fatalf("expected first occurrence to bind: ok=%v err=%v", ok, err)
	}
	ok, err = Execute(p, one, state, ectx, nil)
	if err != nil || !ok {
		t.Fatalf("expected second occurrence with same value to match: ok=%v err=%v", ok, err)
	}
	ok, err = Execute(p, two, state, ectx, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ok {
		t.Fatal("expected a conflicting value to fail")
	}
}

func TestMatchSequenceHonorsDots(t *testing.T) {
	scopes := symtab.NewTable()
	files := NewFileRegistry()
	state := newTestState(scopes, files)
	ectx := &ExecContext{Scopes: scopes}

	items := []pattern.ResolvedPattern{
		intConst(1), intConst(2), intConst(3), intConst(4),
	}
	elems := []pattern.Pattern{
		&pattern.IntConstant{Value: 1},
		pattern.Dots{},
		&pattern.IntConstant{Value: 4},
	}
	ok, err := matchSequence(elems, items, state, ectx, nil)
	if err != nil {
		t.Fatalf("matchSequence: %v", err)
	}
	if !ok {
		t.Fatal("expected [1, ...middle..., 4] to match [1,2,3,4]")
	}

	badElems := []pattern.Pattern{
		&pattern.IntConstant{Value: 1},
		pattern.Dots{},
		&pattern.IntConstant{Value: 5},
	}
	ok, err = matchSequence(badElems, items, state, ectx, nil)
	if err != nil {
		t.Fatalf("matchSequence: %v", err)
	}
	if ok {
		t.Fatal("expected a mismatched tail to fail")
	}
}

func TestExecuteContainsFindsDescendantNode(t *testing.T) {
	_, tree := goTree(t, "package main\nfunc main() {\n\tif true {\n\t\treturn\n\t}\n}\n")
	files := NewFileRegistry()
	ptr := files.AddFile("main.go", []byte("package main\nfunc main() {\n\tif true {\n\t\treturn\n\t}\n}\n"), tree)

	funcDecl, ok := firstNodeOfKind(files.Root(ptr), "function_declaration")
	if !ok {
		t.Fatal("expected to find a function_declaration node")
	}

	scopes := symtab.NewTable()
	state := newTestState(scopes, files)
	ectx := &ExecContext{Scopes: scopes}

	contains := &pattern.Contains{Inner: &pattern.AstNode{Sort: "return_statement"}}
	binding := nodeTarget(ptr, funcDecl)
	ok, err := Execute(contains, binding, state, ectx, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ok {
		t.Fatal("expected function body to contain a return_statement")
	}

	missing := &pattern.Contains{Inner: &pattern.AstNode{Sort: "go_statement"}}
	ok, err = Execute(missing, binding, state, ectx, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ok {
		t.Fatal("expected no go_statement to be found")
	}
}

func TestExecuteCallRecursesThroughLimit(t *testing.T) {
	scopes := symtab.NewTable()
	calleeScope := scopes.NewScope()

	files := NewFileRegistry()
	state := newTestState(scopes, files)
	ectx := &ExecContext{
		Scopes: scopes,
		PatternDefs: []pattern.Definition{
			{Name: "recur", Scope: calleeScope, PatternBody: &pattern.Call{DefinitionIndex: 0}},
		},
	}

	// Without a Limit, this pattern definition recurses into itself
	// forever; wrapping it in Limit must cut the recursion off instead
	// of hanging the test.
	undefined := &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstUndefined}}
	limited := &pattern.Limit{N: 3, Inner: &pattern.Call{DefinitionIndex: 0}}
	ok, err := Execute(limited, undefined, state, ectx, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ok {
		t.Fatal("expected the budget to exhaust and the call chain to fail")
	}
}

func TestExecuteRewriteRecordsEffect(t *testing.T) {
	_, tree := goTree(t, "package main\nfunc main() { return }\n")
	files := NewFileRegistry()
	ptr := files.AddFile("main.go", []byte("package main\nfunc main() { return }\n"), tree)
	retStmt, _ := firstNodeOfKind(files.Root(ptr), "return_statement")

	scopes := symtab.NewTable()
	state := newTestState(scopes, files)
	ectx := &ExecContext{Scopes: scopes}

	rewrite := &pattern.Rewrite{
		LHS: &pattern.AstNode{Sort: "return_statement"},
		RHS: &pattern.StringConstant{Value: "return nil"},
	}
	binding := nodeTarget(ptr, retStmt)
	ok, err := Execute(rewrite, binding, state, ectx, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ok {
		t.Fatal("expected the rewrite to succeed")
	}
	if len(state.Effects) != 1 {
		t.Fatalf("expected exactly one effect to be recorded, got %d", len(state.Effects))
	}
	if state.Effects[0].Kind != pattern.EffectRewrite {
		t.Fatalf("expected an EffectRewrite, got %v", state.Effects[0].Kind)
	}
}

func intConst(i int64) *pattern.ResolvedConstant {
	return &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstInt, Int: i}}
}
