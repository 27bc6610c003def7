package unparse

import (
	"testing"

	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/match"
	"github.com/standardbeagle/gritql/internal/pattern"
)

func TestAdjustSeparatorStart(t *testing.T) {
	cases := []struct{ separator, trailing, want string }{
		{", ", ",", " "},
		{"\n", "", "\n"},
		{"abcdef", "xyzabc", "def"},
		{"\n\nabcdef", "xyzabc\n", "\nabcdef"},
	}
	for _, c := range cases {
		got := adjustSeparatorStart(c.separator, c.trailing)
		if got != c.want {
			t.Errorf("adjustSeparatorStart(%q, %q) = %q, want %q", c.separator, c.trailing, got, c.want)
		}
	}
}

func TestAdjustSeparatorEnd(t *testing.T) {
	cases := []struct{ separator, insert, want string }{
		{"Hello, ", ", World", "Hello"},
		{"\n", "", "\n"},
		{"\n", "\n", ""},
	}
	for _, c := range cases {
		got := adjustSeparatorEnd(c.separator, c.insert)
		if got != c.want {
			t.Errorf("adjustSeparatorEnd(%q, %q) = %q, want %q", c.separator, c.insert, got, c.want)
		}
	}
}

func goLang(t *testing.T) lang.TargetLanguage {
	t.Helper()
	l, ok := lang.NewRegistry().ForName("go")
	if !ok {
		t.Fatal("go language not registered")
	}
	return l
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

func TestRenderAppliesRewriteEffect(t *testing.T) {
	l := goLang(t)
	source := []byte("package main\nfunc main() {\n\treturn\n}\n")
	tree, err := l.Parse(source, "main.go")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	files := match.NewFileRegistry()
	ptr := files.AddFile("main.go", source, tree)

	retStmt, ok := firstNodeOfKind(files.Root(ptr), "return_statement")
	if !ok {
		t.Fatal("expected a return_statement node")
	}

	eff := pattern.Effect{
		Binding:     &pattern.NodeBinding{File: ptr, Node: retStmt},
		Replacement: &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstString, Str: "return nil"}},
		Kind:        pattern.EffectRewrite,
	}

	state := match.NewState(nil, files)
	ectx := &match.ExecContext{Lang: l}

	out, err := Render(source, ptr, []pattern.Effect{eff}, state, ectx)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "package main\nfunc main() {\n\treturn nil\n}\n"
	if string(out) != want {
		t.Fatalf("Render() = %q, want %q", out, want)
	}
}

func TestRenderIgnoresEffectsForOtherFiles(t *testing.T) {
	l := goLang(t)
	source := []byte("package main\nfunc main() { return }\n")
	tree, err := l.Parse(source, "main.go")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	files := match.NewFileRegistry()
	ptr := files.AddFile("main.go", source, tree)

	otherSource := []byte("package main\nfunc other() { return }\n")
	otherTree, err := l.Parse(otherSource, "other.go")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer otherTree.Close()
	otherPtr := files.AddFile("other.go", otherSource, otherTree)

	retStmt, _ := firstNodeOfKind(files.Root(otherPtr), "return_statement")
	eff := pattern.Effect{
		Binding:     &pattern.NodeBinding{File: otherPtr, Node: retStmt},
		Replacement: &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstString, Str: "return nil"}},
		Kind:        pattern.EffectRewrite,
	}

	state := match.NewState(nil, files)
	ectx := &match.ExecContext{Lang: l}

	out, err := Render(source, ptr, []pattern.Effect{eff}, state, ectx)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(out) != string(source) {
		t.Fatalf("Render() = %q, want source unchanged %q", out, source)
	}
}

func TestRenderAppliesOutermostEffectWhenNested(t *testing.T) {
	l := goLang(t)
	source := []byte("package main\nfunc main() {\n\tif true {\n\t\treturn\n\t}\n}\n")
	tree, err := l.Parse(source, "main.go")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	files := match.NewFileRegistry()
	ptr := files.AddFile("main.go", source, tree)

	ifStmt, _ := firstNodeOfKind(files.Root(ptr), "if_statement")
	retStmt, _ := firstNodeOfKind(files.Root(ptr), "return_statement")

	outer := pattern.Effect{
		Binding:     &pattern.NodeBinding{File: ptr, Node: ifStmt},
		Replacement: &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstString, Str: "panic(\"no\")"}},
		Kind:        pattern.EffectRewrite,
	}
	inner := pattern.Effect{
		Binding:     &pattern.NodeBinding{File: ptr, Node: retStmt},
		Replacement: &pattern.ResolvedConstant{Value: pattern.Constant{Kind: pattern.ConstString, Str: "return nil"}},
		Kind:        pattern.EffectRewrite,
	}

	state := match.NewState(nil, files)
	ectx := &match.ExecContext{Lang: l}

	out, err := Render(source, ptr, []pattern.Effect{outer, inner}, state, ectx)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "package main\nfunc main() {\n\tpanic(\"no\")\n}\n"
	if string(out) != want {
		t.Fatalf("Render() = %q, want %q", out, want)
	}
}
