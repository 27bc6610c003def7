package lang

import "testing"

func TestRegistryResolvesKnownExtensions(t *testing.T) {
	r := NewRegistry()
	cases := map[string]string{
		".go":   "go",
		".ts":   "typescript",
		".tsx":  "typescript",
		".js":   "javascript",
		".py":   "python",
		".rs":   "rust",
		".java": "java",
		".cs":   "csharp",
		".cpp":  "cpp",
		".php":  "php",
		".zig":  "zig",
	}
	for ext, wantName := range cases {
		l, ok := r.ForExtension(ext)
		if !ok {
			t.Errorf("no language registered for %s", ext)
			continue
		}
		if l.Name() != wantName {
			t.Errorf("ForExtension(%s).Name() = %s, want %s", ext, l.Name(), wantName)
		}
	}
}

func TestRegistryForPath(t *testing.T) {
	r := NewRegistry()
	l, ok := r.ForPath("/tmp/project/main.go")
	if !ok || l.Name() != "go" {
		t.Fatalf("ForPath main.go = %v, %v", l, ok)
	}
}

func TestRegistryUnknownExtension(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.ForExtension(".doesnotexist"); ok {
		t.Fatal("expected no match for unknown extension")
	}
}

func TestRegistryForName(t *testing.T) {
	r := NewRegistry()
	l, ok := r.ForName("go")
	if !ok || l.Name() != "go" {
		t.Fatalf("ForName(go) = %v, %v", l, ok)
	}
	if len(r.Names()) < 10 {
		t.Fatalf("expected at least 10 registered languages, got %d", len(r.Names()))
	}
}

func TestGoLanguageParsesSource(t *testing.T) {
	r := NewRegistry()
	l, ok := r.ForName("go")
	if !ok {
		t.Fatal("go language not registered")
	}
	tree, err := l.Parse([]byte("package main\nfunc main() {}\n"), "main.go")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.Kind() != "source_file" {
		t.Fatalf("RootNode().Kind() = %q", root.Kind())
	}
}

func TestIsCommentAndStatement(t *testing.T) {
	r := NewRegistry()
	l, _ := r.ForName("go")
	if !l.IsComment("comment") {
		t.Fatal("expected comment to be a comment sort")
	}
	if !l.IsStatement("if_statement") {
		t.Fatal("expected if_statement to be a statement sort")
	}
	if l.IsStatement("comment") {
		t.Fatal("comment should not be a statement")
	}
}
