package compiler

import (
	"testing"

	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/ql"
)

func mustCompileSource(t *testing.T, src string) *Result {
	t.Helper()
	p := ql.NewParser([]byte(src))
	root := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	r := lang.NewRegistry()
	goLang, ok := r.ForName("go")
	if !ok {
		t.Fatal("go language not registered")
	}
	result, err := Compile(root, nil, goLang)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return result
}

func TestCompileSimpleEntryPattern(t *testing.T) {
	result := mustCompileSource(t, `$x`)
	if result.Root == nil {
		t.Fatal("expected a non-nil root pattern")
	}
}

func TestCompileDuplicatePatternNameIsError(t *testing.T) {
	p := ql.NewParser([]byte(`
pattern foo() { $x }
pattern foo() { $y }
foo()
`))
	root := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	r := lang.NewRegistry()
	goLang, _ := r.ForName("go")
	if _, err := Compile(root, nil, goLang); err == nil {
		t.Fatal("expected a duplicate definition error")
	}
}

func TestCompileForwardReferenceBetweenDefinitions(t *testing.T) {
	result := mustCompileSource(t, `
pattern first() {
  second()
}
pattern second() {
  $x
}
first()
`)
	if len(result.PatternDefs) != 2 {
		t.Fatalf("expected 2 pattern definitions, got %d", len(result.PatternDefs))
	}
	if result.PatternDefs[0].Name != "first" || result.PatternDefs[1].Name != "second" {
		t.Fatalf("unexpected definition order: %+v", result.PatternDefs)
	}
}

func TestCompileForeignFunctionCommandSplitting(t *testing.T) {
	result := mustCompileSource(t, `
function double($x) javascript {
  return $x * 2;
}
double(21)
`)
	if len(result.ForeignFunctionDefs) != 1 {
		t.Fatalf("expected 1 foreign function definition, got %d", len(result.ForeignFunctionDefs))
	}
	call := result.ForeignFunctionDefs[0].ForeignFunctionCall
	if call == nil || len(call.Command) == 0 {
		t.Fatalf("expected a non-empty command, got %+v", call)
	}
}

func TestCompileFilesKeywordSetsMultifile(t *testing.T) {
	result := mustCompileSource(t, `files { $f }`)
	if !result.IsMultifile {
		t.Fatal("expected IsMultifile to be true")
	}
}

func TestCompileLimitKeywordSetsHasLimit(t *testing.T) {
	result := mustCompileSource(t, `$x limit 10`)
	if !result.HasLimit {
		t.Fatal("expected HasLimit to be true")
	}
}

func TestCompileRegistersDefinitionParameters(t *testing.T) {
	p := ql.NewParser([]byte(`
pattern foo($a) {
  $a
}
foo($b)
`))
	root := p.Parse()
	r := lang.NewRegistry()
	goLang, _ := r.ForName("go")
	result, err := Compile(root, nil, goLang)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(result.PatternDefs[0].Parameters) != 1 || result.PatternDefs[0].Parameters[0].Name != "$a" {
		t.Fatalf("unexpected parameters: %+v", result.PatternDefs[0].Parameters)
	}
}

func TestCompileMissingEntryPatternIsError(t *testing.T) {
	p := ql.NewParser([]byte(`pattern foo() { $x }`))
	root := p.Parse()
	r := lang.NewRegistry()
	goLang, _ := r.ForName("go")
	if _, err := Compile(root, nil, goLang); err == nil {
		t.Fatal("expected an error for a file with no entry pattern")
	}
}
