package ql

import "testing"

func mustParse(t *testing.T, src string) *Node {
	t.Helper()
	p := NewParser([]byte(src))
	prog := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, errs)
	}
	return prog
}

func TestLexerScansBasicTokens(t *testing.T) {
	l := NewLexer([]byte(`$foo 123 4.5 "bar" ...`))
	want := []Kind{VARIABLE, INT, FLOAT, STRING, DOTDOTDOT, EOF}
	for i, k := range want {
		tok := l.Scan()
		if tok.Kind != k {
			t.Fatalf("token %d: got %s, want %s", i, tok.Kind, k)
		}
	}
}

func TestLexerScansLanguageSnippet(t *testing.T) {
	l := NewLexer([]byte("js`1 + 1`"))
	tok := l.Scan()
	if tok.Kind != LANG_BACKTICK {
		t.Fatalf("got %s, want LANG_BACKTICK", tok.Kind)
	}
	lang, body := splitLangSnippet(tok.Lit)
	if lang != "js" || body != "1 + 1" {
		t.Fatalf("got lang=%q body=%q", lang, body)
	}
}

func TestLexerScansRawSnippet(t *testing.T) {
	l := NewLexer([]byte("raw`$foo`"))
	tok := l.Scan()
	if tok.Kind != RAW_BACKTICK || tok.Lit != "$foo" {
		t.Fatalf("got kind=%s lit=%q", tok.Kind, tok.Lit)
	}
}

func TestParseSimpleNodeLike(t *testing.T) {
	prog := mustParse(t, `foo($a, $b)`)
	entry := prog.Field("entry")
	if entry == nil || entry.Kind != NodeLike || entry.Name != "foo" {
		t.Fatalf("got %+v", entry)
	}
	if len(entry.Children) != 2 {
		t.Fatalf("expected 2 args, got %d", len(entry.Children))
	}
}

func TestParsePatternDefinitionAndEntry(t *testing.T) {
	prog := mustParse(t, `
pattern myPattern($x) {
  $x
}
myPattern($y)
`)
	if len(prog.Children) != 1 || prog.Children[0].Kind != PatternDefinition {
		t.Fatalf("expected one pattern definition, got %+v", prog.Children)
	}
	def := prog.Children[0]
	if def.Name != "myPattern" {
		t.Fatalf("got name %q", def.Name)
	}
	entry := prog.Field("entry")
	if entry == nil || entry.Kind != NodeLike || entry.Name != "myPattern" {
		t.Fatalf("got entry %+v", entry)
	}
}

func TestParseContainsUntil(t *testing.T) {
	prog := mustParse(t, `contains foo() until bar()`)
	entry := prog.Field("entry")
	if entry.Kind != Contains {
		t.Fatalf("got kind %v", entry.Kind)
	}
	if entry.Field("pattern") == nil || entry.Field("until") == nil {
		t.Fatalf("expected both pattern and until fields, got %+v", entry)
	}
}

func TestParseRewriteAndWhere(t *testing.T) {
	prog := mustParse(t, `$x => ` + "`y`" + ` where $x == ` + "`z`")
	entry := prog.Field("entry")
	if entry.Kind != Where {
		t.Fatalf("got kind %v", entry.Kind)
	}
	rewrite := entry.Field("pattern")
	if rewrite.Kind != Rewrite {
		t.Fatalf("expected rewrite under where, got %v", rewrite.Kind)
	}
	if rewrite.Field("lhs").Kind != Variable || rewrite.Field("rhs").Kind != BacktickSnippet {
		t.Fatalf("unexpected rewrite shape: %+v", rewrite)
	}
	pred := entry.Field("predicate")
	if pred.Kind != NodeLike || pred.Name != "==" {
		t.Fatalf("expected == predicate, got %+v", pred)
	}
}

func TestParseListWithDots(t *testing.T) {
	prog := mustParse(t, `[..., $last]`)
	entry := prog.Field("entry")
	if entry.Kind != List || len(entry.Children) != 2 {
		t.Fatalf("got %+v", entry)
	}
	if entry.Children[0].Kind != Dots {
		t.Fatalf("expected first element to be Dots, got %v", entry.Children[0].Kind)
	}
	if entry.Children[1].Kind != Variable || entry.Children[1].Name != "$last" {
		t.Fatalf("expected $last variable, got %+v", entry.Children[1])
	}
}

func TestParseMapLiteral(t *testing.T) {
	prog := mustParse(t, `{foo: 1, "bar": $x}`)
	entry := prog.Field("entry")
	if entry.Kind != Map || len(entry.Children) != 2 {
		t.Fatalf("got %+v", entry)
	}
	if entry.Children[0].Name != "foo" || entry.Children[1].Name != "bar" {
		t.Fatalf("got keys %q, %q", entry.Children[0].Name, entry.Children[1].Name)
	}
}

func TestParseAccessorAndIndex(t *testing.T) {
	prog := mustParse(t, `$x.field[0]`)
	entry := prog.Field("entry")
	if entry.Kind != ListIndex {
		t.Fatalf("got kind %v", entry.Kind)
	}
	accessor := entry.Field("target")
	if accessor.Kind != Accessor || accessor.Name != "field" {
		t.Fatalf("got %+v", accessor)
	}
	if accessor.Field("target").Kind != Variable {
		t.Fatalf("expected variable under accessor, got %v", accessor.Field("target").Kind)
	}
}

func TestParseBubbleAndLike(t *testing.T) {
	prog := mustParse(t, `bubble($match) { like(foo(), 0.9) }`)
	entry := prog.Field("entry")
	if entry.Kind != Bubble {
		t.Fatalf("got kind %v", entry.Kind)
	}
	inner := entry.Field("pattern")
	if inner.Kind != Like {
		t.Fatalf("got inner kind %v", inner.Kind)
	}
	if inner.Field("reference") == nil || inner.Field("threshold") == nil {
		t.Fatalf("expected reference and threshold, got %+v", inner)
	}
}

func TestParseForeignFunctionDefinition(t *testing.T) {
	prog := mustParse(t, `
function double($x) javascript {
  return $x * 2;
}
double(21)
`)
	if len(prog.Children) != 1 || prog.Children[0].Kind != ForeignFunctionDefinition {
		t.Fatalf("expected foreign function definition, got %+v", prog.Children)
	}
	if prog.Children[0].Str == "" {
		t.Fatal("expected non-empty captured body")
	}
}

func TestParsePredicateDefinitionWithAssignmentAndReturn(t *testing.T) {
	prog := mustParse(t, `
predicate isPositive($n) {
  $n := $n,
  return true
}
isPositive($n)
`)
	def := prog.Children[0]
	if def.Kind != PredicateDefinition {
		t.Fatalf("got kind %v", def.Kind)
	}
	body := def.Field("body")
	if body.Kind != And || len(body.Children) != 2 {
		t.Fatalf("expected a two-statement block, got %+v", body)
	}
	if body.Children[1].Kind != Return {
		t.Fatalf("expected return as last statement, got %v", body.Children[1].Kind)
	}
}

func TestParseErrorOnUnbalancedBraces(t *testing.T) {
	p := NewParser([]byte(`pattern foo() { $x `))
	p.Parse()
	if len(p.Errors()) == 0 {
		t.Fatal("expected a parse error for unbalanced braces")
	}
}
