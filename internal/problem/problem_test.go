package problem

import (
	"context"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/gritql/internal/lang"
)

// TestMain checks every test in this package for leaked goroutines,
// the same guard the streaming façade's worker pool needs since a
// cancelled or erroring run must never leave a goroutine running past
// ExecutePathsStreaming's return.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func goLang(t *testing.T) lang.TargetLanguage {
	t.Helper()
	l, ok := lang.NewRegistry().ForName("go")
	require.True(t, ok, "go language must be registered")
	return l
}

func TestCompileIsDeterministic(t *testing.T) {
	target := goLang(t)
	p1, _, err := Compile(`$x`, nil, target, CompileOptions{Name: "p"})
	require.NoError(t, err)
	p2, _, err := Compile(`$x`, nil, target, CompileOptions{Name: "p"})
	require.NoError(t, err)
	require.Equal(t, p1.Hash, p2.Hash)
}

func TestCompileHashChangesWithSource(t *testing.T) {
	target := goLang(t)
	p1, _, err := Compile(`$x`, nil, target, CompileOptions{Name: "p"})
	require.NoError(t, err)
	p2, _, err := Compile(`$y`, nil, target, CompileOptions{Name: "p"})
	require.NoError(t, err)
	require.NotEqual(t, p1.Hash, p2.Hash)
}

func TestCompileHashIndependentOfLibraryOrder(t *testing.T) {
	target := goLang(t)
	libs1 := []Library{{Name: "a", Source: `pattern a() { $x }`}, {Name: "b", Source: `pattern b() { $x }`}}
	libs2 := []Library{{Name: "b", Source: `pattern b() { $x }`}, {Name: "a", Source: `pattern a() { $x }`}}
	p1, _, err := Compile(`$x`, libs1, target, CompileOptions{Name: "p"})
	require.NoError(t, err)
	p2, _, err := Compile(`$x`, libs2, target, CompileOptions{Name: "p"})
	require.NoError(t, err)
	require.Equal(t, p1.Hash, p2.Hash)
}

func TestCompileReportsParseError(t *testing.T) {
	target := goLang(t)
	_, _, err := Compile(`pattern foo() { $x `, nil, target, CompileOptions{Name: "p"})
	require.Error(t, err)
}

func TestExecuteFileMatchesWithoutRewrite(t *testing.T) {
	target := goLang(t)
	p, _, err := Compile(`$x`, nil, target, CompileOptions{Name: "p"})
	require.NoError(t, err)

	src := "package main\n\nfunc main() {}\n"
	results, err := p.ExecuteFile(context.Background(), InputSource{Path: "main.go", Content: src})
	require.NoError(t, err)

	var matched *Match
	var done *DoneFile
	for i := range results {
		switch v := results[i].(type) {
		case Match:
			matched = &v
		case DoneFile:
			done = &v
		case Rewrite:
			t.Fatalf("unexpected rewrite: %+v", v)
		}
	}
	require.NotNil(t, matched, "expected a Match result")
	require.NotEmpty(t, matched.Variables)
	require.Equal(t, "x", matched.Variables[0].Name)
	require.NotNil(t, done)
	require.True(t, done.HasResults)
}

func TestExecuteFileNoMatchWhenPredicateFails(t *testing.T) {
	target := goLang(t)
	p, _, err := Compile(`$x where false`, nil, target, CompileOptions{Name: "p"})
	require.NoError(t, err)

	src := "package main\n\nfunc main() {}\n"
	results, err := p.ExecuteFile(context.Background(), InputSource{Path: "main.go", Content: src})
	require.NoError(t, err)

	var done *DoneFile
	for i := range results {
		switch v := results[i].(type) {
		case Match, Rewrite:
			t.Fatalf("unexpected result: %+v", v)
		case DoneFile:
			done = &v
		}
	}
	require.NotNil(t, done)
	require.False(t, done.HasResults)
}

func TestExecuteFileRewriteReplacesWholeFile(t *testing.T) {
	target := goLang(t)
	p, _, err := Compile(`$x => "replaced"`, nil, target, CompileOptions{Name: "p"})
	require.NoError(t, err)

	src := "package main\n\nfunc main() {}\n"
	results, err := p.ExecuteFile(context.Background(), InputSource{Path: "main.go", Content: src})
	require.NoError(t, err)

	var rewrite *Rewrite
	for i := range results {
		if v, ok := results[i].(Rewrite); ok {
			rewrite = &v
		}
	}
	require.NotNil(t, rewrite, "expected a Rewrite result")
	require.Equal(t, src, rewrite.Original)
	require.Equal(t, "replaced", rewrite.Rewritten)
}

func TestExecutePathsStreamingPreservesOrder(t *testing.T) {
	target := goLang(t)
	p, _, err := Compile(`$x`, nil, target, CompileOptions{Name: "p"})
	require.NoError(t, err)

	dir := t.TempDir()
	paths := writeGoFiles(t, dir, 8)

	var order []string
	err = p.ExecutePathsStreaming(context.Background(), paths, StreamOptions{Concurrency: 4}, func(r MatchResult) error {
		if v, ok := r.(InputFile); ok {
			order = append(order, v.Name)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, paths, order)
}

func TestExecutePathsStreamingHonoursCancel(t *testing.T) {
	target := goLang(t)
	p, _, err := Compile(`$x`, nil, target, CompileOptions{Name: "p"})
	require.NoError(t, err)

	dir := t.TempDir()
	paths := writeGoFiles(t, dir, 4)

	var cancel atomic.Bool
	cancel.Store(true)

	var done *AllDone
	err = p.ExecutePathsStreaming(context.Background(), paths, StreamOptions{Concurrency: 2, Cancel: &cancel}, func(r MatchResult) error {
		if v, ok := r.(AllDone); ok {
			done = &v
		}
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, done)
	require.Equal(t, ReasonCancelled, done.Reason)
	require.Equal(t, 0, done.Processed)
}

func writeGoFiles(t *testing.T, dir string, n int) []string {
	t.Helper()
	paths := make([]string, n)
	for i := 0; i < n; i++ {
		path := dir + "/" + string(rune('a'+i)) + ".go"
		require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc main() {}\n"), 0o644))
		paths[i] = path
	}
	return paths
}
