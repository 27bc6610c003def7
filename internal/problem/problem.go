// Package problem is the Execute API façade: it compiles a QL program
// into a Problem once, then runs it against any number of target files,
// threading each file's match/rewrite/reparse cycle through
// internal/match, internal/unparse and internal/effects and reporting a
// MatchResult stream a caller can render or act on.
package problem

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/gritql/internal/compiler"
	"github.com/standardbeagle/gritql/internal/errors"
	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/match"
	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/ql"
	"github.com/standardbeagle/gritql/internal/similarity"
	"github.com/standardbeagle/gritql/internal/symtab"
)

// Problem is a compiled pattern ready to execute against target files:
// the compiler's output plus the bits a façade caller needs that
// compiler.Result doesn't carry on its own (a display name, a content
// hash of the compile inputs, the root scope a top-level match binds
// into, and the similarity scorer Like execution needs).
type Problem struct {
	Lang lang.TargetLanguage

	Root                pattern.Pattern
	PatternDefs         []pattern.Definition
	PredicateDefs       []pattern.Definition
	FunctionDefs        []pattern.Definition
	ForeignFunctionDefs []pattern.Definition
	Scopes              *symtab.Table
	RootScope           int
	IsMultifile         bool
	HasLimit            bool
	BuiltinNames        []string
	CompileLogs         []errors.AnalysisLog

	Name string
	Hash uint64

	// VariableLocations maps every variable name registered anywhere in
	// the program to the source position it was first declared at, for
	// diagnostics that want to name a variable in the original QL text.
	VariableLocations map[string]Location

	Similarity            match.Similarity
	ForeignFunctionRunner match.ForeignFunctionRunner
}

// Location is a QL source position, detached from symtab's internal
// Variable addressing.
type Location struct {
	Line, Column uint32
}

// Library is a named library source, keyed the way a root program's
// `import` resolves them (module-relative name, without extension).
type Library struct {
	Name   string
	Source string
}

// CompileOptions configures Compile beyond the bare source/language.
type CompileOptions struct {
	// Name labels the Problem for diagnostics (e.g. the pattern file's
	// path); purely informational.
	Name string

	Similarity            match.Similarity
	ForeignFunctionRunner match.ForeignFunctionRunner
}

// Compile parses source and every library, compiles them against
// targetLang, and returns the resulting Problem. Parse errors from any
// file are reported as errors.CompileError, and so are compiler errors.
// On success the compiler's own diagnostics are returned in full as the
// second result; on any error that result is nil.
func Compile(source string, libs []Library, targetLang lang.TargetLanguage, opts CompileOptions) (*Problem, []errors.AnalysisLog, error) {
	root, err := parseQL(opts.Name, source)
	if err != nil {
		return nil, nil, err
	}

	// Library files compile in a stable order so that a program's
	// compiled shape (and so its Hash) doesn't depend on map iteration
	// or filesystem listing order.
	sorted := append([]Library(nil), libs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	libNodes := make([]*ql.Node, 0, len(sorted))
	for _, lib := range sorted {
		node, err := parseQL(lib.Name, lib.Source)
		if err != nil {
			return nil, nil, err
		}
		libNodes = append(libNodes, node)
	}

	result, err := compiler.Compile(root, libNodes, targetLang)
	if err != nil {
		return nil, nil, errors.NewCompileError(opts.Name, 0, 0, err.Error()).WithUnderlying(err)
	}

	scorer := opts.Similarity
	if scorer == nil {
		scorer = similarity.New()
	}

	p := &Problem{
		Lang:                  targetLang,
		Root:                  result.Root,
		PatternDefs:           result.PatternDefs,
		PredicateDefs:         result.PredicateDefs,
		FunctionDefs:          result.FunctionDefs,
		ForeignFunctionDefs:   result.ForeignFunctionDefs,
		Scopes:                result.Scopes,
		RootScope:             result.Scopes.ScopeCount() - 1,
		IsMultifile:           result.IsMultifile,
		HasLimit:              result.HasLimit,
		BuiltinNames:          result.BuiltinNames,
		CompileLogs:           result.Logs,
		Name:                  opts.Name,
		VariableLocations:     variableLocations(result.Scopes),
		Similarity:            scorer,
		ForeignFunctionRunner: opts.ForeignFunctionRunner,
	}
	p.Hash = hashProgram(opts.Name, source, sorted, targetLang.Name())
	return p, result.Logs, nil
}

func parseQL(name, source string) (*ql.Node, error) {
	parser := ql.NewParser([]byte(source))
	root := parser.Parse()
	if errs := parser.Errors(); len(errs) > 0 {
		first := errs[0]
		return nil, errors.NewCompileError(name, 0, 0, first.Error()).WithUnderlying(first)
	}
	return root, nil
}

// hashProgram derives a content hash from every input that determines
// a Problem's compiled shape: the root source, each library's name and
// source (already sorted by name), and the target language. Two
// Compile calls with identical inputs always produce an identical
// Hash.
func hashProgram(name, source string, libs []Library, langName string) uint64 {
	h := xxhash.New()
	writeFramed(h, name)
	writeFramed(h, source)
	writeFramed(h, langName)
	for _, lib := range libs {
		writeFramed(h, lib.Name)
		writeFramed(h, lib.Source)
	}
	return h.Sum64()
}

func writeFramed(h *xxhash.Digest, s string) {
	var length [8]byte
	binary.LittleEndian.PutUint64(length[:], uint64(len(s)))
	h.Write(length[:])
	h.Write([]byte(s))
}

func variableLocations(scopes *symtab.Table) map[string]Location {
	out := make(map[string]Location)
	for scope := 0; scope < scopes.ScopeCount(); scope++ {
		for slot, name := range scopes.Names(scope) {
			v := symtab.Variable{Scope: scope, Slot: slot}
			pos, ok := scopes.Locations[v]
			if !ok {
				continue
			}
			if _, exists := out[name]; exists {
				continue
			}
			out[name] = Location{Line: pos.Line, Column: pos.Column}
		}
	}
	return out
}

func newExecState(p *Problem, files *match.FileRegistry) (*match.State, *match.ExecContext) {
	state := match.NewState(p.Scopes.ScopeSizes(), files)
	ectx := &match.ExecContext{
		Lang:                  p.Lang,
		Scopes:                p.Scopes,
		PatternDefs:           p.PatternDefs,
		PredicateDefs:         p.PredicateDefs,
		FunctionDefs:          p.FunctionDefs,
		ForeignFunctionDefs:   p.ForeignFunctionDefs,
		BuiltinNames:          p.BuiltinNames,
		Similarity:            p.Similarity,
		ForeignFunctionRunner: p.ForeignFunctionRunner,
	}
	return state, ectx
}

func errf(format string, args ...any) error {
	return fmt.Errorf("problem: "+format, args...)
}
