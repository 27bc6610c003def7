// Package compiler implements the three-pass translation from a parsed
// QL program (internal/ql) into the typed pattern tree the matcher
// executes (internal/pattern): definition inventory, library closure,
// and body compilation against a threaded NodeCompilationContext.
package compiler

import (
	"fmt"

	"github.com/standardbeagle/gritql/internal/errors"
	"github.com/standardbeagle/gritql/internal/gritpos"
	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/ql"
	"github.com/standardbeagle/gritql/internal/symtab"
)

// defInfo is the inventory pass's record of one definition (its
// pattern.DefinitionKind, its slot index, and its syntax node), keyed by
// (kind, name) before any Definition struct exists.
type defInfo struct {
	kind  pattern.DefinitionKind
	index int
	node  *ql.Node
}

// Context is the NodeCompilationContext threaded through every
// recursive compile call: the variable table, the language whose
// snippet grammar backs CodeSnippet compilation, and the definition
// inventory built by the first pass.
type Context struct {
	Lang  lang.TargetLanguage
	Scope *symtab.Table
	Logs  []errors.AnalysisLog

	byName       map[string]*defInfo // keyed "<kind>:<name>"
	builtins     map[string]int
	builtinNames []string

	PatternDefs         []pattern.Definition
	PredicateDefs       []pattern.Definition
	FunctionDefs        []pattern.Definition
	ForeignFunctionDefs []pattern.Definition

	IsMultifile bool
	HasLimit    bool
}

// Result is everything Compile produces: the root pattern (auto-wrapped)
// plus the full definition inventory and variable table a Problem needs
// to execute matches.
type Result struct {
	Root                pattern.Pattern
	PatternDefs         []pattern.Definition
	PredicateDefs       []pattern.Definition
	FunctionDefs        []pattern.Definition
	ForeignFunctionDefs []pattern.Definition
	Scopes              *symtab.Table
	IsMultifile         bool
	HasLimit            bool
	Logs                []errors.AnalysisLog

	// BuiltinNames maps a CallBuiltIn.Index to the name it was compiled
	// from (e.g. "lowercase", "join"), in assignment order.
	BuiltinNames []string
}

func key(kind pattern.DefinitionKind, name string) string {
	return fmt.Sprintf("%d:%s", kind, name)
}

// Compile runs all three passes over root (the file carrying the entry
// pattern expression) plus libs (library files reached transitively
// through nodeLike calls, keyed by <name>.grit in the caller's module
// resolver), and returns the compiled Problem inputs.
func Compile(root *ql.Node, libs []*ql.Node, targetLang lang.TargetLanguage) (*Result, error) {
	ctx := &Context{
		Lang:     targetLang,
		Scope:    symtab.NewTable(),
		byName:   make(map[string]*defInfo),
		builtins: make(map[string]int),
	}

	allFiles := append([]*ql.Node{root}, libs...)

	// Pass 1: definition inventory. Duplicate names within the same
	// kind are a compile error; the same name used as both a pattern
	// and a predicate is allowed (they occupy different namespaces).
	for _, file := range allFiles {
		for _, def := range file.Children {
			if err := ctx.inventory(def); err != nil {
				return nil, err
			}
		}
	}

	// Pass 2: library closure. Every definition reachable from the
	// inventory is already present in ctx.byName regardless of whether
	// the root's entry pattern actually calls it; this mirrors the
	// reference compiler's conservative "pull in the whole file" closure
	// for single-file libraries, and flags files/patternLimit usage by
	// inspecting the raw entry pattern up front.
	ctx.IsMultifile = containsKeyword(root, ql.Files)
	ctx.HasLimit = containsKeyword(root, ql.Limit)

	// Pass 3: body compilation. Each definition compiles against a
	// fresh scope; parameters are pre-registered as slots 0..n-1 in
	// declaration order so Call sites can rebind them positionally.
	for _, file := range allFiles {
		for _, def := range file.Children {
			if err := ctx.compileDefinition(def); err != nil {
				return nil, err
			}
		}
	}

	entry := root.Field("entry")
	if entry == nil {
		return nil, fmt.Errorf("no pattern found: call a pattern definition, or write one at the end of the file")
	}
	rootScope := ctx.Scope.NewScope()
	root1, err := ctx.compilePattern(entry, rootScope)
	if err != nil {
		return nil, err
	}

	wrapped := autoWrap(root1, rootScope, ctx)

	return &Result{
		Root:                wrapped,
		PatternDefs:         ctx.PatternDefs,
		PredicateDefs:       ctx.PredicateDefs,
		FunctionDefs:        ctx.FunctionDefs,
		ForeignFunctionDefs: ctx.ForeignFunctionDefs,
		Scopes:              ctx.Scope,
		IsMultifile:         ctx.IsMultifile,
		HasLimit:            ctx.HasLimit,
		Logs:                ctx.Logs,
		BuiltinNames:        ctx.builtinNames,
	}, nil
}

func (ctx *Context) inventory(def *ql.Node) error {
	var kind pattern.DefinitionKind
	switch def.Kind {
	case ql.PatternDefinition:
		kind = pattern.KindPattern
	case ql.PredicateDefinition:
		kind = pattern.KindPredicate
	case ql.FunctionDefinition:
		kind = pattern.KindFunction
	case ql.ForeignFunctionDefinition:
		kind = pattern.KindForeignFunction
	default:
		return fmt.Errorf("unexpected top-level node kind %v", def.Kind)
	}
	k := key(kind, def.Name)
	if _, exists := ctx.byName[k]; exists {
		return fmt.Errorf("duplicate %s definition: %s", kind, def.Name)
	}
	var index int
	switch kind {
	case pattern.KindPattern:
		index = len(ctx.PatternDefs)
		ctx.PatternDefs = append(ctx.PatternDefs, pattern.Definition{})
	case pattern.KindPredicate:
		index = len(ctx.PredicateDefs)
		ctx.PredicateDefs = append(ctx.PredicateDefs, pattern.Definition{})
	case pattern.KindFunction:
		index = len(ctx.FunctionDefs)
		ctx.FunctionDefs = append(ctx.FunctionDefs, pattern.Definition{})
	case pattern.KindForeignFunction:
		index = len(ctx.ForeignFunctionDefs)
		ctx.ForeignFunctionDefs = append(ctx.ForeignFunctionDefs, pattern.Definition{})
	}
	ctx.byName[k] = &defInfo{kind: kind, index: index, node: def}
	return nil
}

func (ctx *Context) lookupDefinition(kind pattern.DefinitionKind, name string) (*defInfo, bool) {
	info, ok := ctx.byName[key(kind, name)]
	return info, ok
}

// builtinIndex assigns a stable index to a built-in pattern name the
// first time it is referenced, so unrelated calls to the same built-in
// across a program share one CallBuiltIn.Index.
func (ctx *Context) builtinIndex(name string) int {
	if idx, ok := ctx.builtins[name]; ok {
		return idx
	}
	idx := len(ctx.builtins)
	ctx.builtins[name] = idx
	ctx.builtinNames = append(ctx.builtinNames, name)
	return idx
}

// containsKeyword reports whether any node in the entry pattern's tree
// is of kind k. Used to detect `files { ... }` and `limit` usage
// up front, before body compilation needs the flags.
func containsKeyword(root *ql.Node, k ql.NodeKind) bool {
	entry := root.Field("entry")
	if entry == nil {
		return false
	}
	return walkContains(entry, k)
}

func walkContains(n *ql.Node, k ql.NodeKind) bool {
	if n == nil {
		return false
	}
	if n.Kind == k {
		return true
	}
	for _, c := range n.Children {
		if walkContains(c, k) {
			return true
		}
	}
	if n.Fields != nil {
		for _, c := range n.Fields {
			if walkContains(c, k) {
				return true
			}
		}
	}
	return false
}

// posOf stands in for a variable's declaration position until a caller
// with the source text resolves it properly via
// gritpos.PositionFromByteIndex; the compiler itself only carries byte
// offsets.
func posOf(n *ql.Node) gritpos.Position {
	return gritpos.Position{Line: 0, Column: uint32(n.StartByte)}
}
