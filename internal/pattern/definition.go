package pattern

import "github.com/standardbeagle/gritql/internal/gritpos"

// DefinitionKind distinguishes the four definition forms a name can
// resolve to; the kind participates in duplicate-name detection since
// a pattern and a predicate may share a name without conflict.
type DefinitionKind int

const (
	KindPattern DefinitionKind = iota
	KindPredicate
	KindFunction
	KindForeignFunction
)

func (k DefinitionKind) String() string {
	switch k {
	case KindPattern:
		return "pattern"
	case KindPredicate:
		return "predicate"
	case KindFunction:
		return "function"
	case KindForeignFunction:
		return "foreign function"
	default:
		return "unknown"
	}
}

// Parameter is one named, positional argument slot of a definition,
// reserved in the definition's own scope before its body is compiled.
type Parameter struct {
	Name string
	Pos  gritpos.Position
}

// Definition is the common shape of every top-level/library
// declaration: a name, its parameter list, the scope index its body
// was compiled against, and a source location for diagnostics.
type Definition struct {
	Kind       DefinitionKind
	Name       string
	Parameters []Parameter
	Scope      int
	Pos        gritpos.Position

	// Exactly one of these is populated, matching Kind.
	PatternBody         Pattern
	PredicateBody       Predicate
	FunctionBody        Predicate
	ForeignFunctionCall *ForeignFunctionCall
}

// ForeignFunctionCall describes how to invoke an out-of-process
// function definition: a command template whose arguments are
// rendered from the call's resolved arguments at invocation time.
type ForeignFunctionCall struct {
	Command []string
}
