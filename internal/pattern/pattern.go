// Package pattern defines the compiled, typed representation the QL
// compiler produces and the matcher executes: the Pattern/Predicate/
// Container sum types, Definitions, Variables' runtime values
// (ResolvedPattern/Binding), and the pending-edit Effect type. None of
// these types know how to execute themselves; internal/match walks
// them.
package pattern

import (
	"github.com/standardbeagle/gritql/internal/gritpos"
	"github.com/standardbeagle/gritql/internal/symtab"
)

// Pattern is the sum type over every QL pattern variant. Implementations
// are value-like and immutable once compiled; the matcher never
// mutates a Pattern, only the State it is matched against.
type Pattern interface {
	patternNode()
}

// --- Structural ---

// FieldPattern is one named-field slot of an AstNode pattern: which
// field, whether the grammar allows more than one child there, and the
// pattern that must match the child (or child list).
type FieldPattern struct {
	FieldID  string
	Multiple bool
	Value    Pattern
}

// AstNode matches a single target AST node of the given sort whose
// named fields each match their corresponding FieldPattern.
type AstNode struct {
	Sort   string
	Fields []FieldPattern
}

func (*AstNode) patternNode() {}

// List matches a sequence of resolved patterns, honoring Dots wildcard
// semantics (see the matcher's list-matching logic).
type List struct {
	Elements []Pattern
}

func (*List) patternNode() {}

// Map matches a resolved Map value key-by-key.
type Map struct {
	Entries map[string]Pattern
}

func (*Map) patternNode() {}

// Dots is the list-pattern wildcard for zero or more elements. Two
// consecutive Dots in the same list is a compile error, enforced by
// the compiler, not this type.
type Dots struct{}

func (Dots) patternNode() {}

// Underscore matches anything without binding it.
type Underscore struct{}

func (Underscore) patternNode() {}

// Top always succeeds.
type Top struct{}

func (Top) patternNode() {}

// Bottom always fails.
type Bottom struct{}

func (Bottom) patternNode() {}

// --- Logical ---

// And succeeds iff every child pattern succeeds against the same
// binding, threading state through in order.
type And struct{ Patterns []Pattern }

func (*And) patternNode() {}

// Or succeeds on the first child pattern that succeeds, restoring
// state between attempts.
type Or struct{ Patterns []Pattern }

func (*Or) patternNode() {}

// Any is semantically identical to Or but signals (for diagnostics)
// that the author intends "at least one of these, order-independent".
type Any struct{ Patterns []Pattern }

func (*Any) patternNode() {}

// Not succeeds iff Inner fails; never binds variables from Inner.
type Not struct{ Inner Pattern }

func (*Not) patternNode() {}

// Maybe succeeds unconditionally; if Inner fails, state is restored to
// entry and the match continues without its bindings.
type Maybe struct{ Inner Pattern }

func (*Maybe) patternNode() {}

// If evaluates Predicate; on success matches Then, on failure matches
// Else (which may be nil, behaving like Top).
type If struct {
	Predicate Predicate
	Then      Pattern
	Else      Pattern
}

func (*If) patternNode() {}

// Where matches Inner, then evaluates Predicate against the resulting
// state; the whole construct fails if either step fails.
type Where struct {
	Inner     Pattern
	Predicate Predicate
}

func (*Where) patternNode() {}

// --- Quantifiers ---

// Contains walks the target subtree pre-order looking for a node where
// Inner succeeds. Until, if non-nil, is evaluated at each node to
// decide whether to descend further (descent is skipped once Until
// succeeds).
type Contains struct {
	Inner Pattern
	Until Pattern
}

func (*Contains) patternNode() {}

// Within is Contains' dual: scans ancestors instead of descendants.
type Within struct{ Inner Pattern }

func (*Within) patternNode() {}

// Some matches Inner against at least one element of a list/files value.
type Some struct{ Inner Pattern }

func (*Some) patternNode() {}

// Every matches Inner against every element of a list/files value.
type Every struct{ Inner Pattern }

func (*Every) patternNode() {}

// Includes matches Inner against a sub-value without requiring full
// structural coverage (used for Map/List "contains at least" checks).
type Includes struct{ Inner Pattern }

func (*Includes) patternNode() {}

// After matches Inner. The matcher does not check position in
// file/list enumeration order: After matches exactly when Inner does.
type After struct{ Inner Pattern }

func (*After) patternNode() {}

// Before is After's dual; like After, it matches exactly when Inner
// does, with no check of enumeration order.
type Before struct{ Inner Pattern }

func (*Before) patternNode() {}

// --- Data ---

// StringConstant matches (or produces) a fixed string value.
type StringConstant struct{ Value string }

func (*StringConstant) patternNode() {}

// IntConstant matches a fixed integer value.
type IntConstant struct{ Value int64 }

func (*IntConstant) patternNode() {}

// FloatConstant matches a fixed floating-point value.
type FloatConstant struct{ Value float64 }

func (*FloatConstant) patternNode() {}

// BooleanConstant matches a fixed boolean value.
type BooleanConstant struct{ Value bool }

func (*BooleanConstant) patternNode() {}

// Regex matches a resolved string value against a regular expression,
// optionally binding named capture groups to sub-patterns.
type Regex struct {
	Source  string
	Binding map[string]Pattern
}

func (*Regex) patternNode() {}

// RangePattern matches a resolved value whose source range equals Range.
type RangePattern struct{ Range gritpos.Range }

func (*RangePattern) patternNode() {}

// Undefined matches only the undefined constant.
type Undefined struct{}

func (Undefined) patternNode() {}

// --- Computation ---

// BinaryOp is shared by Add/Sub/Mul/Div/Mod.
type BinaryOp struct {
	Op    ArithOp
	Left  Pattern
	Right Pattern
}

func (*BinaryOp) patternNode() {}

// ArithOp enumerates the arithmetic operators.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

// Accumulate appends the evaluation of Right onto the list bound to
// the Left container (`+=` semantics).
type Accumulate struct {
	Left  Container
	Right Pattern
}

func (*Accumulate) patternNode() {}

// Assignment binds the evaluation of Value to the Target container.
type Assignment struct {
	Target Container
	Value  Pattern
}

func (*Assignment) patternNode() {}

// Rewrite matches LHS; on success, emits an Effect replacing LHS's
// binding with RHS rendered to text. Annotation carries an optional
// language-specific hint (e.g. a comment directive).
type Rewrite struct {
	LHS        Pattern
	RHS        Pattern
	Annotation string
}

func (*Rewrite) patternNode() {}

// Log emits an AnalysisLog entry (component-level diagnostic) without
// affecting match success.
type Log struct {
	Level   int
	Message Pattern
}

func (*Log) patternNode() {}

// Sequential evaluates each step's pattern in turn against the
// *current* file revision, allowing later steps to see earlier steps'
// rewrites once a multifile step loop commits them.
type Sequential struct{ Steps []Pattern }

func (*Sequential) patternNode() {}

// Like evaluates to a similarity score comparing the current binding
// against Reference (text or a variable), succeeding when the score
// meets Threshold.
type Like struct {
	Reference Pattern
	Threshold float64
}

func (*Like) patternNode() {}

// --- Abstraction ---

// VariablePattern refers to a previously-registered (scope, slot) slot.
type VariablePattern struct{ Var symtab.Variable }

func (*VariablePattern) patternNode() {}

// Call invokes the pattern definition at DefinitionIndex with Args
// bound to its parameter slots.
type Call struct {
	DefinitionIndex int
	Args            []Pattern
}

func (*Call) patternNode() {}

// Bubble wraps Definition together with Args, used by auto-wrap for the
// synthetic top-level match. The matcher executes Definition against
// the current frames; it does not execute Args and pushes no fresh
// frame for them.
type Bubble struct {
	Args       []Pattern
	Definition Pattern
}

func (*Bubble) patternNode() {}

// CallBuiltIn invokes a built-in function by index (e.g. `lowercase`,
// `join`, called by name from QL source).
type CallBuiltIn struct {
	Index int
	Args  []Pattern
}

func (*CallBuiltIn) patternNode() {}

// CallFunction invokes a user FunctionDefinition, producing a
// ResolvedPattern rather than a boolean match.
type CallFunction struct {
	DefinitionIndex int
	Args            []Pattern
}

func (*CallFunction) patternNode() {}

// CallForeignFunction invokes an out-of-process/native function
// definition; its return value must be valid UTF-8 text.
type CallForeignFunction struct {
	DefinitionIndex int
	Args            []Pattern
}

func (*CallForeignFunction) patternNode() {}

// FilePattern matches a single file, binding Name and Body to the
// file's name and content patterns respectively.
type FilePattern struct {
	Name Pattern
	Body Pattern
}

func (*FilePattern) patternNode() {}

// FilesPattern matches the multifile Files resolved value.
type FilesPattern struct{ Inner Pattern }

func (*FilesPattern) patternNode() {}

// Limit gives Inner a budget of N pattern and predicate calls; once it
// is spent, further calls inside Inner fail. Inner's own match attempts
// are not counted against it.
type Limit struct {
	N     int
	Inner Pattern
}

func (*Limit) patternNode() {}

// CodeSnippet is the compiled form of a backtick snippet: one
// candidate AstNode-shaped pattern per sort id the snippet parsed as
// under some language snippet context, plus an optional dynamic
// fallback used when matching against values that aren't AST nodes.
type CodeSnippet struct {
	PatternsBySort map[string]Pattern
	Dynamic        *DynamicPattern
}

func (*CodeSnippet) patternNode() {}

// DynamicPattern renders a sequence of literal text chunks and
// variable references into text at effect-emission time; used for
// rewrite RHS snippets containing bracketed metavariables.
type DynamicPattern struct {
	Parts []DynamicPart
}

func (*DynamicPattern) patternNode() {}

// DynamicPart is one piece of a DynamicPattern: either literal text or
// a variable reference.
type DynamicPart struct {
	Literal string
	Var     *symtab.Variable
}
