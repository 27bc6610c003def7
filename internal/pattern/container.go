package pattern

import "github.com/standardbeagle/gritql/internal/symtab"

// Container is anything addressable for read and write during
// execution: a variable slot, a map-key accessor, a list index, or a
// function call used as an lvalue is never valid (FunctionCall only
// appears in read position, but shares the sum type for symmetry with
// the original grammar).
type Container interface {
	containerNode()
}

// VariableContainer addresses a single variable slot directly.
type VariableContainer struct{ Var symtab.Variable }

func (*VariableContainer) containerNode() {}

// Accessor addresses one key of a Map-valued container.
type Accessor struct {
	Map Container
	Key string
}

func (*Accessor) containerNode() {}

// ListIndex addresses one element of a List-valued container. Negative
// Index counts from the end, mirroring QL's `list[-1]` syntax.
type ListIndex struct {
	List  Container
	Index int
}

func (*ListIndex) containerNode() {}

// FunctionCallContainer wraps a CallFunction used where a Container is
// syntactically expected (read-only; the compiler accepts it as an
// assignment target, and assigning through it fails at run time).
type FunctionCallContainer struct{ Call *CallFunction }

func (*FunctionCallContainer) containerNode() {}
