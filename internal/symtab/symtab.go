// Package symtab implements the variable registry described by
// component D: names resolve to (scope, slot) pairs, scope 0 is a
// global scope with fixed reserved slots, and each pattern/predicate/
// function definition introduces its own scope.
package symtab

import "github.com/standardbeagle/gritql/internal/gritpos"

// Reserved global slot indices, fixed so the runtime can address them
// without a name lookup.
const (
	SlotMatch            = 0
	SlotFilename         = 1
	SlotAbsoluteFilename = 2
	SlotProgram          = 3
	SlotNewFiles         = 4

	reservedGlobalSlots = 5
)

// GlobalScope is the fixed index of the scope holding $match,
// $filename, $absolute_filename, $program, and $new_files, plus every
// variable named $GLOBAL_*.
const GlobalScope = 0

// Variable addresses a single slot within a scope: (scope_index,
// slot_index).
type Variable struct {
	Scope int
	Slot  int
}

// scopeBuilder accumulates the name -> slot mapping for one scope while
// a definition's body is compiled.
type scopeBuilder struct {
	names []string
	index map[string]int
}

func newScopeBuilder() *scopeBuilder {
	return &scopeBuilder{index: make(map[string]int)}
}

func (s *scopeBuilder) register(name string) int {
	if slot, ok := s.index[name]; ok {
		return slot
	}
	slot := len(s.names)
	s.names = append(s.names, name)
	s.index[name] = slot
	return slot
}

func (s *scopeBuilder) lookup(name string) (int, bool) {
	slot, ok := s.index[name]
	return slot, ok
}

// Table is the compile-time symbol table: a global scope plus one
// scope per definition, built incrementally as the compiler walks
// definition bodies.
type Table struct {
	scopes []*scopeBuilder
	// Locations records the source position where a variable was
	// first registered, for "unbound variable" diagnostics that want
	// to point at the *using* reference rather than the registration.
	Locations map[Variable]gritpos.Position
}

// NewTable creates a Table with the global scope pre-seeded with its
// five reserved slots, in fixed order.
func NewTable() *Table {
	t := &Table{Locations: make(map[Variable]gritpos.Position)}
	global := newScopeBuilder()
	for _, name := range []string{"$match", "$filename", "$absolute_filename", "$program", "$new_files"} {
		global.register(name)
	}
	t.scopes = append(t.scopes, global)
	return t
}

// NewScope allocates a fresh scope (for a pattern/predicate/function
// definition body) and returns its index.
func (t *Table) NewScope() int {
	t.scopes = append(t.scopes, newScopeBuilder())
	return len(t.scopes) - 1
}

// GlobalSlotCount reports how many slots the global scope currently holds.
func (t *Table) GlobalSlotCount() int {
	return len(t.scopes[GlobalScope].names)
}

// ScopeSize reports how many slots a scope currently holds.
func (t *Table) ScopeSize(scope int) int {
	return len(t.scopes[scope].names)
}

// Register resolves name within scope, registering a new slot if the
// name hasn't been seen there before. Names beginning with "$GLOBAL_"
// always register into the global scope regardless of the scope
// passed in, per the reserved-name convention.
func (t *Table) Register(scope int, name string, pos gritpos.Position) Variable {
	target := scope
	if isGlobalName(name) {
		target = GlobalScope
	}
	slot := t.scopes[target].register(name)
	v := Variable{Scope: target, Slot: slot}
	if _, exists := t.Locations[v]; !exists {
		t.Locations[v] = pos
	}
	return v
}

// Lookup resolves name, first within scope, then in the global scope.
// Returns ok=false when the name is unbound in both.
func (t *Table) Lookup(scope int, name string) (Variable, bool) {
	if isGlobalName(name) {
		if slot, ok := t.scopes[GlobalScope].lookup(name); ok {
			return Variable{Scope: GlobalScope, Slot: slot}, true
		}
		return Variable{}, false
	}
	if slot, ok := t.scopes[scope].lookup(name); ok {
		return Variable{Scope: scope, Slot: slot}, true
	}
	if slot, ok := t.scopes[GlobalScope].lookup(name); ok {
		return Variable{Scope: GlobalScope, Slot: slot}, true
	}
	return Variable{}, false
}

// ResolveOrRegister looks up name in scope, registering it there (or in
// globals for $GLOBAL_* names) if it has never been seen. This is the
// operation the compiler calls for every variable reference: first use
// binds, later uses just resolve.
func (t *Table) ResolveOrRegister(scope int, name string, pos gritpos.Position) Variable {
	if v, ok := t.Lookup(scope, name); ok {
		return v
	}
	return t.Register(scope, name, pos)
}

func isGlobalName(name string) bool {
	return len(name) > len("$GLOBAL_") && name[:len("$GLOBAL_")] == "$GLOBAL_"
}

// ScopeCount reports the number of scopes allocated so far (global
// scope included).
func (t *Table) ScopeCount() int { return len(t.scopes) }

// ScopeSizes returns the slot count of every scope, in scope-index
// order, the shape NewState needs to size each scope's initial frame.
func (t *Table) ScopeSizes() []int {
	sizes := make([]int, len(t.scopes))
	for i, s := range t.scopes {
		sizes[i] = len(s.names)
	}
	return sizes
}

// Names returns the variable names registered in scope, in slot order,
// so a caller can pair them back up with Locations for diagnostics that
// want to name a variable rather than address it.
func (t *Table) Names(scope int) []string {
	names := make([]string, len(t.scopes[scope].names))
	copy(names, t.scopes[scope].names)
	return names
}
