package pattern

// ResolvedPattern is the matcher's runtime value type: what a variable,
// a match target, or a rewrite RHS actually evaluates to during
// execution, as opposed to the static Pattern tree that produced it.
type ResolvedPattern interface {
	resolvedNode()
}

// ResolvedBinding wraps a sequence of Bindings; most resolved values
// that came from the target AST carry exactly one, but list/file
// fields can carry several candidates kept disjunctively.
type ResolvedBinding struct{ Bindings []Binding }

func (*ResolvedBinding) resolvedNode() {}

// ResolvedSnippet is one candidate parse of a CodeSnippet: the sort id
// it parsed as under some snippet context, plus the pattern compiled
// from that parse.
type ResolvedSnippet struct {
	Sort    string
	Pattern Pattern
}

// ResolvedSnippets wraps the disjunctive set of ResolvedSnippet
// candidates a CodeSnippet resolved to.
type ResolvedSnippets struct{ Snippets []ResolvedSnippet }

func (*ResolvedSnippets) resolvedNode() {}

// ResolvedList is an ordered sequence of resolved values.
type ResolvedList struct{ Items []ResolvedPattern }

func (*ResolvedList) resolvedNode() {}

// ResolvedMap is a name-keyed collection of resolved values.
type ResolvedMap struct{ Entries map[string]ResolvedPattern }

func (*ResolvedMap) resolvedNode() {}

// ResolvedFile is either a pointer into the FileRegistry (not yet
// forced) or an already-resolved file value (name + body).
type ResolvedFile struct {
	Ptr      *FilePtr
	Name     ResolvedPattern
	Body     ResolvedPattern
}

func (*ResolvedFile) resolvedNode() {}

// ResolvedFiles wraps the multifile Files value: every input file
// pointer, bound as a unit so `files { ... }` patterns can iterate them.
type ResolvedFiles struct{ Files []ResolvedFile }

func (*ResolvedFiles) resolvedNode() {}

// Constant is the sum of scalar literal kinds a ResolvedConstant can hold.
type Constant struct {
	Kind  ConstantKind
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// ConstantKind discriminates Constant's payload.
type ConstantKind int

const (
	ConstString ConstantKind = iota
	ConstInt
	ConstFloat
	ConstBool
	ConstUndefined
)

// ResolvedConstant wraps a scalar constant value.
type ResolvedConstant struct{ Value Constant }

func (*ResolvedConstant) resolvedNode() {}
