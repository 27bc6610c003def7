package pattern

// EffectKind distinguishes a pure textual insertion (zero-width,
// spliced at a point) from a rewrite that replaces an existing byte
// range.
type EffectKind int

const (
	EffectInsert EffectKind = iota
	EffectRewrite
)

// Effect is a pending edit accumulated on State during matching: a
// binding to replace (or insert at), the resolved value to render in
// its place, and which of the two the linearizer/unparser must treat
// it as. Effects never mutate the parsed AST directly; they are
// resolved into text by the linearizer and unparser after the match
// completes.
type Effect struct {
	Binding     Binding
	Replacement ResolvedPattern
	Kind        EffectKind
}
