// Package lang defines the Target-Language Capability the matcher runs
// against: parsing, snippet-parsing contexts, node-kind/field metadata,
// comment/statement detection, metavariable regexes, and language-
// specific post-parse fixups. The core never imports a concrete
// grammar; it only ever talks to this interface.
package lang

import (
	"regexp"

	"github.com/standardbeagle/gritql/internal/gritpos"
)

// Node is an opaque handle into a parsed tree: a kind id (sort), an
// ordered list of named fields, a byte range, and a walkable cursor.
// Implementations own the underlying parser memory; callers never
// introspect beyond this surface.
type Node interface {
	Kind() string
	KindID() uint16
	IsNamed() bool
	IsMissing() bool
	StartByte() uint32
	EndByte() uint32
	StartPosition() gritpos.Position
	EndPosition() gritpos.Position
	ChildByFieldName(name string) (Node, bool)
	ChildCount() int
	Child(i int) (Node, bool)
	NamedChildCount() int
	NamedChild(i int) (Node, bool)
	Walk() Cursor
	Text(source []byte) string
	Equal(other Node) bool
}

// Cursor walks a Node's descendants in tree order.
type Cursor interface {
	GotoFirstChild() bool
	GotoNextSibling() bool
	GotoParent() bool
	Node() Node
	FieldName() string
}

// Tree is a parsed document; Close releases the underlying parser
// resources once the core is done walking it.
type Tree interface {
	RootNode() Node
	Close()
}

// SnippetContext is a (prefix, suffix) pair a snippet is sandwiched
// between and reparsed in, to resolve ambiguous fragments (e.g.
// `<f>…</f>` vs `<f />`). Every context that parses cleanly contributes
// a candidate AST node; candidates are matched disjunctively.
type SnippetContext struct {
	Prefix string
	Suffix string
}

// Replacement is a language-specific post-parse fixup: a byte range to
// rewrite before the node is handed to the matcher (e.g. substituting
// an empty arrow-function body `=> {}` for a normalized form).
type Replacement struct {
	Range gritpos.Range
	Text  string
}

// FieldSchema describes one named field of a node sort: its name and
// whether the grammar allows more than one child under that field.
type FieldSchema struct {
	Name     string
	Multiple bool
}

// NodeTypeInfo is the field schema for a single grammar sort, used to
// validate AstNode patterns against the target grammar.
type NodeTypeInfo struct {
	Sort   string
	Fields []FieldSchema
}

// TargetLanguage is the capability the matcher, compiler, and unparser
// depend on instead of any concrete grammar package.
type TargetLanguage interface {
	// Name is the language identifier used in config and CLI flags.
	Name() string

	// Extensions lists the file extensions this language claims.
	Extensions() []string

	// Parse parses source bytes. path is used only for diagnostics.
	Parse(source []byte, path string) (Tree, error)

	// ParseSnippet parses body sandwiched between pre and post, for
	// compiling a QL code-snippet pattern against this language's
	// grammar.
	ParseSnippet(pre, body, post string) (Tree, error)

	// SnippetContexts lists the contexts ParseSnippet should try, most
	// specific first.
	SnippetContexts() []SnippetContext

	// MetavariableRegex matches a metavariable occurrence inside a
	// snippet body, e.g. `$name` or `^name`.
	MetavariableRegex() *regexp.Regexp

	// ExactVariableRegex matches a snippet body that is itself,
	// entirely, a single metavariable reference.
	ExactVariableRegex() *regexp.Regexp

	// BracketedMetavariableRegex matches the bracketed metavariable
	// form (`${name}` / `^[name]`) legal only on a rewrite's RHS.
	BracketedMetavariableRegex() *regexp.Regexp

	// IsComment reports whether sort is a comment node kind.
	IsComment(sort string) bool

	// IsStatement reports whether sort is a statement node kind.
	IsStatement(sort string) bool

	// IsCommentWrapper reports whether node is a container whose sole
	// purpose is to carry a comment (used when deciding whether a
	// comment attached to a deleted node should also be removed).
	IsCommentWrapper(n Node) bool

	// CheckReplacements runs language-specific post-parse fixups over a
	// freshly parsed node.
	CheckReplacements(n Node, source []byte) []Replacement

	// NodeTypes returns the field schema for every sort in the grammar.
	NodeTypes() map[string]NodeTypeInfo

	// SkipSnippetCompilation reports whether the body of `field` on a
	// node of kind `sort` should be left to the fallback textual path
	// rather than compiled as a nested snippet (e.g. parameter lists
	// that don't parse standalone).
	SkipSnippetCompilation(sort, field string) bool

	// SemanticWhitespace reports whether this language's layout is
	// part of its grammar (e.g. Python's indentation). The unparser
	// skips its own separator padding for such languages, since a
	// snippet compiled against this grammar already carries whatever
	// indentation/newline its parse required.
	SemanticWhitespace() bool
}
