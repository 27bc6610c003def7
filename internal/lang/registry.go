package lang

import (
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"unsafe"

	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var (
	defaultMetavariableRegex = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)|\^([A-Za-z_][A-Za-z0-9_]*)`)
	defaultExactVariableRegex = regexp.MustCompile(`^\s*(?:\$([A-Za-z_][A-Za-z0-9_]*)|\^([A-Za-z_][A-Za-z0-9_]*))\s*$`)
	defaultBracketedRegex    = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\^\[([A-Za-z_][A-Za-z0-9_]*)\]`)
)

// tsLanguage is the shared TargetLanguage implementation for every
// tree-sitter-backed grammar the registry wires in; only the grammar
// pointer and the small per-language data tables differ.
type tsLanguage struct {
	name            string
	extensions      []string
	grammar         func() unsafe.Pointer
	commentSorts    map[string]bool
	statementSorts  map[string]bool
	snippetContexts []SnippetContext
	skipFields      map[skipKey]bool
	nodeTypes       map[string]NodeTypeInfo
	checkReplace    func(n Node, source []byte) []Replacement
	semanticWS      bool
}

type skipKey struct{ sort, field string }

func (l *tsLanguage) language() *tree_sitter.Language {
	return tree_sitter.NewLanguage(l.grammar())
}

func (l *tsLanguage) Name() string         { return l.name }
func (l *tsLanguage) Extensions() []string { return l.extensions }

func (l *tsLanguage) Parse(source []byte, path string) (Tree, error) {
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(l.language()); err != nil {
		return nil, err
	}
	return parseWith(parser, source)
}

func (l *tsLanguage) ParseSnippet(pre, body, post string) (Tree, error) {
	combined := pre + body + post
	return l.Parse([]byte(combined), "")
}

func (l *tsLanguage) SnippetContexts() []SnippetContext { return l.snippetContexts }

func (l *tsLanguage) MetavariableRegex() *regexp.Regexp        { return defaultMetavariableRegex }
func (l *tsLanguage) ExactVariableRegex() *regexp.Regexp       { return defaultExactVariableRegex }
func (l *tsLanguage) BracketedMetavariableRegex() *regexp.Regexp { return defaultBracketedRegex }

func (l *tsLanguage) IsComment(sort string) bool   { return l.commentSorts[sort] }
func (l *tsLanguage) IsStatement(sort string) bool { return l.statementSorts[sort] }

func (l *tsLanguage) IsCommentWrapper(n Node) bool {
	return l.commentSorts[n.Kind()]
}

func (l *tsLanguage) CheckReplacements(n Node, source []byte) []Replacement {
	if l.checkReplace == nil {
		return nil
	}
	return l.checkReplace(n, source)
}

func (l *tsLanguage) NodeTypes() map[string]NodeTypeInfo { return l.nodeTypes }

func (l *tsLanguage) SkipSnippetCompilation(sort, field string) bool {
	return l.skipFields[skipKey{sort, field}]
}

func (l *tsLanguage) SemanticWhitespace() bool { return l.semanticWS }

// Registry maps file extensions and language names to a TargetLanguage,
// mirroring the teacher's CommunityParserRegistry extension-dispatch
// idiom but returning the capability interface the matcher depends on
// instead of a raw *tree_sitter.Parser.
type Registry struct {
	mu         sync.RWMutex
	byExt      map[string]TargetLanguage
	byName     map[string]TargetLanguage
}

// NewRegistry builds a registry with every supported grammar wired in.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]TargetLanguage), byName: make(map[string]TargetLanguage)}
	for _, l := range builtinLanguages() {
		r.register(l)
	}
	return r
}

func (r *Registry) register(l TargetLanguage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[l.Name()] = l
	for _, ext := range l.Extensions() {
		r.byExt[ext] = l
	}
}

// ForExtension returns the language claiming ext (e.g. ".go"), if any.
func (r *Registry) ForExtension(ext string) (TargetLanguage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byExt[ext]
	return l, ok
}

// ForPath derives a language from a file path's extension.
func (r *Registry) ForPath(path string) (TargetLanguage, bool) {
	return r.ForExtension(strings.ToLower(filepath.Ext(path)))
}

// ForName returns the language registered under name (e.g. "go").
func (r *Registry) ForName(name string) (TargetLanguage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byName[name]
	return l, ok
}

// Names lists every registered language name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

func builtinLanguages() []TargetLanguage {
	return []TargetLanguage{
		&tsLanguage{
			name:         "go",
			extensions:   []string{".go"},
			grammar:      func() unsafe.Pointer { return tree_sitter_go.Language() },
			commentSorts: setOf("comment"),
			statementSorts: setOf(
				"if_statement", "for_statement", "return_statement",
				"expression_statement", "assignment_statement",
				"short_var_declaration", "go_statement", "defer_statement",
				"switch_statement", "select_statement", "send_statement",
			),
			snippetContexts: []SnippetContext{
				{Prefix: "package main\nfunc f() {\n", Suffix: "\n}\n"},
				{Prefix: "package main\n", Suffix: "\n"},
			},
			skipFields: map[skipKey]bool{
				{"function_declaration", "parameters"}: true,
			},
		},
		&tsLanguage{
			name:         "javascript",
			extensions:   []string{".js", ".jsx", ".mjs", ".cjs"},
			grammar:      func() unsafe.Pointer { return tree_sitter_javascript.Language() },
			commentSorts: setOf("comment"),
			statementSorts: setOf(
				"if_statement", "for_statement", "for_in_statement",
				"while_statement", "return_statement", "expression_statement",
				"variable_declaration", "switch_statement", "try_statement",
			),
			snippetContexts: []SnippetContext{
				{Prefix: "function f() {\n", Suffix: "\n}\n"},
				{Prefix: "", Suffix: ""},
			},
			skipFields: map[skipKey]bool{
				{"function_declaration", "parameters"}: true,
			},
		},
		&tsLanguage{
			name:         "typescript",
			extensions:   []string{".ts", ".tsx"},
			grammar:      func() unsafe.Pointer { return tree_sitter_typescript.LanguageTypescript() },
			commentSorts: setOf("comment"),
			statementSorts: setOf(
				"if_statement", "for_statement", "for_in_statement",
				"while_statement", "return_statement", "expression_statement",
				"variable_declaration", "switch_statement", "try_statement",
			),
			snippetContexts: []SnippetContext{
				{Prefix: "function f() {\n", Suffix: "\n}\n"},
				{Prefix: "", Suffix: ""},
			},
			skipFields: map[skipKey]bool{
				{"function_declaration", "parameters"}: true,
			},
		},
		&tsLanguage{
			name:         "python",
			extensions:   []string{".py"},
			grammar:      func() unsafe.Pointer { return tree_sitter_python.Language() },
			commentSorts: setOf("comment"),
			statementSorts: setOf(
				"if_statement", "for_statement", "while_statement",
				"return_statement", "expression_statement", "assignment",
				"with_statement", "try_statement", "import_statement",
				"import_from_statement",
			),
			snippetContexts: []SnippetContext{
				{Prefix: "def f():\n    ", Suffix: "\n"},
				{Prefix: "", Suffix: ""},
			},
			semanticWS: true,
		},
		&tsLanguage{
			name:         "rust",
			extensions:   []string{".rs"},
			grammar:      func() unsafe.Pointer { return tree_sitter_rust.Language() },
			commentSorts: setOf("line_comment", "block_comment"),
			statementSorts: setOf(
				"if_expression", "for_expression", "while_expression",
				"return_expression", "expression_statement", "let_declaration",
			),
			snippetContexts: []SnippetContext{
				{Prefix: "fn f() {\n", Suffix: "\n}\n"},
				{Prefix: "", Suffix: ""},
			},
		},
		&tsLanguage{
			name:         "java",
			extensions:   []string{".java"},
			grammar:      func() unsafe.Pointer { return tree_sitter_java.Language() },
			commentSorts: setOf("line_comment", "block_comment"),
			statementSorts: setOf(
				"if_statement", "for_statement", "while_statement",
				"return_statement", "expression_statement", "local_variable_declaration",
				"try_statement", "switch_expression",
			),
			snippetContexts: []SnippetContext{
				{Prefix: "class F { void f() {\n", Suffix: "\n} }\n"},
				{Prefix: "class F {\n", Suffix: "\n}\n"},
			},
		},
		&tsLanguage{
			name:         "csharp",
			extensions:   []string{".cs"},
			grammar:      func() unsafe.Pointer { return tree_sitter_csharp.Language() },
			commentSorts: setOf("comment"),
			statementSorts: setOf(
				"if_statement", "for_statement", "while_statement",
				"return_statement", "expression_statement", "local_declaration_statement",
				"try_statement", "switch_statement",
			),
			snippetContexts: []SnippetContext{
				{Prefix: "class F { void f() {\n", Suffix: "\n} }\n"},
				{Prefix: "class F {\n", Suffix: "\n}\n"},
			},
		},
		&tsLanguage{
			name:         "cpp",
			extensions:   []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp"},
			grammar:      func() unsafe.Pointer { return tree_sitter_cpp.Language() },
			commentSorts: setOf("comment"),
			statementSorts: setOf(
				"if_statement", "for_statement", "while_statement",
				"return_statement", "expression_statement", "declaration",
				"switch_statement", "try_statement",
			),
			snippetContexts: []SnippetContext{
				{Prefix: "void f() {\n", Suffix: "\n}\n"},
				{Prefix: "", Suffix: ""},
			},
		},
		&tsLanguage{
			name:         "php",
			extensions:   []string{".php"},
			grammar:      func() unsafe.Pointer { return tree_sitter_php.LanguagePHP() },
			commentSorts: setOf("comment"),
			statementSorts: setOf(
				"if_statement", "for_statement", "while_statement",
				"return_statement", "expression_statement",
			),
			snippetContexts: []SnippetContext{
				{Prefix: "<?php\nfunction f() {\n", Suffix: "\n}\n"},
				{Prefix: "<?php\n", Suffix: "\n"},
			},
		},
		&tsLanguage{
			name:         "zig",
			extensions:   []string{".zig"},
			grammar:      func() unsafe.Pointer { return tree_sitter_zig.Language() },
			commentSorts: setOf("line_comment", "doc_comment"),
			statementSorts: setOf(
				"if_statement", "for_statement", "while_statement",
				"return_statement", "var_decl_expr_statement",
			),
			snippetContexts: []SnippetContext{
				{Prefix: "fn f() void {\n", Suffix: "\n}\n"},
				{Prefix: "", Suffix: ""},
			},
		},
	}
}

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}
