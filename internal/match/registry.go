package match

import (
	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/sourcemap"
)

// fileRecord is one logical input file: its name, and every revision
// produced as rewrite effects are applied and the result is reparsed.
// Revisions are appended, never mutated, so a pattern.FilePtr captured
// earlier in a match stays valid even after a later revision is pushed.
type fileRecord struct {
	Name      string
	Revisions []revision
	// newFile marks a file synthesized via $new_files rather than
	// present in the original input set.
	newFile bool
	// embedded is set when this file's source is itself extracted from
	// a larger host document (a notebook cell, a fenced code block);
	// the matcher rewrites the extracted text, and embedded maps that
	// rewrite back into the host's own encoding.
	embedded *sourcemap.Map
}

type revision struct {
	Source []byte
	Tree   lang.Tree
}

// FileRegistry owns every file touched by a match: the originally
// parsed inputs, plus every subsequent revision and any files created
// via $new_files. pattern.FilePtr addresses (file index, revision
// index) pairs into it.
type FileRegistry struct {
	files []*fileRecord
}

// NewFileRegistry builds an empty registry.
func NewFileRegistry() *FileRegistry {
	return &FileRegistry{}
}

// AddFile registers a freshly parsed input file and returns a FilePtr
// to its first (and so far only) revision.
func (r *FileRegistry) AddFile(name string, source []byte, tree lang.Tree) pattern.FilePtr {
	r.files = append(r.files, &fileRecord{
		Name:      name,
		Revisions: []revision{{Source: source, Tree: tree}},
	})
	return pattern.FilePtr{File: len(r.files) - 1, Version: 0}
}

// AddNewFile registers a file synthesized by a $new_files write, with
// no prior revision history.
func (r *FileRegistry) AddNewFile(name string, source []byte, tree lang.Tree) pattern.FilePtr {
	r.files = append(r.files, &fileRecord{
		Name:      name,
		Revisions: []revision{{Source: source, Tree: tree}},
		newFile:   true,
	})
	return pattern.FilePtr{File: len(r.files) - 1, Version: 0}
}

// PushRevision appends a new parsed revision for logical file index
// file (the latest rewrite of that file) and returns a FilePtr to it.
func (r *FileRegistry) PushRevision(file int, source []byte, tree lang.Tree) pattern.FilePtr {
	rec := r.files[file]
	rec.Revisions = append(rec.Revisions, revision{Source: source, Tree: tree})
	return pattern.FilePtr{File: file, Version: len(rec.Revisions) - 1}
}

// LatestRevision returns a FilePtr to the most recent revision of
// ptr.File, the pointer Sequential's step loop re-binds against once a
// step's rewrites have been applied.
func (r *FileRegistry) LatestRevision(ptr pattern.FilePtr) pattern.FilePtr {
	rec := r.files[ptr.File]
	return pattern.FilePtr{File: ptr.File, Version: len(rec.Revisions) - 1}
}

// Name returns a file's logical name (stable across revisions).
func (r *FileRegistry) Name(ptr pattern.FilePtr) string {
	return r.files[ptr.File].Name
}

// Source returns the revision's parsed source bytes.
func (r *FileRegistry) Source(ptr pattern.FilePtr) []byte {
	return r.files[ptr.File].Revisions[ptr.Version].Source
}

// Tree returns the revision's parsed tree.
func (r *FileRegistry) Tree(ptr pattern.FilePtr) lang.Tree {
	return r.files[ptr.File].Revisions[ptr.Version].Tree
}

// Root is a convenience for Tree(ptr).RootNode().
func (r *FileRegistry) Root(ptr pattern.FilePtr) lang.Node {
	return r.Tree(ptr).RootNode()
}

// IsNewFile reports whether ptr.File was synthesized via $new_files.
func (r *FileRegistry) IsNewFile(ptr pattern.FilePtr) bool {
	return r.files[ptr.File].newFile
}

// FileCount reports how many logical files (original plus synthesized)
// the registry currently holds.
func (r *FileRegistry) FileCount() int { return len(r.files) }

// FilePtrAt returns the FilePtr to the latest revision of the i-th
// logical file, for iterating every input at match start.
func (r *FileRegistry) FilePtrAt(i int) pattern.FilePtr {
	return r.LatestRevision(pattern.FilePtr{File: i})
}

// SetEmbeddedMap marks logical file index file as embedded inside a larger host
// document, described by m. A file with no embedded map is written out
// as its own bare revision text.
func (r *FileRegistry) SetEmbeddedMap(file int, m *sourcemap.Map) {
	r.files[file].embedded = m
}

// EmbeddedMap returns the host-document source map for file, if it
// was registered as embedded.
func (r *FileRegistry) EmbeddedMap(file int) (*sourcemap.Map, bool) {
	m := r.files[file].embedded
	return m, m != nil
}
