package pattern

import (
	"github.com/standardbeagle/gritql/internal/gritpos"
	"github.com/standardbeagle/gritql/internal/lang"
)

// FilePtr addresses a specific revision of a specific logical file
// within a FileRegistry: (file_index, version_index).
type FilePtr struct {
	File    int
	Version int
}

// Binding is a reference into a source: the four node-shaped variants
// (Node, List, String, Empty) plus two non-source variants (FileName,
// ConstantRef) used when a variable is bound to something that was
// never parsed.
type Binding interface {
	bindingNode()
	// Range reports the byte/position span this binding covers in its
	// source, when it has one; ok is false for FileName and ConstantRef
	// bindings.
	Range() (gritpos.Range, bool)
}

// NodeBinding references a single parsed AST node.
type NodeBinding struct {
	File FilePtr
	Node lang.Node
}

func (*NodeBinding) bindingNode() {}
func (b *NodeBinding) Range() (gritpos.Range, bool) {
	return gritpos.NewRange(b.Node.StartPosition(), b.Node.EndPosition(), b.Node.StartByte(), b.Node.EndByte()), true
}

// ListBinding references a named multi-field: all of parent's children
// under FieldID, as a unit (used so an insert can target "the list of
// arguments" rather than one element).
type ListBinding struct {
	File     FilePtr
	Parent   lang.Node
	FieldID  string
}

func (*ListBinding) bindingNode() {}
func (b *ListBinding) Range() (gritpos.Range, bool) {
	first, firstOK := fieldChild(b.Parent, b.FieldID, 0)
	if !firstOK {
		// Empty list: the binding's range collapses to the point
		// right after the parent's last child, so inserts still have
		// somewhere to land.
		pos := b.Parent.EndPosition()
		return gritpos.NewRange(pos, pos, b.Parent.EndByte(), b.Parent.EndByte()), true
	}
	last := first
	for i := 1; ; i++ {
		next, ok := fieldChild(b.Parent, b.FieldID, i)
		if !ok {
			break
		}
		last = next
	}
	return gritpos.NewRange(first.StartPosition(), last.EndPosition(), first.StartByte(), last.EndByte()), true
}

func fieldChild(parent lang.Node, fieldID string, occurrence int) (lang.Node, bool) {
	seen := 0
	for i := 0; i < parent.ChildCount(); i++ {
		child, ok := parent.Child(i)
		if !ok {
			continue
		}
		// go-tree-sitter's ChildByFieldName only returns the first
		// match for a field, so multi-valued fields are walked
		// positionally here instead, via the cursor's field name.
		if fieldNameOf(parent, i) == fieldID {
			if seen == occurrence {
				return child, true
			}
			seen++
		}
	}
	return nil, false
}

// fieldNameOf returns the field name of parent's i-th child, or "" if
// the grammar attaches none, by walking a fresh cursor to that index.
func fieldNameOf(parent lang.Node, index int) string {
	cursor := parent.Walk()
	if !cursor.GotoFirstChild() {
		return ""
	}
	for i := 0; i < index; i++ {
		if !cursor.GotoNextSibling() {
			return ""
		}
	}
	return cursor.FieldName()
}

// StringBinding references a byte range of source text that was never
// parsed as a node (e.g. a raw backtick snippet matched textually).
type StringBinding struct {
	File      FilePtr
	ByteRange gritpos.Range
}

func (*StringBinding) bindingNode() {}
func (b *StringBinding) Range() (gritpos.Range, bool) { return b.ByteRange, true }

// FileNameBinding references a file's path, independent of its content.
type FileNameBinding struct{ Path string }

func (*FileNameBinding) bindingNode() {}
func (b *FileNameBinding) Range() (gritpos.Range, bool) { return gritpos.Range{}, false }

// EmptyBinding represents an absent optional field: parent has no
// child under FieldID at all. The Undefined pattern matches it, and so
// do patterns that accept any value, such as Underscore or an unbound
// variable.
type EmptyBinding struct {
	File    FilePtr
	Parent  lang.Node
	FieldID string
}

func (*EmptyBinding) bindingNode() {}
func (b *EmptyBinding) Range() (gritpos.Range, bool) {
	pos := b.Parent.EndPosition()
	return gritpos.NewRange(pos, pos, b.Parent.EndByte(), b.Parent.EndByte()), true
}

// ConstantRefBinding wraps a compile-time constant value bound to a
// variable (e.g. the result of an arithmetic expression).
type ConstantRefBinding struct{ Value Constant }

func (*ConstantRefBinding) bindingNode() {}
func (b *ConstantRefBinding) Range() (gritpos.Range, bool) { return gritpos.Range{}, false }
