package match

import "github.com/standardbeagle/gritql/internal/lang"

// FieldChildren returns every child of parent attached under the named
// field, in order. go-tree-sitter's ChildByFieldName only returns the
// first match for a multi-valued field, so this walks a cursor over
// every child and checks its field name positionally instead.
func FieldChildren(parent lang.Node, fieldID string) []lang.Node {
	var out []lang.Node
	cursor := parent.Walk()
	if !cursor.GotoFirstChild() {
		return nil
	}
	for {
		if cursor.FieldName() == fieldID {
			out = append(out, cursor.Node())
		}
		if !cursor.GotoNextSibling() {
			break
		}
	}
	return out
}
