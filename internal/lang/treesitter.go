package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/gritql/internal/gritpos"
)

// tsNode adapts a tree_sitter.Node to the Node interface. It carries a
// pointer to the node rather than a value because go-tree-sitter hands
// out *tree_sitter.Node from tree traversal and expects one back.
type tsNode struct {
	node *tree_sitter.Node
}

func wrapNode(n *tree_sitter.Node) (Node, bool) {
	if n == nil {
		return nil, false
	}
	return tsNode{node: n}, true
}

func (n tsNode) Kind() string    { return n.node.Kind() }
func (n tsNode) KindID() uint16  { return uint16(n.node.KindId()) }
func (n tsNode) IsNamed() bool   { return n.node.IsNamed() }
func (n tsNode) IsMissing() bool { return n.node.IsMissing() }
func (n tsNode) StartByte() uint32 { return n.node.StartByte() }
func (n tsNode) EndByte() uint32   { return n.node.EndByte() }

func (n tsNode) StartPosition() gritpos.Position {
	return pointToPosition(n.node.StartPosition())
}

func (n tsNode) EndPosition() gritpos.Position {
	return pointToPosition(n.node.EndPosition())
}

func (n tsNode) ChildByFieldName(name string) (Node, bool) {
	return wrapNode(n.node.ChildByFieldName(name))
}

func (n tsNode) ChildCount() int { return int(n.node.ChildCount()) }

func (n tsNode) Child(i int) (Node, bool) {
	return wrapNode(n.node.Child(uint(i)))
}

func (n tsNode) NamedChildCount() int { return int(n.node.NamedChildCount()) }

func (n tsNode) NamedChild(i int) (Node, bool) {
	return wrapNode(n.node.NamedChild(uint(i)))
}

func (n tsNode) Walk() Cursor {
	return &tsCursor{cursor: n.node.Walk()}
}

func (n tsNode) Text(source []byte) string {
	return string(source[n.node.StartByte():n.node.EndByte()])
}

func (n tsNode) Equal(other Node) bool {
	o, ok := other.(tsNode)
	if !ok {
		return false
	}
	return n.node.Equal(o.node)
}

// pointToPosition converts a 0-indexed tree-sitter Point into a
// 1-indexed gritpos.Position.
func pointToPosition(p tree_sitter.Point) gritpos.Position {
	return gritpos.NewPosition(uint32(p.Row)+1, uint32(p.Column)+1)
}

// tsCursor adapts a tree_sitter.TreeCursor to Cursor.
type tsCursor struct {
	cursor *tree_sitter.TreeCursor
}

func (c *tsCursor) GotoFirstChild() bool  { return c.cursor.GotoFirstChild() }
func (c *tsCursor) GotoNextSibling() bool { return c.cursor.GotoNextSibling() }
func (c *tsCursor) GotoParent() bool      { return c.cursor.GotoParent() }

func (c *tsCursor) Node() Node {
	n, _ := wrapNode(c.cursor.Node())
	return n
}

func (c *tsCursor) FieldName() string {
	return c.cursor.CurrentFieldName()
}

// tsTree adapts a tree_sitter.Tree to Tree.
type tsTree struct {
	tree *tree_sitter.Tree
}

func (t *tsTree) RootNode() Node {
	n, _ := wrapNode(t.tree.RootNode())
	return n
}

func (t *tsTree) Close() { t.tree.Close() }

// parseWith runs a tree-sitter parser against source and wraps the
// result, reporting an error only when the parser itself could not
// produce a tree at all (tree-sitter otherwise always returns a tree,
// possibly containing ERROR/MISSING nodes, which callers inspect via
// IsMissing/Kind rather than through a Go error).
func parseWith(parser *tree_sitter.Parser, source []byte) (Tree, error) {
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, errParseFailed
	}
	return &tsTree{tree: tree}, nil
}
