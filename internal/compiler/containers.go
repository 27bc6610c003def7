package compiler

import (
	"fmt"
	"strconv"

	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/ql"
)

// compileContainer compiles a syntax node appearing in lvalue position
// (the target of `:=`/`=`/`+=`, or a bare accessor/index read) into a
// Container.
func (ctx *Context) compileContainer(n *ql.Node, scope int) (pattern.Container, error) {
	if n == nil {
		return nil, fmt.Errorf("missing assignment target")
	}
	switch n.Kind {
	case ql.Variable:
		v := ctx.Scope.ResolveOrRegister(scope, n.Name, posOf(n))
		return &pattern.VariableContainer{Var: v}, nil
	case ql.Accessor:
		target, err := ctx.compileContainer(n.Field("target"), scope)
		if err != nil {
			return nil, err
		}
		return &pattern.Accessor{Map: target, Key: n.Name}, nil
	case ql.ListIndex:
		target, err := ctx.compileContainer(n.Field("target"), scope)
		if err != nil {
			return nil, err
		}
		idxNode := n.Field("index")
		if idxNode == nil || idxNode.Kind != ql.IntLiteral {
			return nil, fmt.Errorf("list index must be an integer literal")
		}
		idx, err := strconv.Atoi(idxNode.Str)
		if err != nil {
			return nil, fmt.Errorf("invalid list index %q: %w", idxNode.Str, err)
		}
		return &pattern.ListIndex{List: target, Index: idx}, nil
	case ql.NodeLike:
		call, err := ctx.compileNodeLikePattern(n, scope)
		if err != nil {
			return nil, err
		}
		fn, ok := call.(*pattern.CallFunction)
		if !ok {
			return nil, fmt.Errorf("%s is not a function, cannot use as a container", n.Name)
		}
		return &pattern.FunctionCallContainer{Call: fn}, nil
	default:
		return nil, fmt.Errorf("invalid assignment target syntax: %v", n.Kind)
	}
}
