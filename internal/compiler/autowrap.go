package compiler

import (
	"github.com/standardbeagle/gritql/internal/gritpos"
	"github.com/standardbeagle/gritql/internal/pattern"
)

// autoWrap turns a bare entry pattern into a full tree search: unless
// the author already took control of iteration (files/sequential/an
// explicit top-level contains), the pattern is searched for anywhere in
// the target's subtree and the global $match binds to whatever node it
// found, mirroring the shorthand
//
//	contains bubble($match) { <root> } where { $match := <bubble's $match> }
//
// The bubble carries its own copy of $match so the inner match doesn't
// clobber a $match the author's own pattern already bound; the outer
// where then republishes it to the reserved global slot every caller
// (rewrite templates, `log`, the CLI's match output) reads from.
func autoWrap(root pattern.Pattern, scope int, ctx *Context) pattern.Pattern {
	switch root.(type) {
	case *pattern.Sequential, *pattern.FilesPattern, *pattern.Contains:
		return root
	}

	matchVar := ctx.Scope.ResolveOrRegister(scope, "$match", gritpos.Position{})

	bubbleScope := ctx.Scope.NewScope()
	bubbleMatch := ctx.Scope.Register(bubbleScope, "$match", gritpos.Position{})

	bubble := &pattern.Bubble{
		Args:       []pattern.Pattern{&pattern.VariablePattern{Var: bubbleMatch}},
		Definition: &pattern.And{Patterns: []pattern.Pattern{&pattern.VariablePattern{Var: bubbleMatch}, root}},
	}

	assignMatch := &pattern.PredAssignment{
		Target: &pattern.VariableContainer{Var: matchVar},
		Value:  &pattern.VariablePattern{Var: bubbleMatch},
	}

	return &pattern.Where{
		Inner:     &pattern.Contains{Inner: bubble},
		Predicate: assignMatch,
	}
}
