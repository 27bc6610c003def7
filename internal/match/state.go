// Package match implements the matcher runtime: walking a compiled
// pattern.Pattern tree against a target file's AST, threading variable
// bindings and pending Effects through State, and backtracking on
// failure by snapshotting and restoring that State.
package match

import (
	"github.com/standardbeagle/gritql/internal/errors"
	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/symtab"
)

// Slot is one variable's content within a single activation frame: its
// declared name (for diagnostics), the value it has been bound to (nil
// until a successful match assigns one), and the pattern it was
// declared against, used by FromPattern to re-derive a value from context
// when the slot has a pattern but no value yet (an unbound parameter
// passed a pattern argument rather than a concrete binding).
type Slot struct {
	Name    string
	Value   pattern.ResolvedPattern
	Pattern pattern.Pattern
}

// frame is one activation of a scope: its slots, sized to the scope's
// slot count at compile time.
type frame []Slot

// State is the mutable runtime threaded through every Execute call. Its
// Bindings are organized the way the compiled scope table is: one
// stack of frames per scope, so a recursive Call pushes a fresh frame
// onto its own scope's stack without disturbing the caller's.
type State struct {
	Bindings [][]frame
	Effects  []pattern.Effect
	Files    *FileRegistry

	// limitBudget tracks remaining attempts for the innermost active
	// Limit pattern; -1 (the default) means unbounded.
	limitBudget int
}

// NewState builds a State with one empty frame per scope, sized
// according to scopeSizes (scopeSizes[i] is the slot count of scope i).
func NewState(scopeSizes []int, files *FileRegistry) *State {
	bindings := make([][]frame, len(scopeSizes))
	for i, size := range scopeSizes {
		bindings[i] = []frame{make(frame, size)}
	}
	return &State{Bindings: bindings, Files: files, limitBudget: -1}
}

// Top returns the current (innermost) frame for scope.
func (s *State) Top(scope int) frame {
	stack := s.Bindings[scope]
	return stack[len(stack)-1]
}

// PushFrame activates a new call frame for scope, sized for its slot
// count, used when a Call, a predicate call or a CallFunction recurses
// into a definition's body.
func (s *State) PushFrame(scope, size int) {
	s.Bindings[scope] = append(s.Bindings[scope], make(frame, size))
}

// PopFrame retires the current frame for scope once a call returns.
func (s *State) PopFrame(scope int) {
	stack := s.Bindings[scope]
	s.Bindings[scope] = stack[:len(stack)-1]
}

// Snapshot captures enough of State to restore it verbatim after a
// failed alternative (Or/Maybe/Any), without aliasing any slice the
// live state might still mutate.
type Snapshot struct {
	bindings    [][]frame
	effects     []pattern.Effect
	limitBudget int
}

// Save takes a deep-enough copy of the mutable parts of State.
func (s *State) Save() Snapshot {
	bindings := make([][]frame, len(s.Bindings))
	for i, stack := range s.Bindings {
		cpStack := make([]frame, len(stack))
		for j, f := range stack {
			cpFrame := make(frame, len(f))
			copy(cpFrame, f)
			cpStack[j] = cpFrame
		}
		bindings[i] = cpStack
	}
	effects := make([]pattern.Effect, len(s.Effects))
	copy(effects, s.Effects)
	return Snapshot{bindings: bindings, effects: effects, limitBudget: s.limitBudget}
}

// Restore rewinds State to a previously captured Snapshot.
func (s *State) Restore(snap Snapshot) {
	s.Bindings = snap.bindings
	s.Effects = snap.effects
	s.limitBudget = snap.limitBudget
}

// ExecContext is the Q::ExecContext analogue: everything Execute needs
// that isn't carried on State itself, because it is shared read-only
// across the whole match rather than threaded/backtracked.
type ExecContext struct {
	Lang   lang.TargetLanguage
	Scopes *symtab.Table

	PatternDefs         []pattern.Definition
	PredicateDefs       []pattern.Definition
	FunctionDefs        []pattern.Definition
	ForeignFunctionDefs []pattern.Definition

	// BuiltinNames maps a CallBuiltIn.Index back to the name it was
	// compiled from, so Execute can dispatch on name rather than index.
	BuiltinNames []string

	// Similarity scores two strings in [0,1] for the Like construct.
	// Left nil in contexts (like compiler unit tests) that never
	// exercise Like; Execute falls back to exact-match scoring so it
	// never panics on a nil Similarity.
	Similarity Similarity

	// ForeignFunctionRunner invokes a CallForeignFunction's command.
	// Left nil where no foreign function definition is reachable.
	ForeignFunctionRunner ForeignFunctionRunner

	FileName         string
	AbsoluteFileName string
}

// Similarity scores the resemblance of two strings for the Like
// construct; internal/similarity's edit-distance/stemming scorer is the
// production implementation.
type Similarity interface {
	Score(a, b string) float64
}

// ForeignFunctionRunner executes an out-of-process function call and
// returns its stdout, decoded as UTF-8 text.
type ForeignFunctionRunner interface {
	Run(command []string, args []string) (string, error)
}

// Logs is the sink Execute appends diagnostics to; a plain slice
// pointer mirrors AnalysisLogs' append-only usage in the original.
type Logs = *[]errors.AnalysisLog

func logInfo(logs Logs, message string) {
	if logs == nil {
		return
	}
	*logs = append(*logs, errors.AnalysisLog{Level: errors.LevelInfo, Message: message})
}
