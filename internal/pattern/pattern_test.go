package pattern

import (
	"testing"

	"github.com/standardbeagle/gritql/internal/symtab"
)

func TestPatternVariantsImplementInterface(t *testing.T) {
	var patterns = []Pattern{
		&AstNode{Sort: "call_expression"},
		&List{},
		&Map{},
		Dots{},
		Underscore{},
		Top{},
		Bottom{},
		&And{},
		&Or{},
		&Contains{},
		&Within{},
		&StringConstant{Value: "x"},
		&Rewrite{},
		&VariablePattern{Var: symtab.Variable{Scope: 0, Slot: 0}},
		&CodeSnippet{PatternsBySort: map[string]Pattern{}},
	}
	for i, p := range patterns {
		if p == nil {
			t.Errorf("pattern %d is nil", i)
		}
	}
}

func TestPredicateVariantsImplementInterface(t *testing.T) {
	var predicates = []Predicate{
		&PredAnd{}, &PredOr{}, &PredNot{}, PredTrue{}, PredFalse{},
		&PredMatch{}, &PredEqual{}, &PredRewrite{}, &PredReturn{},
	}
	for i, p := range predicates {
		if p == nil {
			t.Errorf("predicate %d is nil", i)
		}
	}
}

func TestContainerVariantsImplementInterface(t *testing.T) {
	var containers = []Container{
		&VariableContainer{},
		&Accessor{},
		&ListIndex{},
	}
	for i, c := range containers {
		if c == nil {
			t.Errorf("container %d is nil", i)
		}
	}
}

func TestEffectKindDistinguishesInsertFromRewrite(t *testing.T) {
	insert := Effect{Kind: EffectInsert}
	rewrite := Effect{Kind: EffectRewrite}
	if insert.Kind == rewrite.Kind {
		t.Fatal("expected distinct effect kinds")
	}
}

func TestConstantRefBindingHasNoRange(t *testing.T) {
	b := &ConstantRefBinding{Value: Constant{Kind: ConstInt, Int: 3}}
	if _, ok := b.Range(); ok {
		t.Fatal("ConstantRefBinding should report no range")
	}
}

func TestFileNameBindingHasNoRange(t *testing.T) {
	b := &FileNameBinding{Path: "a.go"}
	if _, ok := b.Range(); ok {
		t.Fatal("FileNameBinding should report no range")
	}
}
