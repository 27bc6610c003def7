package symtab

import (
	"testing"

	"github.com/standardbeagle/gritql/internal/gritpos"
)

func TestGlobalScopeReservedSlots(t *testing.T) {
	tbl := NewTable()
	cases := map[string]int{
		"$match":              SlotMatch,
		"$filename":           SlotFilename,
		"$absolute_filename":  SlotAbsoluteFilename,
		"$program":            SlotProgram,
		"$new_files":          SlotNewFiles,
	}
	for name, want := range cases {
		v, ok := tbl.Lookup(GlobalScope, name)
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		if v.Scope != GlobalScope || v.Slot != want {
			t.Errorf("%s = %+v, want scope %d slot %d", name, v, GlobalScope, want)
		}
	}
}

func TestResolveOrRegisterFirstUseBinds(t *testing.T) {
	tbl := NewTable()
	scope := tbl.NewScope()
	pos := gritpos.NewPosition(1, 1)

	v1 := tbl.ResolveOrRegister(scope, "$x", pos)
	v2 := tbl.ResolveOrRegister(scope, "$x", pos)
	if v1 != v2 {
		t.Fatalf("second reference should resolve to the same slot: %+v != %+v", v1, v2)
	}
	if v1.Scope != scope {
		t.Fatalf("expected local scope, got %+v", v1)
	}
}

func TestGlobalPrefixAlwaysRegistersGlobally(t *testing.T) {
	tbl := NewTable()
	scopeA := tbl.NewScope()
	scopeB := tbl.NewScope()

	va := tbl.ResolveOrRegister(scopeA, "$GLOBAL_counter", gritpos.FirstPosition())
	vb := tbl.ResolveOrRegister(scopeB, "$GLOBAL_counter", gritpos.FirstPosition())

	if va != vb {
		t.Fatalf("$GLOBAL_ names must share one slot across scopes: %+v != %+v", va, vb)
	}
	if va.Scope != GlobalScope {
		t.Fatalf("expected global scope, got %d", va.Scope)
	}
}

func TestLookupFallsBackToGlobal(t *testing.T) {
	tbl := NewTable()
	scope := tbl.NewScope()

	if _, ok := tbl.Lookup(scope, "$match"); !ok {
		t.Fatal("expected $match to resolve via global fallback")
	}
	if _, ok := tbl.Lookup(scope, "$nonexistent"); ok {
		t.Fatal("expected unbound lookup to fail")
	}
}

func TestEachDefinitionGetsDistinctScope(t *testing.T) {
	tbl := NewTable()
	s1 := tbl.NewScope()
	s2 := tbl.NewScope()
	if s1 == s2 {
		t.Fatal("expected distinct scope indices")
	}

	v1 := tbl.ResolveOrRegister(s1, "$x", gritpos.FirstPosition())
	v2 := tbl.ResolveOrRegister(s2, "$x", gritpos.FirstPosition())
	if v1 == v2 {
		t.Fatal("same name in different scopes must not collide")
	}
}
