package effects

import "testing"

type span struct{ start, end uint32 }

func (s span) Interval() (uint32, uint32) { return s.start, s.end }

func spans(pairs ...[2]uint32) []span {
	out := make([]span, len(pairs))
	for i, p := range pairs {
		out[i] = span{p[0], p[1]}
	}
	return out
}

func backToPairs(ss []span) [][2]uint32 {
	out := make([][2]uint32, len(ss))
	for i, s := range ss {
		out[i] = [2]uint32{s.start, s.end}
	}
	return out
}

func TestEarliestDeadlineSortSimple(t *testing.T) {
	list := spans([2]uint32{0, 1}, [2]uint32{1, 2}, [2]uint32{2, 3}, [2]uint32{3, 4})
	if !EarliestDeadlineSort(list) {
		t.Fatal("expected no conflict")
	}
}

func TestEarliestDeadlineSortReverse(t *testing.T) {
	list := spans([2]uint32{3, 4}, [2]uint32{2, 3}, [2]uint32{1, 2}, [2]uint32{0, 1})
	if !EarliestDeadlineSort(list) {
		t.Fatal("expected no conflict")
	}
}

func TestTopLevelIntervalsNestedLeft(t *testing.T) {
	list := spans([2]uint32{0, 1}, [2]uint32{0, 2}, [2]uint32{0, 3}, [2]uint32{0, 4})
	if !EarliestDeadlineSort(list) {
		t.Fatal("expected no conflict")
	}
	top := GetTopLevelIntervals(list)
	got := backToPairs(top)
	want := [][2]uint32{{0, 4}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTopLevelIntervalsNestedRight(t *testing.T) {
	list := spans([2]uint32{1, 5}, [2]uint32{2, 5}, [2]uint32{3, 5}, [2]uint32{4, 5})
	if !EarliestDeadlineSort(list) {
		t.Fatal("expected no conflict")
	}
	top := GetTopLevelIntervals(list)
	got := backToPairs(top)
	want := [][2]uint32{{1, 5}}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestEarliestDeadlineSortDetectsOverlap(t *testing.T) {
	list := spans([2]uint32{0, 1}, [2]uint32{0, 2}, [2]uint32{1, 2}, [2]uint32{1, 3})
	if EarliestDeadlineSort(list) {
		t.Fatal("expected overlap conflict to be detected")
	}
}

func TestEarliestDeadlineSortDetectsAnotherOverlap(t *testing.T) {
	list := spans([2]uint32{0, 1}, [2]uint32{0, 2}, [2]uint32{1, 2}, [2]uint32{1, 3}, [2]uint32{2, 3}, [2]uint32{2, 4})
	if EarliestDeadlineSort(list) {
		t.Fatal("expected overlap conflict to be detected")
	}
}

func TestMultipleTopLevelIntervals(t *testing.T) {
	list := spans(
		[2]uint32{0, 1}, [2]uint32{2, 5}, [2]uint32{0, 2}, [2]uint32{2, 4},
		[2]uint32{3, 4}, [2]uint32{1, 2}, [2]uint32{2, 3},
	)
	if !EarliestDeadlineSort(list) {
		t.Fatal("expected no conflict")
	}
	top := GetTopLevelIntervals(list)
	got := backToPairs(top)
	want := [][2]uint32{{2, 5}, {0, 2}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestGetTopLevelIntervalsInRangeKeepsInsertsInside(t *testing.T) {
	list := []RangedEffect[string]{
		{Start: 2, End: 2, Kind: KindInsert, Value: "insert-at-2"},
		{Start: 0, End: 10, Kind: KindRewrite, Value: "outer"},
	}
	top := GetTopLevelIntervalsInRange(list, 0, 10)
	if len(top) != 2 {
		t.Fatalf("expected both effects retained, got %d: %v", len(top), top)
	}
}

func TestGetTopLevelIntervalsInRangeStopsBeforeLeft(t *testing.T) {
	list := []RangedEffect[string]{
		{Start: 0, End: 1, Kind: KindRewrite, Value: "out-of-range"},
		{Start: 5, End: 8, Kind: KindRewrite, Value: "in-range"},
	}
	top := GetTopLevelIntervalsInRange(list, 5, 10)
	if len(top) != 1 || top[0].Value != "in-range" {
		t.Fatalf("expected only in-range effect, got %v", top)
	}
}

func TestPopOutOfRangeIntervals(t *testing.T) {
	list := spans([2]uint32{0, 2}, [2]uint32{3, 5}, [2]uint32{6, 8})
	committed := span{0, 5}
	PopOutOfRangeIntervals(committed, &list)
	want := [][2]uint32{{0, 2}, {3, 5}}
	got := backToPairs(list)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
