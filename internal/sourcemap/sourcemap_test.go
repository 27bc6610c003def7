package sourcemap

import "testing"

func TestFillWithInner(t *testing.T) {
	m := New(`["abcd", "efgh"]`)
	m.AddSection(NewSection(ByteRange{1, 7}, 5, FormatString, 1))
	m.AddSection(NewSection(ByteRange{9, 15}, 10, FormatString, 1))

	got, err := m.FillWithInner("abcd\nefgh\n")
	if err != nil {
		t.Fatalf("FillWithInner: %v", err)
	}
	if got != `["abcd", "efgh"]` {
		t.Fatalf("FillWithInner() = %q", got)
	}
}

func TestCloneWithAdjustmentsSingleStage(t *testing.T) {
	m := New(`["abcd", "efgh"]`)
	m.AddSection(NewSection(ByteRange{1, 7}, 5, FormatString, 1))
	m.AddSection(NewSection(ByteRange{9, 15}, 10, FormatString, 1))

	adjustments := []Adjustment{{1, 2, 2}, {2, 3, 2}}
	adjusted := m.CloneWithAdjustments(adjustments)

	if adjusted.sections[0].InnerRangeEnd != 7 {
		t.Fatalf("sections[0].InnerRangeEnd = %d, want 7", adjusted.sections[0].InnerRangeEnd)
	}
	if adjusted.sections[1].InnerRangeEnd != 12 {
		t.Fatalf("sections[1].InnerRangeEnd = %d, want 12", adjusted.sections[1].InnerRangeEnd)
	}

	got, err := adjusted.FillWithInner("abbccd\nefgh\n")
	if err != nil {
		t.Fatalf("FillWithInner: %v", err)
	}
	if got != `["abbccd", "efgh"]` {
		t.Fatalf("FillWithInner() = %q", got)
	}
}

func TestCloneWithAdjustmentsMultiStage(t *testing.T) {
	m := New(`["abcd", "efgh", "zko"]`)
	m.AddSection(NewSection(ByteRange{1, 7}, 5, FormatString, 1))
	m.AddSection(NewSection(ByteRange{9, 15}, 10, FormatString, 1))
	m.AddSection(NewSection(ByteRange{17, 22}, 14, FormatString, 1))

	// d -> ddd, f -> fff
	adjusted := m.CloneWithAdjustments([]Adjustment{{3, 4, 3}, {6, 7, 3}})
	wantEnds := []int{7, 14, 18}
	for i, want := range wantEnds {
		if adjusted.sections[i].InnerRangeEnd != want {
			t.Fatalf("pass1 sections[%d].InnerRangeEnd = %d, want %d", i, adjusted.sections[i].InnerRangeEnd, want)
		}
	}
	got, err := adjusted.FillWithInner("abcddd|efffgh|zko|")
	if err != nil {
		t.Fatalf("FillWithInner: %v", err)
	}
	if got != `["abcddd", "efffgh", "zko"]` {
		t.Fatalf("FillWithInner() = %q", got)
	}

	// a -> deleted, ddd -> deleted, fff -> f
	adjusted = adjusted.CloneWithAdjustments([]Adjustment{{0, 1, 0}, {3, 6, 0}, {8, 11, 1}})
	wantEnds = []int{3, 8, 12}
	for i, want := range wantEnds {
		if adjusted.sections[i].InnerRangeEnd != want {
			t.Fatalf("pass2 sections[%d].InnerRangeEnd = %d, want %d", i, adjusted.sections[i].InnerRangeEnd, want)
		}
	}
	got, err = adjusted.FillWithInner("bc|efgh|zko|")
	if err != nil {
		t.Fatalf("FillWithInner: %v", err)
	}
	if got != `["bc", "efgh", "zko"]` {
		t.Fatalf("FillWithInner() = %q", got)
	}

	// no-op pass
	adjusted = adjusted.CloneWithAdjustments(nil)
	got, err = adjusted.FillWithInner("bc|efgh|zko|")
	if err != nil {
		t.Fatalf("FillWithInner: %v", err)
	}
	if got != `["bc", "efgh", "zko"]` {
		t.Fatalf("FillWithInner() = %q", got)
	}

	// e -> ekg, only the middle section changes
	adjusted = adjusted.CloneWithAdjustments([]Adjustment{{3, 4, 3}})
	got, err = adjusted.FillWithInner("bc|ekgfgh|zko|")
	if err != nil {
		t.Fatalf("FillWithInner: %v", err)
	}
	if got != `["bc", "ekgfgh", "zko"]` {
		t.Fatalf("FillWithInner() = %q", got)
	}
}
