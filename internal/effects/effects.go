// Package effects linearizes the set of pending edits a match
// accumulates on State into the subset that can actually be applied: it
// sorts by earliest-deadline, flags overlapping (as opposed to merely
// nested) effects as a conflict, and picks out the outermost, mutually
// disjoint spans a single rewrite pass can splice in one sweep.
package effects

import "sort"

// Interval is anything with a half-open byte span [Start, End).
type Interval interface {
	Interval() (start, end uint32)
}

// compare orders two intervals by ascending end, and for equal ends by
// descending start — so that among intervals ending at the same point,
// the narrowest (latest start) one sorts first and the widest last.
func compare(a, b Interval) int {
	as, ae := a.Interval()
	bs, be := b.Interval()
	if ae < be {
		return -1
	}
	if ae > be {
		return 1
	}
	if as > bs {
		return -1
	}
	if as < bs {
		return 1
	}
	return 0
}

// EarliestDeadlineSort sorts list in place by ascending end position
// (ties broken by descending start) and reports whether the result is
// conflict-free: true if every adjacent pair is either disjoint or
// properly nested, false the moment two intervals overlap without one
// containing the other.
func EarliestDeadlineSort[T Interval](list []T) bool {
	sort.SliceStable(list, func(i, j int) bool {
		return compare(list[i], list[j]) < 0
	})
	for i := 0; i+1 < len(list); i++ {
		p0s, p0e := list[i].Interval()
		p1s, _ := list[i+1].Interval()
		if p1s < p0e && p1s > p0s {
			return false
		}
	}
	return true
}

// GetTopLevelIntervals walks a sorted (EarliestDeadlineSort'd) list
// right to left and keeps only the outermost interval at each nesting
// level: once an interval is kept, any later (further left, by ending
// no later) interval fully inside its span is dropped. The input slice
// is consumed.
func GetTopLevelIntervals[T Interval](sorted []T) []T {
	topLevel := make([]T, 0, len(sorted))
	topLevelOpen := uint32(1<<32 - 1)
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		_, end := e.Interval()
		if end <= topLevelOpen {
			topLevel = append(topLevel, e)
			start, _ := e.Interval()
			topLevelOpen = start
		}
	}
	return topLevel
}

// EffectKind distinguishes a pure insertion from a span rewrite, needed
// by GetTopLevelIntervalsInRange to let zero-width inserts coexist with
// a rewrite that starts exactly where they land.
type EffectKind int

const (
	KindRewrite EffectKind = iota
	KindInsert
)

// RangedEffect pairs an Interval with the EffectKind that determines
// how GetTopLevelIntervalsInRange treats it at the boundary.
type RangedEffect[T any] struct {
	Start, End uint32
	Kind       EffectKind
	Value      T
}

func (r RangedEffect[T]) Interval() (uint32, uint32) { return r.Start, r.End }

// GetTopLevelIntervalsInRange is GetTopLevelIntervals restricted to
// [left, right]: inserts that land fully inside the window are always
// kept (they don't compete for the window's span), while rewrites
// follow the same outermost-wins sweep as GetTopLevelIntervals. Used
// when unparsing a single field's worth of effects rather than a whole
// file. sorted must already be EarliestDeadlineSort'd.
func GetTopLevelIntervalsInRange[T any](sorted []RangedEffect[T], left, right uint32) []RangedEffect[T] {
	topLevel := make([]RangedEffect[T], 0, len(sorted))
	topLevelOpen := right
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		if e.End < left {
			break
		}
		if e.Kind == KindInsert && e.Start >= left && e.End <= right {
			topLevel = append(topLevel, e)
			continue
		}
		if e.End <= topLevelOpen && e.Start >= left {
			topLevel = append(topLevel, e)
			topLevelOpen = e.Start
		}
	}
	return topLevel
}

// PopOutOfRangeIntervals drops every trailing entry of intervals whose
// start is at or past interval's end, mutating intervals in place. Used
// while sweeping effects to discard ones that no longer apply once a
// containing interval has been committed.
func PopOutOfRangeIntervals[T Interval](interval T, intervals *[]T) {
	_, ivEnd := interval.Interval()
	s := *intervals
	for len(s) > 0 {
		topStart, _ := s[len(s)-1].Interval()
		if topStart < ivEnd {
			break
		}
		s = s[:len(s)-1]
	}
	*intervals = s
}
