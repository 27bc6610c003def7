// Package unparse renders the Effects a match accumulates on State back
// into source text: it linearizes overlapping/nested edits down to the
// top-level set a single splice pass can apply (internal/effects), then
// writes each surviving edit's resolved replacement in place of the
// byte range its Binding covers, padding inserted values the way a
// human editing the same list or statement by hand would have.
package unparse

import (
	"fmt"
	"sort"

	"github.com/standardbeagle/gritql/internal/effects"
	"github.com/standardbeagle/gritql/internal/match"
	"github.com/standardbeagle/gritql/internal/pattern"
)

// Render applies every effect in pending that targets file's revision
// to source, returning the rewritten bytes. Effects targeting a
// different file are ignored; callers filter per-file up front if they
// need to know which files actually changed.
func Render(source []byte, file pattern.FilePtr, pending []pattern.Effect, state *match.State, ectx *match.ExecContext) ([]byte, error) {
	ranges, err := rangeEffects(source, file, pending)
	if err != nil {
		return nil, err
	}
	if len(ranges) == 0 {
		return source, nil
	}
	if !effects.EarliestDeadlineSort(ranges) {
		return nil, fmt.Errorf("unparse: overlapping rewrite effects on file %d", file.File)
	}
	top := effects.GetTopLevelIntervals(ranges)
	sort.Slice(top, func(i, j int) bool { return top[i].Start < top[j].Start })

	out := make([]byte, 0, len(source))
	cursor := uint32(0)
	for i, r := range top {
		if r.Start < cursor {
			return nil, fmt.Errorf("unparse: effect at byte %d overlaps a previously applied edit ending at %d", r.Start, cursor)
		}
		out = append(out, source[cursor:r.Start]...)
		text, err := renderEffect(r.Value, i == 0, source, state, ectx)
		if err != nil {
			return nil, err
		}
		out = append(out, text...)
		cursor = r.End
	}
	out = append(out, source[cursor:]...)
	return out, nil
}

func renderEffect(eff pattern.Effect, isFirst bool, source []byte, state *match.State, ectx *match.ExecContext) (string, error) {
	text, err := match.Text(eff.Replacement, state, ectx)
	if err != nil {
		return "", err
	}
	if eff.Kind == pattern.EffectInsert {
		text = normalizeInsert(eff.Binding, text, isFirst, source, ectx.Lang)
	}
	return text, nil
}

func rangeEffects(source []byte, file pattern.FilePtr, pending []pattern.Effect) ([]effects.RangedEffect[pattern.Effect], error) {
	var out []effects.RangedEffect[pattern.Effect]
	for _, eff := range pending {
		fp, ok := bindingFile(eff.Binding)
		if !ok || fp.File != file.File {
			continue
		}
		rng, ok := eff.Binding.Range()
		if !ok {
			return nil, fmt.Errorf("unparse: effect binding of type %T has no source range to rewrite", eff.Binding)
		}
		kind := effects.KindRewrite
		if eff.Kind == pattern.EffectInsert {
			kind = effects.KindInsert
		}
		out = append(out, effects.RangedEffect[pattern.Effect]{
			Start: rng.StartByte,
			End:   rng.EndByte,
			Kind:  kind,
			Value: eff,
		})
	}
	return out, nil
}

func bindingFile(b pattern.Binding) (pattern.FilePtr, bool) {
	switch b := b.(type) {
	case *pattern.NodeBinding:
		return b.File, true
	case *pattern.ListBinding:
		return b.File, true
	case *pattern.StringBinding:
		return b.File, true
	case *pattern.EmptyBinding:
		return b.File, true
	default:
		return pattern.FilePtr{}, false
	}
}
