package problem

import (
	"context"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/gritql/internal/errors"
	"github.com/standardbeagle/gritql/internal/gritpos"
	"github.com/standardbeagle/gritql/internal/lang"
	"github.com/standardbeagle/gritql/internal/match"
	"github.com/standardbeagle/gritql/internal/pattern"
	"github.com/standardbeagle/gritql/internal/unparse"
)

// InputSource is one file Execute{File,Files} is asked to process: its
// path (used for diagnostics and $filename) and its current content.
type InputSource struct {
	Path    string
	Content string
}

// ExecuteFile runs p once against a single file and returns the
// MatchResults it produced (no PatternInfo/AllDone framing — that's
// added by ExecuteFiles/ExecutePathsStreaming, which run the same
// per-file driver for each file).
func (p *Problem) ExecuteFile(ctx context.Context, file InputSource) ([]MatchResult, error) {
	results, err := p.executeFiles(ctx, []InputSource{file})
	return results, err
}

// ExecuteFiles runs p against every file in files, in order, each
// against its own fresh State (so one file's bindings never leak into
// another's), and returns the combined MatchResult stream framed by a
// PatternInfo header and a trailing AllDone summary.
func (p *Problem) ExecuteFiles(ctx context.Context, files []InputSource) ([]MatchResult, error) {
	out := []MatchResult{PatternInfo{Name: p.Name, IsMultifile: p.IsMultifile, HasLimit: p.HasLimit}}
	found, processed := 0, 0
	for _, f := range files {
		if ctx.Err() != nil {
			out = append(out, AllDone{Processed: processed, Found: found, Reason: ReasonCancelled})
			return out, nil
		}
		fileResults, err := p.executeFiles(ctx, []InputSource{f})
		if err != nil {
			return out, err
		}
		out = append(out, fileResults...)
		processed++
		for _, r := range fileResults {
			if _, ok := r.(Rewrite); ok {
				found++
			}
		}
	}
	out = append(out, AllDone{Processed: len(files), Found: found, Reason: ReasonCompleted})
	return out, nil
}

// executeFiles is the shared single-batch driver: it parses every
// input into one FileRegistry, runs one top-level Execute per file
// against a fresh State built for that file, then steps each matched
// file through the apply-effects/reparse cycle.
func (p *Problem) executeFiles(ctx context.Context, files []InputSource) ([]MatchResult, error) {
	registry := match.NewFileRegistry()
	ptrs := make([]pattern.FilePtr, len(files))
	for i, f := range files {
		tree, err := p.Lang.Parse([]byte(f.Content), f.Path)
		if err != nil {
			return nil, errf("parsing %s: %w", f.Path, err)
		}
		ptrs[i] = registry.AddFile(f.Path, []byte(f.Content), tree)
	}

	var out []MatchResult
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return out, nil
		}
		out = append(out, InputFile{Name: f.Path})

		state, ectx := newExecState(p, registry)
		ectx.FileName = f.Path
		ectx.AbsoluteFileName = f.Path

		binding := fileBinding(ptrs[i], registry)
		var logs []errors.AnalysisLog
		matched, err := match.Execute(p.Root, binding, state, ectx, &logs)
		for _, log := range logs {
			out = append(out, AnalysisLogResult{Log: log, File: f.Path})
		}
		if err != nil {
			return out, errf("executing against %s: %w", f.Path, err)
		}

		fileHash := xxhash.Sum64String(f.Content)
		if !matched {
			out = append(out, DoneFile{File: f.Path, HasResults: false, FileHash: fileHash})
			continue
		}

		stepResults, newPtr, err := p.step(ptrs[i], []byte(f.Content), state, ectx, registry)
		if err != nil {
			return out, err
		}
		ptrs[i] = newPtr
		out = append(out, stepResults...)

		hasResults := false
		for _, r := range stepResults {
			switch r.(type) {
			case Rewrite, Match:
				hasResults = true
			}
		}
		out = append(out, DoneFile{File: f.Path, HasResults: hasResults, FileHash: fileHash})
	}
	return out, nil
}

// step applies every effect State accumulated against ptr's file,
// reparses the result, runs the target language's post-parse fixups,
// and pushes the final revision into registry. It returns the
// MatchResult(s) describing what happened (a Rewrite if content
// changed, a bare Match otherwise) and the FilePtr later steps should
// address.
func (p *Problem) step(ptr pattern.FilePtr, source []byte, state *match.State, ectx *match.ExecContext, registry *match.FileRegistry) ([]MatchResult, pattern.FilePtr, error) {
	newSource, err := unparse.Render(source, ptr, state.Effects, state, ectx)
	if err != nil {
		return nil, ptr, errf("unparsing %s: %w", registry.Name(ptr), err)
	}

	name := registry.Name(ptr)
	if string(newSource) == string(source) {
		return []MatchResult{Match{File: name, Variables: rootVariables(p, state)}}, ptr, nil
	}

	tree, err := p.Lang.Parse(newSource, name)
	if err != nil {
		return nil, ptr, errf("reparsing rewritten %s: %w", name, err)
	}
	finalSource, finalTree := applyReplacements(p.Lang, newSource, tree, name)

	newPtr := registry.PushRevision(ptr.File, finalSource, finalTree)
	return []MatchResult{Rewrite{File: name, Original: string(source), Rewritten: string(finalSource)}}, newPtr, nil
}

// applyReplacements runs the language's CheckReplacements over tree and,
// if it names any fixups, splices them into source and reparses once
// more so the returned tree matches the returned bytes exactly. With no
// fixups it returns tree and source unchanged.
func applyReplacements(target lang.TargetLanguage, source []byte, tree lang.Tree, name string) ([]byte, lang.Tree) {
	repls := target.CheckReplacements(tree.RootNode(), source)
	if len(repls) == 0 {
		return source, tree
	}
	sort.Slice(repls, func(i, j int) bool { return repls[i].Range.StartByte < repls[j].Range.StartByte })

	out := make([]byte, 0, len(source))
	cursor := uint32(0)
	for _, r := range repls {
		if r.Range.StartByte < cursor {
			continue
		}
		out = append(out, source[cursor:r.Range.StartByte]...)
		out = append(out, []byte(r.Text)...)
		cursor = r.Range.EndByte
	}
	out = append(out, source[cursor:]...)
	tree.Close()

	newTree, err := target.Parse(out, name)
	if err != nil {
		// The pre-fixup parse already succeeded; fall back to it rather
		// than fail the whole step over a fixup that didn't reparse.
		fallback, _ := target.Parse(source, name)
		return source, fallback
	}
	return out, newTree
}

// fileBinding builds the top-level binding Execute matches the root
// pattern against: the file's parsed root node, wrapped the way
// bindFileGlobals expects so $filename/$absolute_filename/$program
// populate correctly.
func fileBinding(ptr pattern.FilePtr, registry *match.FileRegistry) pattern.ResolvedPattern {
	return &pattern.ResolvedBinding{Bindings: []pattern.Binding{&pattern.NodeBinding{File: ptr, Node: registry.Root(ptr)}}}
}

// rootVariables reads back every name bound in the top-level pattern's
// own scope once a match succeeds, for a
// bare Match result's Variables field.
func rootVariables(p *Problem, state *match.State) []VariableMatch {
	names := p.Scopes.Names(p.RootScope)
	frame := state.Top(p.RootScope)
	var out []VariableMatch
	for slot, name := range names {
		val := frame[slot].Value
		if val == nil {
			continue
		}
		out = append(out, VariableMatch{Name: name, Ranges: bindingRanges(val)})
	}
	return out
}

func bindingRanges(r pattern.ResolvedPattern) []gritpos.Range {
	rb, ok := r.(*pattern.ResolvedBinding)
	if !ok {
		return nil
	}
	var out []gritpos.Range
	for _, b := range rb.Bindings {
		if rng, ok := b.Range(); ok {
			out = append(out, rng)
		}
	}
	return out
}
