package problem

import (
	"context"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// StreamOptions configures ExecutePathsStreaming's worker pool.
type StreamOptions struct {
	// Concurrency bounds how many files are read and matched at once.
	// Values below 1 are treated as 1.
	Concurrency int

	// Cancel, when non-nil, is polled between files; once it reads
	// true, every file not already drained is dropped from the report
	// (though any worker already running it finishes harmlessly in the
	// background) and the run ends with AllDone{Reason: ReasonCancelled}.
	Cancel *atomic.Bool
}

type pathOutcome struct {
	results []MatchResult
	err     error
}

// ExecutePathsStreaming runs p against every file named in paths, each
// under its own Problem-level State so workers never share mutable
// runtime state, bounded to opts.Concurrency concurrent files. Results
// are delivered to sink strictly in paths order even though matching
// itself runs out of order, via one buffered result channel per path
// that the dispatch loop drains in sequence. sink is called from a
// single goroutine, so it never needs its own locking.
func (p *Problem) ExecutePathsStreaming(ctx context.Context, paths []string, opts StreamOptions, sink func(MatchResult) error) error {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	if err := sink(PatternInfo{Name: p.Name, IsMultifile: p.IsMultifile, HasLimit: p.HasLimit}); err != nil {
		return err
	}

	slots := make([]chan pathOutcome, len(paths))
	for i := range slots {
		slots[i] = make(chan pathOutcome, 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if opts.Cancel != nil && opts.Cancel.Load() {
				slots[i] <- pathOutcome{}
				return nil
			}
			content, err := os.ReadFile(path)
			if err != nil {
				slots[i] <- pathOutcome{err: errf("reading %s: %w", path, err)}
				return nil
			}
			results, err := p.executeFiles(gctx, []InputSource{{Path: path, Content: string(content)}})
			slots[i] <- pathOutcome{results: results, err: err}
			return nil
		})
	}

	found, processed := 0, 0
	reason := ReasonCompleted
drain:
	for _, slot := range slots {
		if opts.Cancel != nil && opts.Cancel.Load() {
			reason = ReasonCancelled
			break drain
		}
		outcome := <-slot
		if outcome.err != nil {
			_ = g.Wait()
			return outcome.err
		}
		processed++
		found += countRewrites(outcome.results)
		for _, r := range outcome.results {
			if err := sink(r); err != nil {
				_ = g.Wait()
				return err
			}
		}
	}
	_ = g.Wait()
	return sink(AllDone{Processed: processed, Found: found, Reason: reason})
}

func countRewrites(results []MatchResult) int {
	n := 0
	for _, r := range results {
		if _, ok := r.(Rewrite); ok {
			n++
		}
	}
	return n
}
