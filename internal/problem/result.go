package problem

import (
	"github.com/standardbeagle/gritql/internal/errors"
	"github.com/standardbeagle/gritql/internal/gritpos"
)

// MatchResult is one event in the stream Execute{File,Files,PathsStreaming}
// produce: a file seen, a match found, a rewrite applied, a file
// created or removed, a per-file completion marker, a diagnostic, or
// the final run summary. Callers type-switch on the concrete variant.
type MatchResult interface{ matchResult() }

// InputFile announces that name has been read and is about to be
// matched against.
type InputFile struct{ Name string }

func (InputFile) matchResult() {}

// VariableMatch is one bound variable's span within a Match result.
type VariableMatch struct {
	Name   string
	Ranges []gritpos.Range
}

// Match reports that Pattern matched File without producing any
// rewrite effect (a read-only pattern, or `check`-mode dry run).
type Match struct {
	File      string
	Variables []VariableMatch
}

func (Match) matchResult() {}

// Rewrite reports that applying File's accumulated effects produced
// new content; Original and Rewritten carry the full before/after text
// so a caller can diff or write it out.
type Rewrite struct {
	File      string
	Original  string
	Rewritten string
}

func (Rewrite) matchResult() {}

// CreateFile reports a file synthesized during the match (e.g. via a
// rewrite construct that names a file that didn't previously exist).
type CreateFile struct {
	File    string
	Content string
}

func (CreateFile) matchResult() {}

// RemoveFile reports that File's content was rewritten to empty and
// should be deleted rather than written back.
type RemoveFile struct{ File string }

func (RemoveFile) matchResult() {}

// DoneFile marks the end of processing for one input file.
type DoneFile struct {
	File       string
	FromCache  bool
	HasResults bool
	FileHash   uint64
}

func (DoneFile) matchResult() {}

// DoneReason explains why AllDone was emitted.
type DoneReason int

const (
	ReasonCompleted DoneReason = iota
	ReasonCancelled
	ReasonLimitHit
)

func (r DoneReason) String() string {
	switch r {
	case ReasonCancelled:
		return "cancelled"
	case ReasonLimitHit:
		return "limit_hit"
	default:
		return "completed"
	}
}

// AllDone is the final event of a run: how many files were processed,
// how many produced a Rewrite, and why the run ended.
type AllDone struct {
	Processed int
	Found     int
	Reason    DoneReason
}

func (AllDone) matchResult() {}

// AnalysisLogResult carries one diagnostic emitted during compilation
// or execution, attributed to a file when the diagnostic has one.
type AnalysisLogResult struct {
	Log  errors.AnalysisLog
	File string
}

func (AnalysisLogResult) matchResult() {}

// PatternInfo reports a Problem's static shape, emitted once per run
// ahead of any file-level result, the way `gritql check --verbose`
// reports what it's about to run.
type PatternInfo struct {
	Name        string
	IsMultifile bool
	HasLimit    bool
}

func (PatternInfo) matchResult() {}
