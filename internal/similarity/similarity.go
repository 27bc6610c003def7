// Package similarity implements the fuzzy string scorer the Like
// construct uses: Jaro-Winkler edit-distance similarity over
// Porter2-stemmed, whitespace-tokenized text, so "running quickly" and
// "run quick" score close to identical rather than only exact
// substring matches scoring at all.
package similarity

import (
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/surgebase/porter2"
)

// Scorer is the production match.Similarity implementation.
type Scorer struct {
	// Algorithm selects the edlib string-distance algorithm; zero value
	// is edlib.JaroWinkler, the right default for short identifier-like
	// snippets (rewards a shared prefix, tolerant of a handful of
	// trailing edits).
	Algorithm edlib.Algorithm
}

// New builds a Scorer with the default algorithm.
func New() *Scorer {
	return &Scorer{Algorithm: edlib.JaroWinkler}
}

// Score returns a in [0,1] similarity between a and b: 1 for an exact
// match (after stemming/case-folding), otherwise the configured edlib
// algorithm's score over the stemmed token streams.
func (s *Scorer) Score(a, b string) float64 {
	sa, sb := stem(a), stem(b)
	if sa == sb {
		return 1
	}
	algo := s.Algorithm
	if algo == 0 {
		algo = edlib.JaroWinkler
	}
	score, err := edlib.StringsSimilarity(sa, sb, algo)
	if err != nil {
		return 0
	}
	return float64(score)
}

// stem lowercases s, splits it on whitespace, Porter2-stems each token,
// and rejoins, so minor morphological differences ("matching" vs
// "match") don't depress an otherwise-close score.
func stem(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	for i, f := range fields {
		fields[i] = porter2.Stem(f)
	}
	return strings.Join(fields, " ")
}
