package match

import "github.com/standardbeagle/gritql/internal/pattern"

func executeLike(p *pattern.Like, binding pattern.ResolvedPattern, state *State, ectx *ExecContext, logs Logs) (bool, error) {
	refVal, err := FromPattern(p.Reference, state, ectx, logs)
	if err != nil {
		return false, err
	}
	refText, err := Text(refVal, state, ectx)
	if err != nil {
		return false, err
	}
	boundText, err := Text(binding, state, ectx)
	if err != nil {
		return false, err
	}
	score := scoreSimilarity(ectx, boundText, refText)
	return score >= p.Threshold, nil
}

// scoreSimilarity delegates to ectx.Similarity when one has been wired
// in (internal/similarity's edit-distance/stemming scorer is the
// production implementation); without one it falls back to exact
// equality so Like still behaves predictably in contexts that never
// configure a scorer, such as compiler unit tests.
func scoreSimilarity(ectx *ExecContext, a, b string) float64 {
	if ectx.Similarity != nil {
		return ectx.Similarity.Score(a, b)
	}
	if a == b {
		return 1
	}
	return 0
}
