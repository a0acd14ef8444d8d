// File: internal/attribution/linescore.go
package attribution

// TokenScore pairs a display token with its scrubbed attention score.
// Ordering is token-position ordering and is significant.
type TokenScore struct {
	Token string
	Score float64
}

// BoundaryFunc reports whether a display token terminates a source line.
// The predicate is injected so the scorer never hard-codes the tokenizer's
// separator glyph.
type BoundaryFunc func(token string) bool

// ScoreLines folds per-token scores into per-line scores, in source-line
// order. A boundary token (or the final token of the sequence) reached with
// a nonzero accumulator takes its own score into the accumulator and emits
// it as the next line's score. A boundary token over a zero accumulator is
// skipped, so runs of separators never emit empty lines. Consequently the
// result can be shorter than the number of source lines: blank lines and
// lines past the truncation horizon receive no score at all.
func ScoreLines(pairs []TokenScore, isBoundary BoundaryFunc) []float64 {
	scores := make([]float64, 0, 16)
	acc := 0.0
	for i, p := range pairs {
		boundary := isBoundary(p.Token)
		switch {
		case (boundary || i == len(pairs)-1) && acc != 0:
			acc += p.Score
			scores = append(scores, acc)
			acc = 0
		case !boundary:
			acc += p.Score
		}
	}
	return scores
}
