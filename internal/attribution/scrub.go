// File: internal/attribution/scrub.go
package attribution

import "fmt"

// Scrub returns a copy of scores with the boundary-token positions zeroed:
// position 0 (the start-of-sequence marker) and position contentLen-1 (the
// end-of-sequence marker, which is the last position before any padding).
// For an unpadded sequence contentLen equals len(scores) and the final
// position is zeroed.
//
// The trailing boundary is located structurally from the tokenizer's content
// length rather than by scanning for the last nonzero value, so Scrub does
// not depend on padding positions aggregating to zero and is idempotent:
// scrubbing an already-scrubbed vector zeroes the same two positions again.
func Scrub(scores []float64, contentLen int) ([]float64, error) {
	if contentLen < 2 || contentLen > len(scores) {
		return nil, fmt.Errorf("attribution: content length %d outside sequence of %d", contentLen, len(scores))
	}
	out := make([]float64, len(scores))
	copy(out, scores)
	out[0] = 0
	out[contentLen-1] = 0
	return out, nil
}
