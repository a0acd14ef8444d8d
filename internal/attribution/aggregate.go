// File: internal/attribution/aggregate.go
package attribution

import (
	"errors"
	"fmt"
)

// Matrix is a single attention map with query-position rows and key-position
// columns. Rows are produced by the upstream model's softmax; this package
// only reads them.
type Matrix [][]float64

// Tensor holds the attention maps of one input. The outer index is the
// encoder layer, the inner index the head within that layer. Layer and head
// contribute identically to aggregation, so the split is informational.
type Tensor [][]Matrix

var (
	// ErrDegenerateAttention reports a tensor whose accumulated mass is
	// identical at every position, leaving no range to normalize over.
	// Callers decide the sentinel output; dividing through would produce
	// NaN for every position.
	ErrDegenerateAttention = errors.New("attribution: degenerate attention mass")

	// ErrPaddingMass reports aggregated attention mass on padding positions.
	// Padding is masked inside the model's attention computation, so mass
	// here means the runtime broke that guarantee and any line attribution
	// built on top of it would silently shift.
	ErrPaddingMass = errors.New("attribution: padding positions carry attention mass")
)

// paddingTolerance absorbs float32 rounding introduced by the runtime when
// it serializes attention weights.
const paddingTolerance = 1e-6

// Aggregate reduces the attention tensor of one input to a single importance
// scalar per token position: the total mass each position received, summed
// across every layer, head, and query position, then min-max normalized so
// the smallest value is 0 and the largest is 1.
//
// contentLen is the number of positions before the padding suffix (special
// tokens included). Positions at or past contentLen must carry no mass;
// a violation returns ErrPaddingMass. A tensor with identical mass at every
// position returns ErrDegenerateAttention and no scores.
func Aggregate(t Tensor, contentLen int) ([]float64, error) {
	seqLen, err := tensorSeqLen(t)
	if err != nil {
		return nil, err
	}
	if contentLen < 1 || contentLen > seqLen {
		return nil, fmt.Errorf("attribution: content length %d outside sequence of %d", contentLen, seqLen)
	}

	total := make([]float64, seqLen)
	for li, layer := range t {
		for hi, head := range layer {
			if len(head) != seqLen {
				return nil, fmt.Errorf("attribution: layer %d head %d has %d rows, want %d", li, hi, len(head), seqLen)
			}
			for qi, row := range head {
				if len(row) != seqLen {
					return nil, fmt.Errorf("attribution: layer %d head %d row %d has %d columns, want %d", li, hi, qi, len(row), seqLen)
				}
				for k, v := range row {
					total[k] += v
				}
			}
		}
	}

	// Validated precondition: the runtime masks padding, so the suffix must
	// have aggregated to (numerically) nothing before normalization shifts it.
	for k := contentLen; k < seqLen; k++ {
		if total[k] > paddingTolerance || total[k] < -paddingTolerance {
			return nil, fmt.Errorf("%w: position %d holds %g", ErrPaddingMass, k, total[k])
		}
	}

	minV, maxV := total[0], total[0]
	for _, v := range total[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if maxV == minV {
		return nil, ErrDegenerateAttention
	}
	span := maxV - minV
	for k := range total {
		total[k] = (total[k] - minV) / span
	}
	return total, nil
}

// tensorSeqLen derives the sequence length from the first head matrix and
// rejects tensors with no attention maps at all.
func tensorSeqLen(t Tensor) (int, error) {
	for _, layer := range t {
		for _, head := range layer {
			if len(head) == 0 {
				return 0, errors.New("attribution: empty attention matrix")
			}
			return len(head), nil
		}
	}
	return 0, errors.New("attribution: tensor has no attention maps")
}
