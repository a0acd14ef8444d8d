package attribution

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniformTensor builds a tensor where every attention entry holds v.
func uniformTensor(layers, heads, seqLen int, v float64) Tensor {
	t := make(Tensor, layers)
	for l := range t {
		t[l] = make([]Matrix, heads)
		for h := range t[l] {
			m := make(Matrix, seqLen)
			for q := range m {
				m[q] = make([]float64, seqLen)
				for k := range m[q] {
					m[q][k] = v
				}
			}
			t[l][h] = m
		}
	}
	return t
}

// tensorWithColumnSums builds a one-layer, one-head tensor whose per-position
// received mass equals sums: all mass is placed on the first query row.
func tensorWithColumnSums(sums []float64) Tensor {
	seqLen := len(sums)
	m := make(Matrix, seqLen)
	for q := range m {
		m[q] = make([]float64, seqLen)
	}
	copy(m[0], sums)
	return Tensor{{m}}
}

func TestAggregate_SumsAcrossLayersAndHeads(t *testing.T) {
	t.Parallel()

	// Two layers x two heads, each head giving position k a received mass of
	// k+1. The totals are then 4*(k+1), and min-max normalization maps them
	// onto k/(seqLen-1).
	base := []float64{1, 2, 3, 4}
	one := tensorWithColumnSums(base)
	tensor := Tensor{
		{one[0][0], one[0][0]},
		{one[0][0], one[0][0]},
	}

	got, err := Aggregate(tensor, 4)
	require.NoError(t, err)

	want := []float64{0, 1.0 / 3.0, 2.0 / 3.0, 1}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestAggregate_NormalizationBounds(t *testing.T) {
	t.Parallel()

	got, err := Aggregate(tensorWithColumnSums([]float64{0.4, 1.9, 0.2, 0.7, 0.2}), 5)
	require.NoError(t, err)

	var sawZero, sawOne bool
	for _, v := range got {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		if v == 0 {
			sawZero = true
		}
		if v == 1 {
			sawOne = true
		}
	}
	assert.True(t, sawZero, "min must normalize to exactly 0")
	assert.True(t, sawOne, "max must normalize to exactly 1")
}

func TestAggregate_DegenerateAttention(t *testing.T) {
	t.Parallel()

	got, err := Aggregate(uniformTensor(2, 3, 4, 0.25), 4)
	require.ErrorIs(t, err, ErrDegenerateAttention)
	assert.Nil(t, got)
}

func TestAggregate_PaddingMassRejected(t *testing.T) {
	t.Parallel()

	// contentLen 3 leaves positions 3 and 4 as padding; position 4 holds mass.
	_, err := Aggregate(tensorWithColumnSums([]float64{0.5, 0.3, 0.2, 0, 0.1}), 3)
	require.ErrorIs(t, err, ErrPaddingMass)
}

func TestAggregate_PaddingRoundingTolerated(t *testing.T) {
	t.Parallel()

	got, err := Aggregate(tensorWithColumnSums([]float64{0.5, 0.3, 0.2, 1e-9, 0}), 3)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestAggregate_ShapeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		tensor     Tensor
		contentLen int
	}{
		{"empty tensor", Tensor{}, 1},
		{"layer without heads", Tensor{{}}, 1},
		{"ragged rows", Tensor{{Matrix{{1, 2}, {3}}}}, 2},
		{"short matrix", Tensor{{Matrix{{1, 2}}}}, 2},
		{"content length past end", tensorWithColumnSums([]float64{1, 2}), 3},
		{"content length zero", tensorWithColumnSums([]float64{1, 2}), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Aggregate(tc.tensor, tc.contentLen)
			assert.Error(t, err)
		})
	}
}
