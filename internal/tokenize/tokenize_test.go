package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSpecial = Special{BosID: 0, PadID: 1, EosID: 2, TypeID: 50265}

func TestNormalizeToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"word marker stripped", "Ġreturn", "return"},
		{"marker mid-token", "fooĠbar", "foobar"},
		{"tab marker rewritten", "ĉ", "Ċ"},
		{"newline glyph kept", "Ċ", "Ċ"},
		{"mixed", "Ġ}ĉ", "}Ċ"},
		{"plain", "int", "int"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, NormalizeToken(tc.in))
		})
	}
}

func TestIsLineBoundary(t *testing.T) {
	t.Parallel()

	assert.True(t, IsLineBoundary("Ċ"))
	assert.True(t, IsLineBoundary("}Ċ"))
	assert.False(t, IsLineBoundary("return"))
	assert.False(t, IsLineBoundary(PadToken))
	assert.False(t, IsLineBoundary(BosToken))
}

func TestFrame_PadsToFixedLength(t *testing.T) {
	t.Parallel()

	seq, err := Frame([]int{10, 11, 12}, []string{"int", "Ġx", "Ċ"}, testSpecial, 8)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 10, 11, 12, 2, 1, 1, 1}, seq.IDs)
	assert.Equal(t, []string{"<s>", "int", "x", "Ċ", "</s>", "<pad>", "<pad>", "<pad>"}, seq.Tokens)
	assert.Equal(t, 5, seq.ContentLen)
	assert.True(t, seq.Padded)
}

func TestFrame_TruncatesToBudget(t *testing.T) {
	t.Parallel()

	ids := []int{10, 11, 12, 13, 14, 15}
	toks := []string{"a", "b", "c", "d", "e", "f"}
	seq, err := Frame(ids, toks, testSpecial, 4)
	require.NoError(t, err)

	// Budget is maxLen-2; tokens past it are silently absent.
	assert.Equal(t, []int{0, 10, 11, 2}, seq.IDs)
	assert.Equal(t, 4, seq.ContentLen)
	assert.False(t, seq.Padded)
}

func TestFrame_ExactFitIsNotPadded(t *testing.T) {
	t.Parallel()

	seq, err := Frame([]int{10, 11}, []string{"a", "b"}, testSpecial, 4)
	require.NoError(t, err)
	assert.False(t, seq.Padded)
	assert.Equal(t, 4, seq.ContentLen)
}

func TestFrameWithTypeToken(t *testing.T) {
	t.Parallel()

	seq, err := FrameWithTypeToken([]int{10, 11, 12}, []string{"a", "b", "c"}, testSpecial, 5)
	require.NoError(t, err)

	// One content token is dropped for the <cls_type> anchor.
	assert.Equal(t, []int{0, 10, 11, 50265, 2}, seq.IDs)
	assert.Equal(t, []string{"<s>", "a", "b", "<cls_type>", "</s>"}, seq.Tokens)
	assert.Equal(t, 5, seq.ContentLen)
	assert.False(t, seq.Padded)
}

func TestFrame_Errors(t *testing.T) {
	t.Parallel()

	_, err := Frame([]int{1}, []string{"a", "b"}, testSpecial, 8)
	assert.Error(t, err, "mismatched ids and tokens")

	_, err = Frame(nil, nil, testSpecial, 1)
	assert.Error(t, err, "frame too short for specials")

	_, err = FrameWithTypeToken(nil, nil, testSpecial, 2)
	assert.Error(t, err, "frame too short for type token")
}

func TestFrame_EmptyContent(t *testing.T) {
	t.Parallel()

	seq, err := Frame(nil, nil, testSpecial, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 1, 1}, seq.IDs)
	assert.Equal(t, 2, seq.ContentLen)
	assert.True(t, seq.Padded)
}
