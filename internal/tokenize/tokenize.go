// File: internal/tokenize/tokenize.go

// Package tokenize frames raw sub-word tokenizer output into the fixed-length
// sequences the classification models expect, and normalizes token display
// strings for line attribution. Tokenization proper (text to sub-words) lives
// behind the inference runtime; this package never splits text itself.
package tokenize

import (
	"fmt"
	"strings"
)

// Display glyphs of the byte-level BPE vocabulary. The tokenizer escapes a
// word-boundary space as wordMarker and embedded whitespace control bytes as
// tabMarker / LineBreak.
const (
	wordMarker = "Ġ"
	tabMarker  = "ĉ"

	// LineBreak is the canonical line-separator glyph. NormalizeToken
	// guarantees every line-terminating token contains it; the line scorer's
	// boundary predicate keys on it. If the upstream tokenizer ever changes
	// its escaping, this mapping is the single place to follow it.
	LineBreak = "Ċ"
)

// Display strings for the boundary tokens this package inserts itself.
const (
	BosToken  = "<s>"
	EosToken  = "</s>"
	PadToken  = "<pad>"
	TypeToken = "<cls_type>"
)

// Special carries the vocabulary ids of the boundary tokens.
type Special struct {
	BosID int
	EosID int
	PadID int
	// TypeID is the <cls_type> classification anchor used only by the CWE
	// head's framing.
	TypeID int
}

// Sequence is one fixed-length model input. Padding, when present, occupies
// a contiguous suffix.
type Sequence struct {
	// IDs has exactly the frame length the model was exported with.
	IDs []int
	// Tokens holds the normalized display string for every position of IDs.
	Tokens []string
	// ContentLen counts the positions before the padding suffix, boundary
	// tokens included. For an unpadded sequence it equals len(IDs).
	ContentLen int
	// Padded reports whether any padding was applied.
	Padded bool
}

// NormalizeToken rewrites a raw sub-word display string into its canonical
// form: the word-boundary marker is stripped and the embedded-whitespace
// marker is rewritten to LineBreak.
func NormalizeToken(tok string) string {
	tok = strings.ReplaceAll(tok, wordMarker, "")
	return strings.ReplaceAll(tok, tabMarker, LineBreak)
}

// IsLineBoundary reports whether a normalized display token terminates a
// source line. It is the default boundary predicate for line scoring.
func IsLineBoundary(tok string) bool {
	return strings.Contains(tok, LineBreak)
}

// Frame truncates the raw content tokens to fit maxLen with a leading BOS and
// trailing EOS, then right-pads to exactly maxLen. ids and toks are the
// parallel id/display outputs of the external tokenizer, without special
// tokens.
func Frame(ids []int, toks []string, sp Special, maxLen int) (Sequence, error) {
	return frame(ids, toks, sp, maxLen, false)
}

// FrameWithTypeToken frames like Frame but reserves one extra position for
// the <cls_type> anchor placed between the content and EOS, as the CWE
// classification head expects.
func FrameWithTypeToken(ids []int, toks []string, sp Special, maxLen int) (Sequence, error) {
	return frame(ids, toks, sp, maxLen, true)
}

func frame(ids []int, toks []string, sp Special, maxLen int, withType bool) (Sequence, error) {
	if len(ids) != len(toks) {
		return Sequence{}, fmt.Errorf("tokenize: %d ids but %d tokens", len(ids), len(toks))
	}
	reserved := 2
	if withType {
		reserved = 3
	}
	if maxLen < reserved {
		return Sequence{}, fmt.Errorf("tokenize: frame length %d cannot hold %d special tokens", maxLen, reserved)
	}

	budget := maxLen - reserved
	if len(ids) > budget {
		ids = ids[:budget]
		toks = toks[:budget]
	}

	seq := Sequence{
		IDs:    make([]int, 0, maxLen),
		Tokens: make([]string, 0, maxLen),
	}
	seq.IDs = append(seq.IDs, sp.BosID)
	seq.Tokens = append(seq.Tokens, BosToken)
	for i, id := range ids {
		seq.IDs = append(seq.IDs, id)
		seq.Tokens = append(seq.Tokens, NormalizeToken(toks[i]))
	}
	if withType {
		seq.IDs = append(seq.IDs, sp.TypeID)
		seq.Tokens = append(seq.Tokens, TypeToken)
	}
	seq.IDs = append(seq.IDs, sp.EosID)
	seq.Tokens = append(seq.Tokens, EosToken)

	seq.ContentLen = len(seq.IDs)
	seq.Padded = seq.ContentLen < maxLen
	for len(seq.IDs) < maxLen {
		seq.IDs = append(seq.IDs, sp.PadID)
		seq.Tokens = append(seq.Tokens, PadToken)
	}
	return seq, nil
}
