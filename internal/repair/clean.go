// File: internal/repair/clean.go

// Package repair post-processes the repair model's decoded output.
package repair

import "strings"

// Clean strips the decoder's special tokens and framing whitespace from one
// generated repair candidate.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "<pad>", "")
	text = strings.ReplaceAll(text, "<s>", "")
	text = strings.ReplaceAll(text, "</s>", "")
	text = strings.Trim(text, "\n")
	return strings.TrimSpace(text)
}
