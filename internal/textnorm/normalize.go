// Package textnorm prepares request text for the synthesis engine.
//
// Phonemizers are sensitive to decomposed Unicode sequences and stray control
// characters, so request text is normalized to NFC and whitespace is
// collapsed before it reaches the engine. Normalization never rejects input;
// an empty result is passed through and left to the caller's policy.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean returns text normalized to NFC with runs of whitespace collapsed to
// single spaces and control characters dropped.
func Clean(text string) string {
	text = norm.NFC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
			// skip
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
