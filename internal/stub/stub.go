// Package stub derives short, filesystem-safe name fragments from
// arbitrary user text.
package stub

import (
	"strings"
	"unicode"
)

const (
	// MaxLen is the maximum length of a stub, in characters.
	MaxLen = 36

	// Fallback is used when nothing usable survives sanitization.
	Fallback = "audio"
)

// Sanitize returns a non-empty stub built from the first line of text.
// Only letters, digits, spaces, hyphens and underscores are kept, the result
// is truncated to MaxLen characters and spaces become underscores.
func Sanitize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return Fallback
	}

	line, _, _ := strings.Cut(text, "\n")

	var b strings.Builder
	for _, r := range line {
		if keep(r) {
			b.WriteRune(r)
		}
	}

	s := strings.TrimSpace(b.String())
	if s == "" {
		s = Fallback
	}

	if runes := []rune(s); len(runes) > MaxLen {
		s = string(runes[:MaxLen])
	}

	return strings.ReplaceAll(s, " ", "_")
}

func keep(r rune) bool {
	switch r {
	case ' ', '-', '_':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
