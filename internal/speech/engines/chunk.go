package engines

import (
	"strings"
	"unicode"
)

// maxChunkChars is the longest text the translate endpoint accepts per call.
const maxChunkChars = 100

// splitText breaks text into pieces of at most max characters, preferring
// sentence punctuation, then spaces. Pieces without any letter or digit are
// dropped, and neighbouring short pieces are merged back together.
func splitText(text string, max int) []string {
	var pieces []string
	for _, p := range splitAtPunctuation(text) {
		pieces = append(pieces, minimize(p, max)...)
	}

	var out []string
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if !speakable(p) {
			continue
		}
		if n := len(out); n > 0 && runeLen(out[n-1])+1+runeLen(p) <= max {
			out[n-1] += " " + p
			continue
		}
		out = append(out, p)
	}
	return out
}

// splitAtPunctuation cuts after sentence punctuation that is followed by
// whitespace or the end of the text, and at every line break. Decimal points
// such as "3.14" stay intact.
func splitAtPunctuation(text string) []string {
	runes := []rune(text)
	var pieces []string
	start := 0
	for i, r := range runes {
		switch {
		case r == '\n':
			pieces = append(pieces, string(runes[start:i]))
			start = i + 1
		case isDelimiter(r) && (i+1 == len(runes) || unicode.IsSpace(runes[i+1]) || isWideDelimiter(r)):
			pieces = append(pieces, string(runes[start:i+1]))
			start = i + 1
		}
	}
	if start < len(runes) {
		pieces = append(pieces, string(runes[start:]))
	}
	return pieces
}

// minimize splits s at the last space before max characters until every
// piece fits. Words longer than max are cut hard.
func minimize(s string, max int) []string {
	s = strings.TrimSpace(s)
	var out []string
	for runeLen(s) > max {
		runes := []rune(s)
		cut := -1
		for i := max; i > 0; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
		if cut <= 0 {
			cut = max
		}
		out = append(out, string(runes[:cut]))
		s = strings.TrimSpace(string(runes[cut:]))
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

func isDelimiter(r rune) bool {
	return strings.ContainsRune(".!?;:,…", r) || isWideDelimiter(r)
}

// isWideDelimiter matches CJK punctuation, which is not followed by spaces.
func isWideDelimiter(r rune) bool {
	return strings.ContainsRune("。！？；：，、", r)
}

func speakable(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

func runeLen(s string) int {
	return len([]rune(s))
}
