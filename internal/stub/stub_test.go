package stub

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "punctuation stripped", in: "Hello, World! 123", want: "Hello_World_123"},
		{name: "empty", in: "", want: "audio"},
		{name: "whitespace only", in: "  \n\t ", want: "audio"},
		{name: "only punctuation", in: "!!! ??? ...", want: "audio"},
		{name: "first line only", in: "first line\nsecond line", want: "first_line"},
		{name: "leading blank lines skipped", in: "\n\n  hola mundo\nadios", want: "hola_mundo"},
		{name: "hyphen and underscore kept", in: "a-b_c d", want: "a-b_c_d"},
		{name: "unicode letters kept", in: "¿Qué tal, señor?", want: "Qué_tal_señor"},
		{name: "japanese", in: "こんにちは、世界", want: "こんにちは世界"},
		{name: "path separators dropped", in: "../../etc/passwd", want: "etcpasswd"},
		{name: "tabs dropped", in: "a\tb", want: "ab"},
		{name: "carriage return dropped", in: "windows line\r\nnext", want: "windows_line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeTruncates(t *testing.T) {
	got := Sanitize(strings.Repeat("a", 100))
	if len(got) != MaxLen {
		t.Fatalf("len = %d, want %d", len(got), MaxLen)
	}
	if strings.Trim(got, "a") != "" {
		t.Errorf("expected only 'a' characters, got %q", got)
	}
}

func TestSanitizeTruncatesRunes(t *testing.T) {
	got := Sanitize(strings.Repeat("ñ", 50))
	if n := utf8.RuneCountInString(got); n != MaxLen {
		t.Errorf("rune count = %d, want %d", n, MaxLen)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}
}

func TestSanitizeTruncatesBeforeReplacing(t *testing.T) {
	// 35 letters then a space: the space survives truncation and becomes an underscore.
	in := strings.Repeat("b", 35) + " tail"
	got := Sanitize(in)
	want := strings.Repeat("b", 35) + "_"
	if got != want {
		t.Errorf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitizeNeverEmpty(t *testing.T) {
	inputs := []string{"", " ", "\n", "@#$%", "\r\n\r\n", "—–"}
	for _, in := range inputs {
		if Sanitize(in) == "" {
			t.Errorf("Sanitize(%q) returned empty stub", in)
		}
	}
}
