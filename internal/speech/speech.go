// Package speech defines synthesis requests, their validation, the catalog
// of supported languages and accents, and the Synthesizer contract that
// concrete engines implement.
package speech

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTextLength is the longest accepted text, in characters.
const MaxTextLength = 5000

// SampleText is offered by the front ends as example input.
const SampleText = "Hola, este es un ejemplo de síntesis de voz con gTTS."

// Request is a single text-to-speech request.
type Request struct {
	Text     string
	Language string
	Accent   string
	Slow     bool
}

// Synthesizer turns a request into MP3 bytes. Implementations may block on
// the network and should honor ctx.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
	Name() string
}

// WithDefaults fills in an empty language or accent.
func (r Request) WithDefaults() Request {
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.Accent == "" {
		r.Accent = DefaultAccent
	}
	return r
}

// Validate checks the request against the length limits and the catalog.
// The length limit applies to the text as submitted, the emptiness check to
// the trimmed text.
func (r Request) Validate(c *Catalog) error {
	if strings.TrimSpace(r.Text) == "" {
		return NewError(ErrorCodeEmptyInput, "Write some text before converting.", nil)
	}
	if n := utf8.RuneCountInString(r.Text); n > MaxTextLength {
		return NewError(ErrorCodeTextTooLong,
			fmt.Sprintf("The text is too long (%d characters, max. %d).", n, MaxTextLength), nil)
	}
	if _, ok := c.Language(r.Language); !ok {
		return NewError(ErrorCodeUnsupportedLanguage,
			fmt.Sprintf("Unsupported language %q.", r.Language), nil)
	}
	if !c.HasAccent(r.Accent) {
		return NewError(ErrorCodeUnsupportedAccent,
			fmt.Sprintf("Unsupported accent %q.", r.Accent), nil)
	}
	return nil
}
