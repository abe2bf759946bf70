package speech

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a selectable spoken language.
type Language struct {
	Code   string // gTTS language code, e.g. "es"
	Label  string // English name
	Native string // name in the language itself
}

// Accent is a selectable regional variant, expressed as the Google Translate
// top-level domain that serves it.
type Accent struct {
	TLD   string
	Label string
}

// Catalog holds the immutable option tables. Use DefaultCatalog.
type Catalog struct {
	languages []Language
	accents   []Accent
}

const (
	// DefaultLanguage is selected when a request names none.
	DefaultLanguage = "es"

	// DefaultAccent is selected when a request names none.
	DefaultAccent = "com"
)

var languageCodes = []string{"es", "en", "pt", "fr", "it", "de", "ja"}

var accentTable = []Accent{
	{TLD: "com", Label: "Default"},
	{TLD: "com", Label: "United States"},
	{TLD: "co.uk", Label: "United Kingdom"},
	{TLD: "co.in", Label: "India"},
	{TLD: "ca", Label: "Canada"},
	{TLD: "com.au", Label: "Australia"},
	{TLD: "ie", Label: "Ireland"},
	{TLD: "co.za", Label: "South Africa"},
}

// DefaultCatalog returns the catalog of supported languages and accents. It
// is built once and shared.
var DefaultCatalog = sync.OnceValue(func() *Catalog {
	names := display.English.Languages()

	langs := make([]Language, 0, len(languageCodes))
	for _, code := range languageCodes {
		tag := language.MustParse(code)
		langs = append(langs, Language{
			Code:   code,
			Label:  names.Name(tag),
			Native: display.Self.Name(tag),
		})
	}

	return &Catalog{
		languages: langs,
		accents:   append([]Accent(nil), accentTable...),
	}
})

// Languages returns a copy of the language table, in display order.
func (c *Catalog) Languages() []Language {
	return append([]Language(nil), c.languages...)
}

// Accents returns a copy of the accent table, in display order. Several
// labels may share a TLD.
func (c *Catalog) Accents() []Accent {
	return append([]Accent(nil), c.accents...)
}

// Language looks up a language by code.
func (c *Catalog) Language(code string) (Language, bool) {
	for _, l := range c.languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// HasAccent reports whether tld is a supported accent variant.
func (c *Catalog) HasAccent(tld string) bool {
	for _, a := range c.accents {
		if a.TLD == tld {
			return true
		}
	}
	return false
}

// AccentLabel returns the first label for tld.
func (c *Catalog) AccentLabel(tld string) string {
	for _, a := range c.accents {
		if a.TLD == tld {
			return a.Label
		}
	}
	return tld
}
