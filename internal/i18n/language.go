package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Code is a supported site language.
type Code string

const (
	English Code = "en"
	German  Code = "de"
	French  Code = "fr"
)

// Default is used when neither storage nor the browser yields a supported language.
const Default = English

var supported = []Code{English, German, French}

// Supported returns the supported languages in display order.
func Supported() []Code {
	out := make([]Code, len(supported))
	copy(out, supported)
	return out
}

// Parse normalises raw and reports whether it names a supported language.
func Parse(raw string) (Code, bool) {
	c := Code(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range supported {
		if c == s {
			return c, true
		}
	}
	return "", false
}

// IsSupported reports whether c is one of the supported codes.
func IsSupported(c Code) bool {
	_, ok := Parse(string(c))
	return ok
}

func (c Code) String() string { return string(c) }

// FromAcceptLanguage picks the first supported primary subtag from an
// Accept-Language header, honouring q-values. ok is false when nothing matches.
func FromAcceptLanguage(header string) (Code, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return "", false
	}
	// tags are already sorted by q desc, stable on header order
	for _, tag := range tags {
		base, conf := tag.Base()
		if conf != language.Exact {
			continue
		}
		if c, ok := Parse(base.String()); ok {
			return c, true
		}
	}
	return "", false
}
