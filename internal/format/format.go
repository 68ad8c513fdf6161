package format

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWord       = regexp.MustCompile(`[^\w-]+`)
	hyphenRun     = regexp.MustCompile(`-{2,}`)
)

// Slugify lowercases s, turns whitespace into hyphens, strips non-word characters,
// collapses repeated hyphens and trims them from both ends.
// Example: Slugify("  ACME Corp. / Senior Engineer ") => "acme-corp-senior-engineer"
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = nonWord.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Prettify turns a snake, kebab or camel case key into title words.
// Example: Prettify("itSkills") => "It Skills"
func Prettify(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return key
	}
	var b strings.Builder
	prevLower := false
	for _, r := range key {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(' ')
			prevLower = false
			continue
		case unicode.IsUpper(r) && prevLower:
			b.WriteRune(' ')
		}
		b.WriteRune(r)
		prevLower = unicode.IsLower(r)
	}
	parts := strings.Fields(b.String())
	for i, part := range parts {
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

var monthNames = map[string][12]string{
	"de": {"Jan.", "Feb.", "März", "Apr.", "Mai", "Juni", "Juli", "Aug.", "Sept.", "Okt.", "Nov.", "Dez."},
	"fr": {"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
}

// FmtMonth formats t as a short month and year for lang.
func FmtMonth(t time.Time, lang string) string {
	if names, ok := monthNames[strings.ToLower(lang)]; ok {
		return names[t.Month()-1] + " " + t.Format("2006")
	}
	return t.Format("Jan 2006")
}

// FmtPeriod renders "start - end". A missing end renders as present.
func FmtPeriod(start, end, present string) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start + " - " + present
	case start == "":
		return end
	default:
		return start + " - " + end
	}
}
