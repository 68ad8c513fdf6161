// Package seo builds head metadata for the CV pages.
package seo

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"finitefield.org/cv-web/internal/i18n"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

type Twitter struct {
	Card  string
	Image string
}

// Alternate links a page to its translation.
type Alternate struct {
	Href     string
	Hreflang string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	Alternates  []Alternate
	JSONLD      []string
}

var ogLocales = map[i18n.Code]string{
	i18n.English: "en_US",
	i18n.German:  "de_DE",
	i18n.French:  "fr_FR",
}

// Build returns metadata for the page at path in lang. baseURL is absolute.
// Alternates point at ?hl= variants of the same path plus x-default.
func Build(baseURL, path string, lang i18n.Code, title, description, image string) Meta {
	canonical := Absolute(baseURL, path)
	m := Meta{
		Title:       title,
		Description: description,
		Canonical:   canonical,
		Robots:      "index,follow",
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Image:       image,
			Type:        "profile",
			URL:         canonical,
			SiteName:    title,
			Locale:      ogLocales[lang],
		},
		Twitter: Twitter{Card: "summary", Image: image},
	}
	if image != "" {
		m.Twitter.Card = "summary_large_image"
	}
	for _, code := range i18n.Supported() {
		m.Alternates = append(m.Alternates, Alternate{Href: withLanguage(canonical, code), Hreflang: code.String()})
	}
	m.Alternates = append(m.Alternates, Alternate{Href: canonical, Hreflang: "x-default"})
	return m
}

// Absolute joins baseURL and path.
func Absolute(baseURL, path string) string {
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(baseURL, "/") + path
}

func withLanguage(raw string, code i18n.Code) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set("hl", code.String())
	u.RawQuery = q.Encode()
	return u.String()
}

// Excerpt extracts the visible text of an HTML or plain text snippet,
// collapsing whitespace and truncating to max runes on a word boundary.
func Excerpt(src string, max int) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	skip := 0
loop:
	for {
		switch z.Next() {
		case html.ErrorToken:
			break loop
		case html.StartTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isHidden(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
	text := strings.Join(strings.Fields(b.String()), " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}

func isHidden(tag string) bool {
	return tag == "script" || tag == "style"
}
