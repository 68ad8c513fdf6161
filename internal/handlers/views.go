// Package handlers holds the view models the page shell templates consume.
package handlers

import (
	"strings"

	"finitefield.org/cv-web/internal/feedback"
	"finitefield.org/cv-web/internal/i18n"
	"finitefield.org/cv-web/internal/nav"
	"finitefield.org/cv-web/internal/page"
	"finitefield.org/cv-web/internal/render"
	"finitefield.org/cv-web/internal/seo"
)

// LanguageOption is one entry of the language selector.
type LanguageOption struct {
	Code     string
	Label    string
	Selected bool
}

var languageNames = map[i18n.Code]string{
	i18n.English: "English",
	i18n.German:  "Deutsch",
	i18n.French:  "Français",
}

// Languages lists the selector options with current selected.
func Languages(current i18n.Code) []LanguageOption {
	out := make([]LanguageOption, 0, len(languageNames))
	for _, code := range i18n.Supported() {
		out = append(out, LanguageOption{Code: code.String(), Label: languageNames[code], Selected: code == current})
	}
	return out
}

// Layout carries the fields every full page needs.
type Layout struct {
	Lang        string
	Path        string
	Text        i18n.Text
	SEO         seo.Meta
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Languages   []LanguageOption
	CSRFToken   string
	Banner      string
	DevMode     bool
	// Static is set for exported pages, which have no server behind them.
	Static bool
	// Prefix is prepended to site links, e.g. "/de" for exported pages.
	Prefix string
}

// StaticExport rewrites navigation links below prefix, e.g. "/de".
func (l *Layout) StaticExport(prefix string) {
	l.Static = true
	l.Prefix = strings.TrimRight(prefix, "/")
	for i := range l.Nav {
		l.Nav[i].Href = prefixed(prefix, l.Nav[i].Href)
	}
	for i := range l.Breadcrumbs {
		l.Breadcrumbs[i].Href = prefixed(prefix, l.Breadcrumbs[i].Href)
	}
}

func prefixed(prefix, href string) string {
	if !strings.HasPrefix(href, "/") {
		return href
	}
	return strings.TrimRight(prefix, "/") + href
}

// NewLayout fills the navigation and selector fields for path.
func NewLayout(path string, text i18n.Text, meta seo.Meta, csrf string) Layout {
	return Layout{
		Lang:        text.Lang.String(),
		Path:        path,
		Text:        text,
		SEO:         meta,
		Nav:         nav.Build(path, text),
		Breadcrumbs: nav.Breadcrumbs(path, text, ""),
		Languages:   Languages(text.Lang),
		CSRFToken:   csrf,
	}
}

// HomeData is the view model for the CV page.
type HomeData struct {
	Layout
	Page     page.Page
	Feedback FeedbackData
}

// TimelineData is the view model for the full timeline page.
type TimelineData struct {
	Layout
	Timeline render.Fragment
}

// DetailData is the view model for career and education detail pages.
type DetailData struct {
	Layout
	Body  render.Fragment
	Found bool
}

// FeedbackData drives the feedback form fragment.
type FeedbackData struct {
	Text      i18n.Text
	CSRFToken string
	Values    feedback.Submission
	Errors    map[string]string
	Success   bool
	Message   string
}
