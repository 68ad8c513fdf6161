// Package render turns content documents into escaped HTML fragments for each
// page section. Every call fully describes its section, so rendering twice with
// the same inputs yields identical bytes.
package render

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"finitefield.org/cv-web/internal/i18n"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Insertion point ids of the page shell.
const (
	PersonalID  = "personal"
	CareerID    = "career-carousel"
	EducationID = "education-carousel"
	SkillsID    = "skills-section"
	ProjectsID  = "projects-grid"
	TimelineID  = "career-timeline"
	ContactID   = "contact-info"
)

// Fragment is the rendered inner content of one insertion point.
type Fragment struct {
	ID        string
	HTML      template.HTML
	Items     int  // carousel or list length, 0 for placeholders
	Available bool // false when the placeholder was rendered
}

// SkillStyle selects the skill level representation. One Renderer uses one style.
type SkillStyle string

const (
	StyleStars   SkillStyle = "stars"
	StylePercent SkillStyle = "percent"
)

// ParseSkillStyle maps configuration values to a style, defaulting to stars.
func ParseSkillStyle(raw string) SkillStyle {
	if SkillStyle(raw) == StylePercent {
		return StylePercent
	}
	return StyleStars
}

// Renderer renders page sections. It is safe for concurrent use.
type Renderer struct {
	tmpl   *template.Template
	style  SkillStyle
	md     goldmark.Markdown
	policy *bluemonday.Policy
	prefix func(i18n.Code) string
	logger *zap.Logger
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithSkillStyle selects the skill representation.
func WithSkillStyle(s SkillStyle) Option {
	return func(r *Renderer) {
		if s != "" {
			r.style = s
		}
	}
}

// WithPathPrefix prefixes generated detail links, e.g. "/de" for static export.
func WithPathPrefix(fn func(i18n.Code) string) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.prefix = fn
		}
	}
}

// WithLogger sets the logger used for template failures.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New parses the embedded section templates.
func New(opts ...Option) (*Renderer, error) {
	tmpl, err := template.New("sections").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		tmpl:   tmpl,
		style:  StyleStars,
		md:     goldmark.New(),
		policy: newRichTextPolicy(),
		prefix: func(i18n.Code) string { return "" },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// MustNew is New for package initialisation; the templates are embedded so
// failure is a programming error.
func MustNew(opts ...Option) *Renderer {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Style reports the configured skill style.
func (r *Renderer) Style() SkillStyle { return r.style }

var funcMap = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"odd": func(i int) bool { return i%2 == 1 },
}

// execute runs a named template, falling back to the placeholder on failure.
func (r *Renderer) execute(id, name string, text i18n.Text, data any, items int) Fragment {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error("render section failed", zap.String("section", id), zap.Error(err))
		return r.placeholder(id, text)
	}
	return Fragment{ID: id, HTML: template.HTML(buf.String()), Items: items, Available: true}
}

// placeholder renders the localized "not available" notice.
func (r *Renderer) placeholder(id string, text i18n.Text) Fragment {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "placeholder", text.T("not_available")); err != nil {
		buf.Reset()
		buf.WriteString(`<p class="section-placeholder">`)
		template.HTMLEscape(&buf, []byte(text.T("not_available")))
		buf.WriteString(`</p>`)
	}
	return Fragment{ID: id, HTML: template.HTML(buf.String())}
}

// Placeholder exposes the placeholder for sections the caller could not render.
func (r *Renderer) Placeholder(id string, text i18n.Text) Fragment {
	return r.placeholder(id, text)
}
