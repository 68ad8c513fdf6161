// Package page composes the rendered sections of the CV page from the content
// store and keeps per-visitor views in sync with the language preference.
package page

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/cv-web/internal/carousel"
	"finitefield.org/cv-web/internal/content"
	"finitefield.org/cv-web/internal/i18n"
	"finitefield.org/cv-web/internal/render"
)

// ErrUnknownSection is returned for carousel requests naming no carousel.
var ErrUnknownSection = errors.New("page: unknown carousel section")

// Carousel sections.
const (
	SectionCareer    = "career"
	SectionEducation = "education"
)

// Page is one fully rendered page state for a language.
type Page struct {
	Language  i18n.Code
	Text      i18n.Text
	Personal  render.Fragment
	Career    render.Fragment
	Education render.Fragment
	Skills    render.Fragment
	Projects  render.Fragment
	Timeline  render.Fragment
	Contact   render.Fragment
	// Banner is set when every critical document failed to load.
	Banner string
	Docs   content.Set
}

// Sections lists the fragments in page order.
func (p Page) Sections() []render.Fragment {
	return []render.Fragment{p.Personal, p.Career, p.Education, p.Skills, p.Projects, p.Timeline, p.Contact}
}

// Fragment returns the fragment rendered for an insertion point id.
func (p Page) Fragment(id string) (render.Fragment, bool) {
	for _, f := range p.Sections() {
		if f.ID == id {
			return f, true
		}
	}
	return render.Fragment{}, false
}

// Controller loads documents and renders every section. Safe for concurrent use.
type Controller struct {
	store    *content.Store
	renderer *render.Renderer
	bundle   *i18n.Bundle
	logger   *zap.Logger
}

// Option customises a Controller.
type Option func(*Controller)

// WithBundle shares a UI text bundle, e.g. with the page shell templates.
func WithBundle(b *i18n.Bundle) Option {
	return func(c *Controller) {
		if b != nil {
			c.bundle = b
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController wires a store and a renderer.
func NewController(store *content.Store, renderer *render.Renderer, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		renderer: renderer,
		bundle:   i18n.NewBundle(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Store() *content.Store { return c.store }

func (c *Controller) Renderer() *render.Renderer { return c.renderer }

func (c *Controller) Bundle() *i18n.Bundle { return c.bundle }

// Text returns the UI text for lang.
func (c *Controller) Text(lang i18n.Code) i18n.Text { return c.bundle.For(lang) }

// Load fetches every document for lang concurrently and renders the page with
// both carousels on their first item.
func (c *Controller) Load(ctx context.Context, lang i18n.Code) Page {
	return c.Compose(c.store.FetchAll(ctx, lang), 0, 0)
}

// Refresh fetches the documents needed for lang, reusing language independent
// documents already present in prev.
func (c *Controller) Refresh(ctx context.Context, lang i18n.Code, prev content.Set) content.Set {
	strategy := c.store.Strategy()
	var fetch []content.Name
	reused := map[content.Name]*content.Document{}
	for _, name := range content.Documents {
		if !strategy.LanguageScoped(name) {
			if doc := prev.Get(name); doc != nil {
				reused[name] = doc
				continue
			}
		}
		fetch = append(fetch, name)
	}

	set := content.Set{Language: lang, Docs: map[content.Name]*content.Document{}, Errors: map[content.Name]error{}}
	if len(fetch) > 0 {
		set = c.store.FetchAll(ctx, lang, fetch...)
	}
	for name, doc := range reused {
		set.Docs[name] = doc
	}
	return set
}

// Compose renders every section from set. ui_text, when present, is merged into
// the bundle before any section renders.
func (c *Controller) Compose(set content.Set, careerIndex, educationIndex int) Page {
	lang := set.Language
	c.mergeText(set)
	for name, err := range set.Errors {
		c.logger.Warn("section unavailable", zap.String("document", string(name)), zap.String("lang", lang.String()), zap.Error(err))
	}

	text := c.bundle.For(lang)
	r := c.renderer
	personal := set.Get(content.Personal)
	career := set.Get(content.Career)
	p := Page{
		Language:  lang,
		Text:      text,
		Personal:  r.Personal(personal, text),
		Career:    r.Career(career, text, careerIndex),
		Education: r.Education(set.Get(content.Education), text, educationIndex),
		Skills:    r.Skills(set.Get(content.Skills), text),
		Projects:  r.Projects(set.Get(content.Projects), text),
		Timeline:  r.Timeline(career, text),
		Contact:   r.Contact(personal, text),
		Docs:      set,
	}
	if allFailed(set, content.Critical) {
		p.Banner = text.T("content_unavailable")
	}
	return p
}

func (c *Controller) mergeText(set content.Set) {
	doc := set.Get(content.UIText)
	if doc == nil {
		return
	}
	entries, err := content.DecodeUIText(doc)
	if err != nil {
		c.logger.Warn("ui text unusable", zap.String("lang", set.Language.String()), zap.Error(err))
		return
	}
	c.bundle.Replace(set.Language, entries)
}

func allFailed(set content.Set, names []content.Name) bool {
	for _, name := range names {
		if set.Get(name) != nil {
			return false
		}
	}
	return true
}

// Navigate applies a carousel action to the state carried by a request (index
// of the active item) and renders the section with the resulting index.
func (c *Controller) Navigate(ctx context.Context, lang i18n.Code, section string, index int, action carousel.Action, to int, dx float64) (render.Fragment, error) {
	name, err := sectionDocument(section)
	if err != nil {
		return render.Fragment{}, err
	}
	text := c.bundle.For(lang)
	doc, err := c.store.Fetch(ctx, name, lang)
	if err != nil {
		c.logger.Warn("carousel document unavailable", zap.String("section", section), zap.Error(err))
	}
	ctl := carousel.Restore(itemCount(section, doc), index)
	if dx != 0 {
		ctl.Swipe(dx)
	} else {
		ctl.Apply(action, to)
	}
	return c.renderCarousel(section, doc, text, ctl.Index()), nil
}

// Detail is a rendered career or education detail page.
type Detail struct {
	Section string
	Text    i18n.Text
	Body    render.Fragment
	Title   string
	Summary string
	Found   bool
}

// Detail renders the entry of section addressed by key (explicit id or slug).
// Found is false when the document holds no such entry; Body then carries the
// placeholder.
func (c *Controller) Detail(ctx context.Context, lang i18n.Code, section, key string) (Detail, error) {
	name, err := sectionDocument(section)
	if err != nil {
		return Detail{}, err
	}
	set := c.store.FetchAll(ctx, lang, name, content.UIText)
	c.mergeText(set)
	if err := set.Err(name); err != nil {
		c.logger.Warn("detail document unavailable", zap.String("section", section), zap.Error(err))
	}
	d := Detail{Section: section, Text: c.bundle.For(lang)}
	doc := set.Get(name)

	if section == SectionEducation {
		d.Body, d.Found = c.renderer.EducationDetail(doc, key, d.Text)
		if d.Found {
			items, _ := render.EducationEntries(doc)
			e, _ := content.FindEducation(items, key)
			d.Title = joinNonEmpty(" - ", e.Qualification, e.Institution)
			d.Summary = e.Details.Description
		}
		return d, nil
	}
	d.Body, d.Found = c.renderer.CareerDetail(doc, key, d.Text)
	if d.Found {
		items, _ := render.CareerPositions(doc)
		p, _ := content.FindCareer(items, key)
		d.Title = joinNonEmpty(" - ", p.Position, p.Company)
		d.Summary = firstNonEmpty(p.Brief, p.Details.Scope)
	}
	return d, nil
}

// Slugs lists the detail page keys of section for lang, in render order.
func (c *Controller) Slugs(ctx context.Context, lang i18n.Code, section string) ([]string, error) {
	name, err := sectionDocument(section)
	if err != nil {
		return nil, err
	}
	doc, err := c.store.Fetch(ctx, name, lang)
	if err != nil {
		return nil, err
	}
	var out []string
	if section == SectionEducation {
		items, err := render.EducationEntries(doc)
		if err != nil {
			return nil, err
		}
		for _, e := range items {
			out = append(out, e.Slug())
		}
		return out, nil
	}
	items, err := render.CareerPositions(doc)
	if err != nil {
		return nil, err
	}
	for _, p := range items {
		out = append(out, p.Slug())
	}
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(sep string, values ...string) string {
	parts := values[:0:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, sep)
}

func (c *Controller) renderCarousel(section string, doc *content.Document, text i18n.Text, active int) render.Fragment {
	if section == SectionEducation {
		return c.renderer.Education(doc, text, active)
	}
	return c.renderer.Career(doc, text, active)
}

func itemCount(section string, doc *content.Document) int {
	if section == SectionEducation {
		items, _ := render.EducationEntries(doc)
		return len(items)
	}
	items, _ := render.CareerPositions(doc)
	return len(items)
}

func sectionDocument(section string) (content.Name, error) {
	switch section {
	case SectionCareer:
		return content.Career, nil
	case SectionEducation:
		return content.Education, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
}
