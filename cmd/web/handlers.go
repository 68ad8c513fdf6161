package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/cv-web/internal/carousel"
	"finitefield.org/cv-web/internal/content"
	"finitefield.org/cv-web/internal/feedback"
	handlersPkg "finitefield.org/cv-web/internal/handlers"
	"finitefield.org/cv-web/internal/i18n"
	mw "finitefield.org/cv-web/internal/middleware"
	"finitefield.org/cv-web/internal/nav"
	"finitefield.org/cv-web/internal/observability"
	"finitefield.org/cv-web/internal/page"
	"finitefield.org/cv-web/internal/seo"
	"finitefield.org/cv-web/internal/status"
)

const excerptLength = 160

// HomeHandler renders the CV page.
func (a *app) HomeHandler(w http.ResponseWriter, r *http.Request) {
	p := a.ctrl.Load(r.Context(), mw.Lang(r.Context()))
	fb := a.feedbackData(r, p.Text)
	if r.URL.Query().Get("feedback") == "sent" {
		fb.Success = true
		fb.Message = p.Text.T("feedback_success")
	}
	renderPage(w, r, "home", http.StatusOK, a.homeData("/", mw.CSRFToken(r.Context()), p, fb))
}

func (a *app) homeData(path, csrf string, p page.Page, fb handlersPkg.FeedbackData) handlersPkg.HomeData {
	person := a.person(p.Docs)
	title := person.Name
	if person.Title != "" {
		title += " | " + person.Title
	}
	meta := a.meta(path, p.Language, title, a.summary(person))
	meta.JSONLD = []string{
		seo.JSON(seo.PersonSchema(a.personSchema(person))),
		seo.JSON(seo.WebSite(person.Name, a.cfg.Server.BaseURL, languageCodes())),
	}
	layout := handlersPkg.NewLayout(path, p.Text, meta, csrf)
	layout.Banner = p.Banner
	layout.DevMode = devMode
	return handlersPkg.HomeData{Layout: layout, Page: p, Feedback: fb}
}

// TimelineHandler renders the full career timeline page.
func (a *app) TimelineHandler(w http.ResponseWriter, r *http.Request) {
	p := a.ctrl.Load(r.Context(), mw.Lang(r.Context()))
	person := a.person(p.Docs)
	title := p.Text.T("timeline_page_title")
	if person.Name != "" {
		title += " | " + person.Name
	}
	meta := a.meta(r.URL.Path, p.Language, title, a.summary(person))
	layout := handlersPkg.NewLayout(r.URL.Path, p.Text, meta, mw.CSRFToken(r.Context()))
	layout.Banner = p.Banner
	layout.DevMode = devMode
	renderPage(w, r, "timeline", http.StatusOK, handlersPkg.TimelineData{Layout: layout, Timeline: p.Timeline})
}

// DetailHandler renders the detail page of a career position or education entry.
func (a *app) DetailHandler(section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := mw.Lang(r.Context())
		d, err := a.ctrl.Detail(r.Context(), lang, section, chi.URLParam(r, "id"))
		if err != nil {
			a.NotFoundHandler(w, r)
			return
		}
		renderPage(w, r, "detail", detailStatus(d), a.detailData(r.URL.Path, d, mw.CSRFToken(r.Context())))
	}
}

func (a *app) detailData(path string, d page.Detail, csrf string) handlersPkg.DetailData {
	title := d.Title
	if !d.Found {
		title = d.Text.T("not_found")
	}
	desc := seo.Excerpt(string(a.ctrl.Renderer().RichText(d.Summary)), excerptLength)
	meta := a.meta(path, d.Text.Lang, title, desc)
	layout := handlersPkg.NewLayout(path, d.Text, meta, csrf)
	layout.Breadcrumbs = nav.Breadcrumbs(path, d.Text, d.Title)
	layout.DevMode = devMode
	if d.Found {
		items := make([]seo.BreadcrumbItem, 0, len(layout.Breadcrumbs))
		for _, c := range layout.Breadcrumbs {
			items = append(items, seo.BreadcrumbItem{Name: c.Label, Item: seo.Absolute(a.cfg.Server.BaseURL, c.Href)})
		}
		meta.JSONLD = []string{seo.JSON(seo.BreadcrumbList(items))}
		layout.SEO = meta
	} else {
		layout.SEO.Robots = "noindex"
	}
	return handlersPkg.DetailData{Layout: layout, Body: d.Body, Found: d.Found}
}

func detailStatus(d page.Detail) int {
	if d.Found {
		return http.StatusOK
	}
	return http.StatusNotFound
}

// CarouselHandler moves a carousel and returns its re-rendered fragment.
func (a *app) CarouselHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	index, _ := strconv.Atoi(q.Get("index"))
	to, _ := strconv.Atoi(q.Get("to"))
	dx, _ := strconv.ParseFloat(q.Get("dx"), 64)

	frag, err := a.ctrl.Navigate(r.Context(), mw.Lang(r.Context()), chi.URLParam(r, "section"), index, carousel.Action(q.Get("action")), to, dx)
	if errors.Is(err, page.ErrUnknownSection) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(frag.HTML))
}

// LanguageHandler stores the selected language. htmx requests from the home
// page receive the re-rendered page body; everything else is redirected back.
func (a *app) LanguageHandler(w http.ResponseWriter, r *http.Request) {
	code, ok := i18n.Parse(r.PostFormValue("lang"))
	if !ok {
		http.Error(w, "unsupported language", http.StatusBadRequest)
		return
	}
	next := localPath(r.PostFormValue("path"))
	pref := mw.PreferenceFrom(r.Context())
	if pref == nil {
		http.Error(w, "language preference unavailable", http.StatusInternalServerError)
		return
	}

	if mw.IsHTMX(r.Context()) && next == "/" {
		view := page.NewView(a.ctrl, pref)
		view.Init(r.Context())
		defer view.Close()
		pref.Set(code.String())
		p := view.Page()

		w.Header().Set("Content-Language", p.Language.String())
		renderPagePart(w, r, "home", "page", http.StatusOK, a.homeData(next, mw.CSRFToken(r.Context()), p, a.feedbackData(r, p.Text)))
		return
	}

	pref.Set(code.String())
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", next)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// localPath accepts same-site absolute paths only.
func localPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return "/"
	}
	return raw
}

// FeedbackHandler validates and acknowledges a feedback submission.
func (a *app) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := mw.Lang(ctx)
	sub := feedback.Submission{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	}
	_, err := a.feedback.Submit(ctx, mw.ClientIP(r), a.feedbackRecipient(r, lang), sub)

	text := a.ctrl.Text(lang)
	data := a.feedbackData(r, text)
	data.Values = sub.Normalize()
	code := http.StatusOK
	var verr *feedback.ValidationError
	switch {
	case err == nil:
		data.Success = true
		data.Message = text.T("feedback_success")
		data.Values = feedback.Submission{}
	case errors.As(err, &verr):
		code = http.StatusUnprocessableEntity
		data.Errors = verr.Fields
		data.Message = text.T("feedback_error")
	case errors.Is(err, feedback.ErrRateLimited):
		code = http.StatusTooManyRequests
		data.Message = text.T("feedback_rate_limited")
	default:
		observability.FromContext(ctx).Error("feedback failed", zap.Error(err))
		code = http.StatusInternalServerError
		data.Message = text.T("feedback_error")
	}

	if mw.IsHTMX(ctx) {
		// htmx only swaps 2xx responses
		renderTemplate(w, r, "feedback_form", http.StatusOK, data)
		return
	}
	if data.Success {
		http.Redirect(w, r, "/?feedback=sent#feedback", http.StatusSeeOther)
		return
	}
	p := a.ctrl.Load(ctx, lang)
	renderPage(w, r, "home", code, a.homeData("/", mw.CSRFToken(ctx), p, data))
}

func (a *app) feedbackData(r *http.Request, text i18n.Text) handlersPkg.FeedbackData {
	return handlersPkg.FeedbackData{Text: text, CSRFToken: mw.CSRFToken(r.Context())}
}

func (a *app) feedbackRecipient(r *http.Request, lang i18n.Code) string {
	doc, err := a.store.Fetch(r.Context(), content.Personal, lang)
	if err != nil {
		return ""
	}
	info, err := content.DecodePersonal(doc)
	if err != nil {
		return ""
	}
	if info.FeedbackEmail != "" {
		return info.FeedbackEmail
	}
	return info.Contact.Email
}

// StatusHandler reports which documents load, as JSON.
func (a *app) StatusHandler(w http.ResponseWriter, r *http.Request) {
	summary := a.checker.Check(r.Context())
	code := http.StatusOK
	if summary.State == status.StateOutage {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(summary)
}

// NotFoundHandler renders the localized not found page.
func (a *app) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	text := a.ctrl.Text(mw.Lang(r.Context()))
	d := page.Detail{Text: text, Body: a.ctrl.Renderer().Placeholder("not-found", text)}
	renderPage(w, r, "detail", http.StatusNotFound, a.detailData(r.URL.Path, d, mw.CSRFToken(r.Context())))
}

func (a *app) person(set content.Set) content.PersonalInfo {
	doc := set.Get(content.Personal)
	if doc == nil {
		return content.PersonalInfo{}
	}
	info, err := content.DecodePersonal(doc)
	if err != nil {
		a.logger.Warn("personal document unusable", zap.Error(err))
	}
	return info
}

func (a *app) summary(p content.PersonalInfo) string {
	return seo.Excerpt(string(a.ctrl.Renderer().RichText(p.Summary)), excerptLength)
}

func (a *app) personSchema(p content.PersonalInfo) seo.Person {
	var sameAs []string
	for _, u := range []string{p.Contact.LinkedIn, p.Contact.Xing, p.Contact.GitHub, p.Contact.Twitter, p.Contact.Website} {
		if strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") {
			sameAs = append(sameAs, u)
		}
	}
	return seo.Person{
		Name:     p.Name,
		JobTitle: p.Title,
		URL:      a.cfg.Server.BaseURL,
		Image:    p.Photo,
		Email:    p.Contact.Email,
		SameAs:   sameAs,
	}
}

func (a *app) meta(path string, lang i18n.Code, title, description string) seo.Meta {
	return seo.Build(a.cfg.Server.BaseURL, path, lang, title, description, "")
}

func languageCodes() []string {
	var out []string
	for _, c := range i18n.Supported() {
		out = append(out, c.String())
	}
	return out
}
