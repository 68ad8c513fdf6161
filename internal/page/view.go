package page

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"finitefield.org/cv-web/internal/carousel"
	"finitefield.org/cv-web/internal/content"
	"finitefield.org/cv-web/internal/i18n"
	"finitefield.org/cv-web/internal/render"
)

// View is the page state of one visitor, bound to their language preference.
//
// Language changes run as numbered generations; a load that finishes after a
// newer one started is discarded, so the latest selection always wins.
type View struct {
	ctrl   *Controller
	pref   *i18n.Preference
	logger *zap.Logger

	mu        sync.Mutex
	ctx       context.Context
	page      Page
	gen       uint64
	unsub     func()
	carousels map[string]*carousel.Controller
}

// NewView returns an uninitialised view. Call Init before reading the page.
func NewView(ctrl *Controller, pref *i18n.Preference) *View {
	return &View{
		ctrl:   ctrl,
		pref:   pref,
		logger: ctrl.logger,
		carousels: map[string]*carousel.Controller{
			SectionCareer:    carousel.New(0),
			SectionEducation: carousel.New(0),
		},
	}
}

// Init resolves the language, loads the page and subscribes to preference
// changes. Calling it again reloads without adding a second subscription.
func (v *View) Init(ctx context.Context) Page {
	v.mu.Lock()
	v.ctx = context.WithoutCancel(ctx)
	if v.unsub == nil {
		v.unsub = v.pref.OnChange(v.languageChanged)
	}
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	lang := v.pref.Resolve()
	page, _ := v.apply(gen, v.ctrl.store.FetchAll(ctx, lang))
	return page
}

// Close removes the preference subscription.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unsub != nil {
		v.unsub()
		v.unsub = nil
	}
}

func (v *View) languageChanged(lang i18n.Code) {
	v.mu.Lock()
	ctx := v.ctx
	v.gen++
	gen := v.gen
	prev := v.page.Docs
	v.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	v.apply(gen, v.ctrl.Refresh(ctx, lang, prev))
}

// apply renders set and installs it unless a newer generation started meanwhile.
func (v *View) apply(gen uint64, set content.Set) (Page, bool) {
	page := v.ctrl.Compose(set, 0, 0)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		v.logger.Debug("discarding stale page",
			zap.String("lang", set.Language.String()),
			zap.Uint64("generation", gen),
			zap.Uint64("current", v.gen),
		)
		return v.page, false
	}
	v.page = page
	v.carousels[SectionCareer].Reset(page.Career.Items)
	v.carousels[SectionEducation].Reset(page.Education.Items)
	return page, true
}

// Page returns the installed page.
func (v *View) Page() Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// Generation counts loads started so far.
func (v *View) Generation() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gen
}

// Carousel returns the controller of a carousel section, or nil.
func (v *View) Carousel(section string) *carousel.Controller {
	return v.carousels[section]
}

// Navigate moves a carousel and re-renders its section in place.
func (v *View) Navigate(section string, action carousel.Action, to int) (render.Fragment, error) {
	ctl := v.Carousel(section)
	if ctl == nil {
		return render.Fragment{}, ErrUnknownSection
	}
	ctl.Apply(action, to)

	v.mu.Lock()
	defer v.mu.Unlock()
	docs := v.page.Docs
	text := v.page.Text
	name, _ := sectionDocument(section)
	frag := v.ctrl.renderCarousel(section, docs.Get(name), text, ctl.Index())
	if section == SectionEducation {
		v.page.Education = frag
	} else {
		v.page.Career = frag
	}
	return frag, nil
}
