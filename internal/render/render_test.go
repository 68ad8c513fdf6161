package render

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"finitefield.org/cv-web/internal/content"
	"finitefield.org/cv-web/internal/i18n"
	"finitefield.org/cv-web/internal/testutil"
)

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(opts...)
	require.NoError(t, err)
	return r
}

func doc(t *testing.T, name content.Name, raw string) *content.Document {
	t.Helper()
	d, err := content.NewDocument(name, i18n.English, []byte(raw))
	require.NoError(t, err)
	return d
}

var en = i18n.NewBundle().For(i18n.English)

func TestCareerOrderRecentFirstUndatedLast(t *testing.T) {
	r := newRenderer(t)
	frag := r.Career(doc(t, content.Career, testutil.CareerYAML), en, 0)
	require.True(t, frag.Available)
	assert.Equal(t, 3, frag.Items)

	dom := testutil.ParseFragment(t, frag.HTML)
	var slugs []string
	dom.Find(".carousel-item").Each(func(_ int, s *goquery.Selection) {
		slugs = append(slugs, s.AttrOr("data-slug", ""))
	})
	assert.Equal(t, []string{"recent", "early", "undated"}, slugs)
	assert.Equal(t, 1, dom.Find(".carousel-item.active").Length())
	assert.Equal(t, "recent", dom.Find(".carousel-item.active").AttrOr("data-slug", ""))
}

func TestSortByDateProperty(t *testing.T) {
	type entry struct {
		id   int
		date string
	}
	dates := []string{"", "2019-03", "garbage", "2021", "2019-03", "", "2024-11-02", "Jan 2018"}
	items := make([]entry, len(dates))
	for i, d := range dates {
		items[i] = entry{id: i, date: d}
	}
	sortByDate(items, func(e entry) (time.Time, bool) { return content.ParseDate(e.date) })

	seenUndated := false
	var prev time.Time
	var undatedIDs []int
	for i, it := range items {
		ts, ok := content.ParseDate(it.date)
		if !ok {
			seenUndated = true
			undatedIDs = append(undatedIDs, it.id)
			continue
		}
		require.False(t, seenUndated, "dated entry after undated one at %d", i)
		if i > 0 {
			assert.False(t, ts.After(prev), "dates must be non-increasing")
		}
		prev = ts
	}
	assert.Equal(t, []int{0, 2, 5}, undatedIDs, "undated keep original order")
}

func TestCareerEscapesDocumentText(t *testing.T) {
	r := newRenderer(t)
	frag := r.Career(doc(t, content.Career, testutil.CareerYAML), en, 0)
	assert.NotContains(t, string(frag.HTML), "<script>")
	assert.NotContains(t, string(frag.HTML), "<Corp>")

	dom := testutil.ParseFragment(t, frag.HTML)
	assert.Equal(t, "ACME <Corp>", dom.Find(`[data-slug="recent"] .carousel-item__subtitle`).Text())
	assert.Contains(t, dom.Find(`[data-slug="recent"] .carousel-item__brief`).Text(), "<script>alert(1)</script>")
}

func TestCareerActiveIndexAndControls(t *testing.T) {
	r := newRenderer(t)
	frag := r.Career(doc(t, content.Career, testutil.CareerYAML), en, 2)
	dom := testutil.ParseFragment(t, frag.HTML)
	assert.Equal(t, "undated", dom.Find(".carousel-item.active").AttrOr("data-slug", ""))
	assert.Equal(t, "/carousel/career?index=2&action=next", dom.Find(".carousel__next").AttrOr("hx-get", ""))
	assert.Equal(t, 3, dom.Find(".carousel__indicator").Length())

	frag = r.Career(doc(t, content.Career, testutil.CareerYAML), en, 7)
	dom = testutil.ParseFragment(t, frag.HTML)
	assert.Equal(t, "recent", dom.Find(".carousel-item.active").AttrOr("data-slug", ""))
}

func TestMissingDocumentRendersPlaceholder(t *testing.T) {
	r := newRenderer(t)
	de := i18n.NewBundle().For(i18n.German)
	for _, frag := range []Fragment{
		r.Career(nil, de, 0),
		r.Education(nil, de, 0),
		r.Skills(nil, de),
		r.Projects(nil, de),
		r.Timeline(nil, de),
		r.Personal(nil, de),
		r.Contact(nil, de),
	} {
		assert.False(t, frag.Available, frag.ID)
		dom := testutil.ParseFragment(t, frag.HTML)
		assert.Equal(t, 1, dom.Find(".section-placeholder").Length(), frag.ID)
		assert.Equal(t, "Nicht verfügbar", dom.Find(".section-placeholder").Text(), frag.ID)
	}

	frag := r.Career(doc(t, content.Career, "career: 42\n"), en, 0)
	assert.False(t, frag.Available)
	assert.Contains(t, string(frag.HTML), "Not available")
}

func TestMissingFieldsDegradeToNA(t *testing.T) {
	r := newRenderer(t)
	frag := r.Education(doc(t, content.Education, "academic:\n  - id: x\n"), en, 0)
	require.True(t, frag.Available)
	dom := testutil.ParseFragment(t, frag.HTML)
	assert.Equal(t, "N/A", dom.Find(".carousel-item__title").Text())
	assert.Equal(t, "N/A", dom.Find(".carousel-item__subtitle").Text())
	assert.Equal(t, "N/A", dom.Find(".carousel-item__period").Text())
	assert.Zero(t, dom.Find(".carousel__controls").Length(), "single item has no controls")
}

func TestStarsClamp(t *testing.T) {
	for level := -3.0; level <= 9; level++ {
		filled, empty := Stars(level)
		want := int(math.Min(math.Max(level, 0), MaxLevel))
		assert.Equal(t, want, filled, "level %v", level)
		assert.Equal(t, MaxLevel, filled+empty)
	}
	filled, _ := Stars(math.NaN())
	assert.Zero(t, filled)
	assert.Equal(t, 100.0, Percent(42))
	assert.Equal(t, 50.0, Percent(3))
	assert.Equal(t, 0.0, Percent(-1))
}

func TestSkillsStarStyle(t *testing.T) {
	r := newRenderer(t)
	fs := testutil.SampleFS()
	frag := r.Skills(doc(t, content.Skills, string(fs["skills_en.yaml"].Data)), en)
	require.True(t, frag.Available)
	assert.Equal(t, 5, frag.Items)

	dom := testutil.ParseFragment(t, frag.HTML)
	assert.Equal(t, 2, dom.Find(".skills-category").Length())
	assert.Zero(t, dom.Find(".skill-bar").Length(), "styles are never mixed")

	want := map[string]int{"Go": 6, "Kubernetes": 4, "Overflow": 6, "Negative": 0, "Mentoring": 5}
	dom.Find(".skill-item").Each(func(_ int, s *goquery.Selection) {
		name := s.Find(".skill-name").Text()
		filled := s.Find(".skill-stars__filled").Text()
		empty := s.Find(".skill-stars__empty").Text()
		assert.Equal(t, want[name], strings.Count(filled, "★"), name)
		assert.Equal(t, MaxLevel-want[name], strings.Count(empty, "☆"), name)
	})
}

func TestSkillsPercentStyle(t *testing.T) {
	r := newRenderer(t, WithSkillStyle(StylePercent))
	frag := r.Skills(doc(t, content.Skills, "skills:\n  it:\n    - name: SQL\n      level: 4\n    - name: Bash\n      level: 12\n"), en)
	dom := testutil.ParseFragment(t, frag.HTML)
	assert.Zero(t, dom.Find(".skill-stars").Length())
	styles := dom.Find(".skill-level").Map(func(_ int, s *goquery.Selection) string {
		return s.AttrOr("style", "")
	})
	assert.Equal(t, []string{"width: 66.7%", "width: 100%"}, styles)
	assert.Equal(t, "IT Skills", dom.Find(".skills-category h3").Text(), "title falls back to localized category name")
}

func TestSkillsKeepValidItemsWhenALevelIsMalformed(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := newRenderer(t, WithLogger(zap.New(core)))
	frag := r.Skills(doc(t, content.Skills, `
skills:
  hard:
    - name: Go
      level: 5
    - name: Rust
      level: "4"
    - name: Wizardry
      level: high
`), en)
	require.True(t, frag.Available)
	assert.Equal(t, 3, frag.Items)

	dom := testutil.ParseFragment(t, frag.HTML)
	want := map[string]int{"Go": 5, "Rust": 4, "Wizardry": 0}
	seen := 0
	dom.Find(".skill-item").Each(func(_ int, s *goquery.Selection) {
		name := s.Find(".skill-name").Text()
		assert.Equal(t, want[name], strings.Count(s.Find(".skill-stars__filled").Text(), "★"), name)
		seen++
	})
	assert.Equal(t, 3, seen)

	warnings := logs.FilterMessage("skill level is not a number").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Wizardry", warnings[0].ContextMap()["skill"])
	assert.Equal(t, "high", warnings[0].ContextMap()["level"])
}

func TestDuplicatePositionsLinkToTheirOwnDetailPage(t *testing.T) {
	r := newRenderer(t)
	career := doc(t, content.Career, `
career:
  - company: ACME
    position: Engineer
    start_date: "2018-01"
    brief: first stint
  - company: ACME
    position: Engineer
    start_date: "2022-01"
    brief: second stint
`)
	dom := testutil.ParseFragment(t, r.Career(career, en, 0).HTML)
	var slugs, hrefs []string
	dom.Find(".carousel-item").Each(func(_ int, s *goquery.Selection) {
		slugs = append(slugs, s.AttrOr("data-slug", ""))
		hrefs = append(hrefs, s.Find(".carousel-item__link").AttrOr("href", ""))
	})
	assert.Equal(t, []string{"acme-engineer-2", "acme-engineer"}, slugs)
	assert.Equal(t, []string{"/career/acme-engineer-2", "/career/acme-engineer"}, hrefs)

	timeline := testutil.ParseFragment(t, r.Timeline(career, en).HTML)
	assert.Equal(t, slugs, timeline.Find(".timeline-item").Map(func(_ int, s *goquery.Selection) string {
		return s.AttrOr("data-slug", "")
	}))

	for slug, brief := range map[string]string{"acme-engineer": "first stint", "acme-engineer-2": "second stint"} {
		frag, found := r.CareerDetail(career, slug, en)
		require.True(t, found, slug)
		assert.Equal(t, brief, testutil.ParseFragment(t, frag.HTML).Find(".detail__brief").Text(), slug)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	r := newRenderer(t)
	fs := testutil.SampleFS()
	render := func() string {
		var b strings.Builder
		career := doc(t, content.Career, string(fs["career_en.yaml"].Data))
		personal := doc(t, content.Personal, string(fs["personal.yaml"].Data))
		b.WriteString(string(r.Career(career, en, 0).HTML))
		b.WriteString(string(r.Timeline(career, en).HTML))
		b.WriteString(string(r.Education(doc(t, content.Education, string(fs["education_en.yaml"].Data)), en, 0).HTML))
		b.WriteString(string(r.Skills(doc(t, content.Skills, string(fs["skills_en.yaml"].Data)), en).HTML))
		b.WriteString(string(r.Projects(doc(t, content.Projects, string(fs["projects_en.yaml"].Data)), en).HTML))
		b.WriteString(string(r.Personal(personal, en).HTML))
		b.WriteString(string(r.Contact(personal, en).HTML))
		return b.String()
	}
	first := render()
	assert.Equal(t, first, render())
}

func TestCareerDetailSanitizesRichText(t *testing.T) {
	r := newRenderer(t)
	career := doc(t, content.Career, testutil.CareerYAML)

	frag, found := r.CareerDetail(career, "recent", en)
	require.True(t, found)
	html := string(frag.HTML)
	assert.NotContains(t, html, "onerror")
	assert.Contains(t, html, "<strong>payments</strong>")
	assert.Contains(t, html, "<em>strangler</em>")

	dom := testutil.ParseFragment(t, frag.HTML)
	assert.Equal(t, "Lead Engineer", dom.Find("h1").Text())
	assert.Equal(t, "Zero downtime migration", dom.Find(".star-example dd").Eq(1).Text())

	bySlug, found := r.CareerDetail(career, "ACME Corp Lead Engineer", en)
	require.True(t, found)
	assert.Equal(t, frag.HTML, bySlug.HTML, "id and derived slug resolve to the same entity")

	_, found = r.CareerDetail(career, "nope", en)
	assert.False(t, found)
}

func TestEducationDetail(t *testing.T) {
	r := newRenderer(t, WithPathPrefix(func(c i18n.Code) string { return "/" + string(c) }))
	fs := testutil.SampleFS()
	frag, found := r.EducationDetail(doc(t, content.Education, string(fs["education_en.yaml"].Data)), "tum", en)
	require.True(t, found)
	dom := testutil.ParseFragment(t, frag.HTML)
	assert.Equal(t, "M.Sc. Informatics", dom.Find("h1").Text())
	assert.Equal(t, "2012-10 - 2015-03", dom.Find(".detail__period").Text())
	assert.Equal(t, "/en/", dom.Find(".detail__back a").AttrOr("href", ""))
}

func TestContactOmitsEmptyChannelsAndUnsafeURLs(t *testing.T) {
	r := newRenderer(t)
	frag := r.Contact(doc(t, content.Personal, `
name: Jane
contact:
  email: jane@example.com
  github: javascript:alert(1)
`), en)
	dom := testutil.ParseFragment(t, frag.HTML)
	assert.Equal(t, "mailto:jane@example.com", dom.Find(".contact-email a").AttrOr("href", ""))
	assert.Zero(t, dom.Find(".contact-phone").Length())
	assert.NotContains(t, dom.Find(".contact-github a").AttrOr("href", ""), "javascript:")
}

func TestTimelineAlternatesSides(t *testing.T) {
	r := newRenderer(t)
	frag := r.Timeline(doc(t, content.Career, testutil.CareerYAML), en)
	dom := testutil.ParseFragment(t, frag.HTML)
	classes := dom.Find(".timeline-item").Map(func(_ int, s *goquery.Selection) string {
		return s.AttrOr("class", "")
	})
	assert.Equal(t, []string{"timeline-item left", "timeline-item right", "timeline-item left"}, classes)
	assert.Equal(t, "2022-06 - Present", dom.Find(".timeline-period").First().Text())
}
