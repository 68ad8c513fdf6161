package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finitefield.org/cv-web/internal/i18n"
)

func TestBuildMarksActivePage(t *testing.T) {
	text := i18n.NewBundle().For(i18n.English)
	items := Build("/timeline", text)
	var active []string
	for _, it := range items {
		if it.Active {
			active = append(active, it.Href)
		}
	}
	assert.Equal(t, []string{"/timeline"}, active)
	assert.Equal(t, "Home", items[0].Label)
}

func TestBreadcrumbsForDetailPage(t *testing.T) {
	text := i18n.NewBundle().For(i18n.German)
	crumbs := Breadcrumbs("/career/acme-lead/", text, "Lead Engineer")
	assert.Equal(t, []Crumb{
		{Href: "/", Label: text.T("home")},
		{Href: "/#career", Label: text.T("career_details_title")},
		{Href: "/career/acme-lead", Label: "Lead Engineer", Active: true},
	}, crumbs)

	crumbs = Breadcrumbs("/misc/some_page", text, "")
	assert.Equal(t, "Misc", crumbs[1].Label)
	assert.Equal(t, "Some Page", crumbs[2].Label)

	assert.Len(t, Breadcrumbs("/", text, ""), 1)
}
