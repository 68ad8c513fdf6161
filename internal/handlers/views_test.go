package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finitefield.org/cv-web/internal/i18n"
	"finitefield.org/cv-web/internal/seo"
)

func TestLanguagesMarksSelection(t *testing.T) {
	opts := Languages(i18n.French)
	assert.Equal(t, []LanguageOption{
		{Code: "en", Label: "English"},
		{Code: "de", Label: "Deutsch"},
		{Code: "fr", Label: "Français", Selected: true},
	}, opts)
}

func TestNewLayout(t *testing.T) {
	text := i18n.NewBundle().For(i18n.German)
	l := NewLayout("/timeline", text, seo.Meta{Title: "CV"}, "tok")
	assert.Equal(t, "de", l.Lang)
	assert.Equal(t, "tok", l.CSRFToken)
	assert.Len(t, l.Breadcrumbs, 2)
	assert.NotEmpty(t, l.Nav)
}

func TestStaticExportPrefixesLinks(t *testing.T) {
	text := i18n.NewBundle().For(i18n.French)
	l := NewLayout("/timeline", text, seo.Meta{}, "")
	l.StaticExport("/fr")
	assert.True(t, l.Static)
	assert.Equal(t, "/fr", l.Prefix)
	assert.Equal(t, "/fr/", l.Nav[0].Href)
	assert.Equal(t, "/fr/#career", l.Nav[1].Href)
	assert.Equal(t, "/fr/timeline", l.Breadcrumbs[1].Href)
}
