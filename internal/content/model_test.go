package content

import (
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finitefield.org/cv-web/internal/i18n"
)

func mustDoc(t *testing.T, name Name, raw string) *Document {
	t.Helper()
	doc, err := NewDocument(name, i18n.English, []byte(raw))
	require.NoError(t, err)
	return doc
}

func TestDecodeCareerToleratesBothShapes(t *testing.T) {
	doc := mustDoc(t, Career, `
career:
  - id: acme-lead
    company: ACME
    logo: /assets/acme.png
    position: Lead Engineer
    duration: 2019 - Present
    brief: Built things.
    details:
      scope: Platform team
      achievements: ["Cut latency", "  ", "Hired four engineers"]
      star_examples:
        - situation: Legacy stack
          task: Migrate
          action: Strangler pattern
          result: Zero downtime
  - ~
  - companyName: Initech
    title: Developer
    startDate: "2015-03-01"
`)
	items, err := DecodeCareer(doc)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "ACME", first.Company)
	assert.Equal(t, "Lead Engineer", first.Position)
	assert.Equal(t, []string{"Cut latency", "Hired four engineers"}, first.Details.Achievements)
	require.Len(t, first.Details.StarExamples, 1)
	assert.Equal(t, "Migrate", first.Details.StarExamples[0].Target)
	assert.Equal(t, "Strangler pattern", first.Details.StarExamples[0].Actions)
	start, ok := first.Start()
	require.True(t, ok, "duration prefix is a fallback start date")
	assert.Equal(t, 2019, start.Year())

	second := items[1]
	assert.Equal(t, "Initech", second.Company)
	assert.Equal(t, "Developer", second.Position)
	assert.Equal(t, "2015-03-01", second.StartDate)
	assert.Equal(t, "initech-developer", second.Slug())
}

func TestCareerLookupByIDOrSlug(t *testing.T) {
	items := []CareerPosition{
		{ID: "acme-lead", Company: "ACME", Position: "Lead Engineer"},
		{Company: "Initech", Position: "Developer"},
	}
	for _, key := range []string{"acme-lead", "ACME Lead Engineer", "acme-lead-engineer"} {
		got, ok := FindCareer(items, key)
		require.True(t, ok, key)
		assert.Equal(t, "ACME", got.Company)
	}
	got, ok := FindCareer(items, items[1].Slug())
	require.True(t, ok)
	assert.Equal(t, "Initech", got.Company)

	_, ok = FindCareer(items, "unknown")
	assert.False(t, ok)
	_, ok = FindCareer(items, "!!")
	assert.False(t, ok)
}

func TestDuplicateEntriesGetUniqueSlugs(t *testing.T) {
	doc := mustDoc(t, Career, `
career:
  - company: ACME
    position: Engineer
    start_date: "2018-01"
    brief: first stint
  - company: ACME
    position: Engineer
    start_date: "2022-01"
    brief: second stint
  - id: acme-engineer-2
    company: Initech
    position: Developer
  - company: ""
    position: ""
`)
	items, err := DecodeCareer(doc)
	require.NoError(t, err)
	require.Len(t, items, 4)

	slugs := make([]string, len(items))
	for i, p := range items {
		slugs[i] = p.Slug()
	}
	assert.Equal(t, []string{"acme-engineer", "acme-engineer-3", "acme-engineer-2", "position"}, slugs)

	for _, p := range items {
		got, ok := FindCareer(items, p.Slug())
		require.True(t, ok, p.Slug())
		assert.Equal(t, p.Brief, got.Brief, p.Slug())
		assert.Equal(t, p.Company, got.Company, p.Slug())
	}
	got, ok := FindCareer(items, "ACME Engineer")
	require.True(t, ok)
	assert.Equal(t, "first stint", got.Brief)

	edu, err := DecodeEducation(mustDoc(t, Education, `
- institution: TUM
  qualification: M.Sc.
  grade: "1.0"
- institution: TUM
  qualification: M.Sc.
`))
	require.NoError(t, err)
	require.Len(t, edu, 2)
	assert.Equal(t, "tum-msc", edu[0].Slug())
	assert.Equal(t, "tum-msc-2", edu[1].Slug())
}

func TestDecodeEducation(t *testing.T) {
	doc := mustDoc(t, Education, `
academic:
  - id: tum
    institution: TU München
    time: 2010 - 2015
    details:
      course: Informatics
      diploma: M.Sc.
      grade: "1.3"
`)
	items, err := DecodeEducation(doc)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "M.Sc.", items[0].Qualification)
	assert.Equal(t, "1.3", items[0].Details.Grade)
	assert.Equal(t, "2010 - 2015", items[0].Duration)

	e, ok := FindEducation(items, "tum")
	require.True(t, ok)
	assert.Equal(t, "TU München", e.Institution)
}

func TestDecodeSkillsCategories(t *testing.T) {
	doc := mustDoc(t, Skills, `
skills:
  hard:
    title: Hard Skills
    items:
      - name: Go
        level: 6
      - name: Rust
        level: 9
  softSkills:
    - name: Mentoring
      proficiency: 4
`)
	cats, err := DecodeSkills(doc)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "hard", cats[0].Key)
	assert.Equal(t, "Hard Skills", cats[0].Title)
	assert.Equal(t, 9.0, cats[0].Items[1].Level, "levels are clamped at render time")
	assert.Equal(t, "soft", cats[1].Key)
	assert.Equal(t, 4.0, cats[1].Items[0].Level)
}

func TestDecodePersonalMergesContact(t *testing.T) {
	doc := mustDoc(t, Personal, `
name: Jane Doe
title: Engineer
email: top@example.com
feedback_email: cv@example.com
contact:
  phone: "+49 123"
  social:
    github: https://github.com/jane
`)
	info, err := DecodePersonal(doc)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", info.Name)
	assert.Equal(t, "top@example.com", info.Contact.Email)
	assert.Equal(t, "+49 123", info.Contact.Phone)
	assert.Equal(t, "https://github.com/jane", info.Contact.GitHub)
	assert.Equal(t, "cv@example.com", info.FeedbackEmail)
}

func TestDecodeSkillsToleratesMalformedLevels(t *testing.T) {
	doc := mustDoc(t, Skills, `
skills:
  hard:
    - name: Go
      level: 5
    - name: Rust
      level: "4"
    - name: Wizardry
      level: high
    - name: Nested
      level: [1, 2]
    - name: Unrated
      level: ~
    - Docker
`)
	cats, err := DecodeSkills(doc)
	require.NoError(t, err)
	require.Len(t, cats, 1)

	items := cats[0].Items
	require.Len(t, items, 6)
	assert.Equal(t, SkillItem{Name: "Go", Level: 5}, items[0])
	assert.Equal(t, SkillItem{Name: "Rust", Level: 4}, items[1])
	assert.Equal(t, SkillItem{Name: "Wizardry", InvalidLevel: "high"}, items[2])
	assert.Equal(t, SkillItem{Name: "Nested", InvalidLevel: "sequence"}, items[3])
	assert.Equal(t, SkillItem{Name: "Unrated"}, items[4])
	assert.Equal(t, SkillItem{Name: "Docker"}, items[5])
}

func TestDecodeProjectsAndUIText(t *testing.T) {
	projects, err := DecodeProjects(mustDoc(t, Projects, `
- title: cv-web
  link: https://example.com
  tags: [go, htmx]
`))
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "cv-web", projects[0].Name)
	assert.Equal(t, "https://example.com", projects[0].URL)
	assert.Equal(t, []string{"go", "htmx"}, projects[0].Technologies)

	ui, err := DecodeUIText(mustDoc(t, UIText, "ui_text:\n  home: Start\n  nested:\n    a: b\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"home": "Start"}, ui)
}

func TestDecodeRejectsWrongShape(t *testing.T) {
	_, err := DecodeCareer(mustDoc(t, Career, "career: nope\n"))
	assert.Error(t, err)
	_, err = DecodeSkills(mustDoc(t, Skills, "- a\n"))
	assert.Error(t, err)
	_, err = DecodeCareer(nil)
	assert.Error(t, err)
	_, err = NewDocument(Career, i18n.English, []byte(""))
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	for _, v := range []string{"2022-06", "2022-06-15", "06/2022", "Jun 2022", "June 2022", "2022"} {
		got, ok := ParseDate(v)
		require.True(t, ok, v)
		assert.Equal(t, 2022, got.Year(), v)
	}
	_, ok := ParseDate("sometime")
	assert.False(t, ok)
	_, ok = ParseDate("")
	assert.False(t, ok)
}

func TestHandleEventMapsFilesToKeys(t *testing.T) {
	store := NewStore(NewFSSource(perLanguageFS()))
	cases := []struct {
		name string
		op   fsnotify.Op
		key  string
		ok   bool
	}{
		{"content/career_de.yaml", fsnotify.Write, "career|de", true},
		{"content/personal.yaml", fsnotify.Create, "personal", true},
		{"content/ui_text_fr.yaml", fsnotify.Remove, "ui_text|fr", true},
		{"content/career_de.yaml", fsnotify.Chmod, "", false},
		{"content/.career_de.yaml.swp", fsnotify.Write, "", false},
		{"content/career_ja.yaml", fsnotify.Write, "", false},
		{"content/notes.txt", fsnotify.Write, "", false},
	}
	for _, tc := range cases {
		key, ok := store.handleEvent(fsnotify.Event{Name: tc.name, Op: tc.op})
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.key, key, tc.name)
	}

	keyed := NewStore(nil, WithStrategy(LanguageKeyed))
	key, ok := keyed.handleEvent(fsnotify.Event{Name: "content/skills.yml", Op: fsnotify.Write})
	require.True(t, ok)
	assert.Equal(t, "skills", key)
	_, ok = keyed.handleEvent(fsnotify.Event{Name: "content/skills_en.yaml", Op: fsnotify.Write})
	assert.False(t, ok)
}
