package testutil

import (
	"testing/fstest"
)

// CareerYAML lists two dated positions out of order and one without a date.
const CareerYAML = `career:
  - id: early
    company: Initech
    position: Developer
    start_date: "2020-01"
    end_date: "2022-05"
  - id: undated
    company: Side Gig
    position: Consultant
  - id: recent
    company: ACME <Corp>
    position: Lead Engineer
    start_date: "2022-06"
    brief: Leads the <script>alert(1)</script> platform team.
    details:
      scope: "Owns **payments** and <img src=x onerror=alert(1)> reporting."
      achievements:
        - Cut latency by half
      star_examples:
        - situation: Legacy billing
          target: Zero downtime migration
          actions: "Introduced a *strangler* facade"
          result: Migrated in 3 months
`

// SampleFS returns a complete per-language content tree for en and de.
func SampleFS() fstest.MapFS {
	return fstest.MapFS{
		"personal.yaml": {Data: []byte(`name: Jane Doe
title: Staff Engineer
summary: Builds *reliable* systems.
feedback_email: cv@example.com
contact:
  email: jane@example.com
  phone: "+49 30 1234"
  location: Berlin
  linkedin: https://www.linkedin.com/in/jane
  github: https://github.com/jane
`)},
		"career_en.yaml": {Data: []byte(CareerYAML)},
		"career_de.yaml": {Data: []byte(`career:
  - id: recent
    company: ACME
    position: Leitende Ingenieurin
    start_date: "2022-06"
`)},
		"education_en.yaml": {Data: []byte(`academic:
  - id: tum
    institution: TU Munich
    qualification: M.Sc. Informatics
    start_date: "2012-10"
    end_date: "2015-03"
    details:
      course: Informatics
      grade: "1.3"
  - id: school
    institution: Gymnasium
    qualification: Abitur
    start_date: "2004-09"
`)},
		"education_de.yaml": {Data: []byte(`academic:
  - id: tum
    institution: TU München
    qualification: M.Sc. Informatik
    start_date: "2012-10"
`)},
		"skills_en.yaml": {Data: []byte(`skills:
  hard:
    title: Hard Skills
    items:
      - name: Go
        level: 6
      - name: Kubernetes
        level: 4
      - name: Overflow
        level: 11
      - name: Negative
        level: -2
  soft:
    title: Soft Skills
    items:
      - name: Mentoring
        level: 5
`)},
		"skills_de.yaml": {Data: []byte(`skills:
  hard:
    title: Fachkompetenzen
    items:
      - name: Go
        level: 6
`)},
		"projects_en.yaml": {Data: []byte(`projects:
  - name: cv-web
    description: Server-rendered **CV** site.
    url: https://example.com/cv-web
    technologies: [go, htmx]
`)},
		"projects_de.yaml": {Data: []byte(`projects:
  - name: cv-web
    description: Serverseitig gerenderte Lebenslauf-Seite.
`)},
		"ui_text_en.yaml": {Data: []byte(`ui_text:
  view_details: View Details
  career_title: Career History
`)},
		"ui_text_de.yaml": {Data: []byte(`ui_text:
  view_details: Details ansehen
  career_title: Berufserfahrung
`)},
	}
}
