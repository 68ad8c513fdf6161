package render

import (
	"html/template"

	"go.uber.org/zap"

	"finitefield.org/cv-web/internal/content"
	"finitefield.org/cv-web/internal/format"
	"finitefield.org/cv-web/internal/i18n"
)

type careerCard struct {
	Index    int
	Active   bool
	Slug     string
	URL      string
	Company  string
	Position string
	Logo     string
	Period   string
	Brief    string
}

type carouselView struct {
	Text    i18n.Text
	Section string
	Target  string
	Active  int
	Items   []careerCard
	Count   int
}

func (r *Renderer) period(start, end, duration string, text i18n.Text) string {
	if p := format.FmtPeriod(start, end, text.T("present")); p != "" {
		return p
	}
	if duration != "" {
		return duration
	}
	return text.T("na")
}

func orNA(v string, text i18n.Text) string {
	if v == "" {
		return text.T("na")
	}
	return v
}

// CareerPositions decodes and orders the career document, most recent first.
func CareerPositions(doc *content.Document) ([]content.CareerPosition, error) {
	items, err := content.DecodeCareer(doc)
	if err != nil {
		return nil, err
	}
	sortByDate(items, content.CareerPosition.Start)
	return items, nil
}

// EducationEntries decodes and orders the education document, most recent first.
func EducationEntries(doc *content.Document) ([]content.EducationEntry, error) {
	items, err := content.DecodeEducation(doc)
	if err != nil {
		return nil, err
	}
	sortByDate(items, content.EducationEntry.Start)
	return items, nil
}

// Career renders the career carousel with the item at active marked. Out of
// range indices activate the first item.
func (r *Renderer) Career(doc *content.Document, text i18n.Text, active int) Fragment {
	items, err := CareerPositions(doc)
	if err != nil || len(items) == 0 {
		return r.placeholder(CareerID, text)
	}
	active = clampActive(active, len(items))
	view := carouselView{Text: text, Section: "career", Target: CareerID, Active: active, Count: len(items)}
	for i, p := range items {
		view.Items = append(view.Items, careerCard{
			Index:    i,
			Active:   i == active,
			Slug:     p.Slug(),
			URL:      r.prefix(text.Lang) + "/career/" + p.Slug(),
			Company:  orNA(p.Company, text),
			Position: orNA(p.Position, text),
			Logo:     p.Logo,
			Period:   r.period(p.StartDate, p.EndDate, p.Duration, text),
			Brief:    p.Brief,
		})
	}
	return r.execute(CareerID, "carousel", text, view, len(items))
}

// Education renders the education carousel.
func (r *Renderer) Education(doc *content.Document, text i18n.Text, active int) Fragment {
	items, err := EducationEntries(doc)
	if err != nil || len(items) == 0 {
		return r.placeholder(EducationID, text)
	}
	active = clampActive(active, len(items))
	view := carouselView{Text: text, Section: "education", Target: EducationID, Active: active, Count: len(items)}
	for i, e := range items {
		view.Items = append(view.Items, careerCard{
			Index:    i,
			Active:   i == active,
			Slug:     e.Slug(),
			URL:      r.prefix(text.Lang) + "/education/" + e.Slug(),
			Company:  orNA(e.Institution, text),
			Position: orNA(e.Qualification, text),
			Logo:     e.Logo,
			Period:   r.period(e.StartDate, e.EndDate, e.Duration, text),
			Brief:    e.Details.Course,
		})
	}
	return r.execute(EducationID, "carousel", text, view, len(items))
}

func clampActive(i, n int) int {
	if i < 0 || i >= n {
		return 0
	}
	return i
}

type skillsView struct {
	Text       i18n.Text
	Percent    bool
	Categories []skillCategoryView
}

type skillCategoryView struct {
	Key    string
	Title  string
	Skills []skillView
}

// Skills renders every skill category in the configured style.
func (r *Renderer) Skills(doc *content.Document, text i18n.Text) Fragment {
	cats, err := content.DecodeSkills(doc)
	if err != nil || len(cats) == 0 {
		return r.placeholder(SkillsID, text)
	}
	view := skillsView{Text: text, Percent: r.style == StylePercent}
	total := 0
	for _, c := range cats {
		title := c.Title
		if title == "" {
			if t := text.T(c.Key + "_skills"); t != c.Key+"_skills" {
				title = t
			} else {
				title = format.Prettify(c.Key)
			}
		}
		cv := skillCategoryView{Key: format.Slugify(c.Key), Title: title}
		for _, it := range c.Items {
			if it.InvalidLevel != "" {
				r.logger.Warn("skill level is not a number",
					zap.String("category", c.Key),
					zap.String("skill", it.Name),
					zap.String("level", it.InvalidLevel))
			}
			cv.Skills = append(cv.Skills, newSkillView(it.Name, it.Level, text.T("na")))
		}
		total += len(cv.Skills)
		view.Categories = append(view.Categories, cv)
	}
	return r.execute(SkillsID, "skills", text, view, total)
}

type projectView struct {
	Slug         string
	Name         string
	Description  template.HTML
	URL          string
	Image        string
	Date         string
	Technologies []string
}

// Projects renders the projects grid.
func (r *Renderer) Projects(doc *content.Document, text i18n.Text) Fragment {
	items, err := content.DecodeProjects(doc)
	if err != nil || len(items) == 0 {
		return r.placeholder(ProjectsID, text)
	}
	view := struct {
		Text     i18n.Text
		Projects []projectView
	}{Text: text}
	for _, p := range items {
		view.Projects = append(view.Projects, projectView{
			Slug:         p.Slug(),
			Name:         orNA(p.Name, text),
			Description:  r.RichText(p.Description),
			URL:          p.URL,
			Image:        p.Image,
			Date:         p.Date,
			Technologies: p.Technologies,
		})
	}
	return r.execute(ProjectsID, "projects", text, view, len(items))
}

// Timeline renders the career timeline, most recent first, alternating sides.
func (r *Renderer) Timeline(doc *content.Document, text i18n.Text) Fragment {
	items, err := CareerPositions(doc)
	if err != nil || len(items) == 0 {
		return r.placeholder(TimelineID, text)
	}
	view := carouselView{Text: text, Section: "timeline", Target: TimelineID, Count: len(items)}
	for i, p := range items {
		view.Items = append(view.Items, careerCard{
			Index:    i,
			Slug:     p.Slug(),
			URL:      r.prefix(text.Lang) + "/career/" + p.Slug(),
			Company:  orNA(p.Company, text),
			Position: orNA(p.Position, text),
			Logo:     p.Logo,
			Period:   r.period(p.StartDate, p.EndDate, p.Duration, text),
			Brief:    p.Brief,
		})
	}
	return r.execute(TimelineID, "timeline", text, view, len(items))
}

// Personal renders the page header with name, title and summary.
func (r *Renderer) Personal(doc *content.Document, text i18n.Text) Fragment {
	info, err := content.DecodePersonal(doc)
	if err != nil || (info.Name == "" && info.Title == "" && info.Summary == "") {
		return r.placeholder(PersonalID, text)
	}
	view := struct {
		Text    i18n.Text
		Name    string
		Title   string
		Photo   string
		Summary template.HTML
	}{
		Text:    text,
		Name:    orNA(info.Name, text),
		Title:   info.Title,
		Photo:   info.Photo,
		Summary: r.RichText(info.Summary),
	}
	return r.execute(PersonalID, "personal", text, view, 1)
}

type contactLink struct {
	Kind     string
	Label    string
	URL      string
	External bool
}

// Contact renders contact details and social links. Empty channels are omitted.
func (r *Renderer) Contact(doc *content.Document, text i18n.Text) Fragment {
	info, err := content.DecodePersonal(doc)
	if err != nil {
		return r.placeholder(ContactID, text)
	}
	c := info.Contact
	var links []contactLink
	for _, l := range []contactLink{
		{Kind: "email", Label: c.Email, URL: mailto(c.Email)},
		{Kind: "phone", Label: c.Phone, URL: tel(c.Phone)},
		{Kind: "location", Label: c.Location},
		{Kind: "website", Label: c.Website, URL: c.Website},
		{Kind: "linkedin", Label: "LinkedIn", URL: c.LinkedIn},
		{Kind: "xing", Label: "XING", URL: c.Xing},
		{Kind: "github", Label: "GitHub", URL: c.GitHub},
		{Kind: "twitter", Label: "Twitter", URL: c.Twitter},
	} {
		switch l.Kind {
		case "email", "phone", "location", "website":
			if l.Label == "" {
				continue
			}
		default:
			if l.URL == "" {
				continue
			}
		}
		l.External = l.Kind != "email" && l.Kind != "phone"
		links = append(links, l)
	}
	if len(links) == 0 {
		return r.placeholder(ContactID, text)
	}
	view := struct {
		Text  i18n.Text
		Name  string
		Links []contactLink
	}{Text: text, Name: info.Name, Links: links}
	return r.execute(ContactID, "contact", text, view, len(links))
}

func mailto(email string) string {
	if email == "" {
		return ""
	}
	return "mailto:" + email
}

func tel(phone string) string {
	if phone == "" {
		return ""
	}
	out := make([]rune, 0, len(phone))
	for _, r := range phone {
		if r == '+' || (r >= '0' && r <= '9') {
			out = append(out, r)
		}
	}
	return "tel:" + string(out)
}

type starView struct {
	Situation string
	Target    string
	Actions   template.HTML
	Result    string
}

// CareerDetail renders the detail page body of the position addressed by key.
// found is false when the document loaded but holds no such position.
func (r *Renderer) CareerDetail(doc *content.Document, key string, text i18n.Text) (frag Fragment, found bool) {
	items, err := CareerPositions(doc)
	if err != nil {
		return r.placeholder("career-detail", text), false
	}
	p, ok := content.FindCareer(items, key)
	if !ok {
		return r.placeholder("career-detail", text), false
	}
	view := struct {
		Text         i18n.Text
		HomeURL      string
		Company      string
		Position     string
		Logo         string
		Period       string
		Brief        string
		Scope        template.HTML
		Achievements []string
		Stars        []starView
	}{
		Text:         text,
		HomeURL:      r.prefix(text.Lang) + "/",
		Company:      orNA(p.Company, text),
		Position:     orNA(p.Position, text),
		Logo:         p.Logo,
		Period:       r.period(p.StartDate, p.EndDate, p.Duration, text),
		Brief:        p.Brief,
		Scope:        r.RichText(p.Details.Scope),
		Achievements: p.Details.Achievements,
	}
	for _, s := range p.Details.StarExamples {
		view.Stars = append(view.Stars, starView{
			Situation: orNA(s.Situation, text),
			Target:    orNA(s.Target, text),
			Actions:   r.RichText(s.Actions),
			Result:    orNA(s.Result, text),
		})
	}
	return r.execute("career-detail", "career_detail", text, view, 1), true
}

// EducationDetail renders the detail page body of the education entry addressed by key.
func (r *Renderer) EducationDetail(doc *content.Document, key string, text i18n.Text) (frag Fragment, found bool) {
	items, err := EducationEntries(doc)
	if err != nil {
		return r.placeholder("education-detail", text), false
	}
	e, ok := content.FindEducation(items, key)
	if !ok {
		return r.placeholder("education-detail", text), false
	}
	view := struct {
		Text          i18n.Text
		HomeURL       string
		Institution   string
		Qualification string
		Location      string
		Period        string
		Course        string
		Description   template.HTML
		Grade         string
	}{
		Text:          text,
		HomeURL:       r.prefix(text.Lang) + "/",
		Institution:   orNA(e.Institution, text),
		Qualification: orNA(e.Qualification, text),
		Location:      e.Location,
		Period:        r.period(e.StartDate, e.EndDate, e.Duration, text),
		Course:        e.Details.Course,
		Description:   r.RichText(e.Details.Description),
		Grade:         e.Details.Grade,
	}
	return r.execute("education-detail", "education_detail", text, view, 1), true
}
