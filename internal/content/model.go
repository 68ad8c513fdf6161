package content

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"finitefield.org/cv-web/internal/format"
)

// CareerPosition is one entry of the career document.
type CareerPosition struct {
	slug      string
	ID        string
	Company   string
	Logo      string
	Position  string
	StartDate string
	EndDate   string
	Duration  string
	Brief     string
	Details   CareerDetails
}

// CareerDetails holds the detail page content of a position.
type CareerDetails struct {
	Scope        string
	Achievements []string
	StarExamples []StarExample
}

// StarExample is a situation/target/actions/result story.
type StarExample struct {
	Situation string
	Target    string
	Actions   string
	Result    string
}

// Start returns the sortable start date, falling back to the leading part of Duration.
func (p CareerPosition) Start() (time.Time, bool) {
	if t, ok := ParseDate(p.StartDate); ok {
		return t, true
	}
	return ParseDate(startOfDuration(p.Duration))
}

// Slug returns the slug assigned when the document was decoded. It is unique
// within the document; entries built by hand fall back to the explicit id or a
// slug derived from company and position.
func (p CareerPosition) Slug() string {
	if p.slug != "" {
		return p.slug
	}
	return baseSlug(p.ID, p.alias())
}

func (p CareerPosition) alias() string {
	return format.Slugify(p.Company + " " + p.Position)
}

// EducationEntry is one entry of the education document.
type EducationEntry struct {
	slug          string
	ID            string
	Institution   string
	Qualification string
	Logo          string
	Location      string
	StartDate     string
	EndDate       string
	Duration      string
	Details       EducationDetails
}

// EducationDetails holds the detail page content of an education entry.
type EducationDetails struct {
	Course      string
	Description string
	Diploma     string
	Grade       string
}

func (e EducationEntry) Start() (time.Time, bool) {
	if t, ok := ParseDate(e.StartDate); ok {
		return t, true
	}
	return ParseDate(startOfDuration(e.Duration))
}

func (e EducationEntry) Slug() string {
	if e.slug != "" {
		return e.slug
	}
	return baseSlug(e.ID, e.alias())
}

func (e EducationEntry) alias() string {
	return format.Slugify(e.Institution + " " + e.Qualification)
}

// SkillCategory groups skills such as hard, soft or IT skills.
type SkillCategory struct {
	Key   string
	Title string
	Items []SkillItem
}

// SkillItem is a named skill with a raw level on the 0..6 scale. Out of range
// levels are kept as authored and clamped when rendered. A level that is not a
// number leaves Level at 0 and keeps the authored text in InvalidLevel.
type SkillItem struct {
	Name         string
	Level        float64
	InvalidLevel string
}

// Project is one entry of the projects document.
type Project struct {
	slug         string
	ID           string
	Name         string
	Description  string
	URL          string
	Image        string
	Date         string
	Technologies []string
}

func (p Project) Slug() string {
	if p.slug != "" {
		return p.slug
	}
	return baseSlug(p.ID, format.Slugify(p.Name))
}

// PersonalInfo is the personal document.
type PersonalInfo struct {
	Name          string
	Title         string
	Summary       string
	Photo         string
	FeedbackEmail string
	Contact       Contact
}

// Contact lists contact channels; empty fields are omitted when rendered.
type Contact struct {
	Email    string
	Phone    string
	Location string
	Website  string
	LinkedIn string
	Xing     string
	GitHub   string
	Twitter  string
}

type rawCareer struct {
	ID          string            `yaml:"id"`
	Company     string            `yaml:"company"`
	CompanyName string            `yaml:"companyName"`
	Logo        string            `yaml:"logo"`
	CompanyLogo string            `yaml:"companyLogo"`
	Position    string            `yaml:"position"`
	Title       string            `yaml:"title"`
	StartDate   string            `yaml:"start_date"`
	StartCamel  string            `yaml:"startDate"`
	EndDate     string            `yaml:"end_date"`
	EndCamel    string            `yaml:"endDate"`
	Duration    string            `yaml:"duration"`
	Brief       string            `yaml:"brief"`
	Description string            `yaml:"description"`
	Details     *rawCareerDetails `yaml:"details"`
}

type rawCareerDetails struct {
	Scope        string   `yaml:"scope"`
	Achievements []string `yaml:"achievements"`
	StarExamples []struct {
		Situation string `yaml:"situation"`
		Target    string `yaml:"target"`
		Task      string `yaml:"task"`
		Actions   string `yaml:"actions"`
		Action    string `yaml:"action"`
		Result    string `yaml:"result"`
	} `yaml:"star_examples"`
}

// DecodeCareer decodes the positions of a career document in document order.
func DecodeCareer(doc *Document) ([]CareerPosition, error) {
	var raw []*rawCareer
	if err := decodeList(doc, &raw, "career", "positions", "items"); err != nil {
		return nil, err
	}
	out := make([]CareerPosition, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		p := CareerPosition{
			ID:        strings.TrimSpace(r.ID),
			Company:   firstNonEmpty(r.Company, r.CompanyName),
			Logo:      firstNonEmpty(r.Logo, r.CompanyLogo),
			Position:  firstNonEmpty(r.Position, r.Title),
			StartDate: firstNonEmpty(r.StartDate, r.StartCamel),
			EndDate:   firstNonEmpty(r.EndDate, r.EndCamel),
			Duration:  strings.TrimSpace(r.Duration),
			Brief:     firstNonEmpty(r.Brief, r.Description),
		}
		if d := r.Details; d != nil {
			p.Details.Scope = strings.TrimSpace(d.Scope)
			p.Details.Achievements = trimAll(d.Achievements)
			for _, s := range d.StarExamples {
				p.Details.StarExamples = append(p.Details.StarExamples, StarExample{
					Situation: strings.TrimSpace(s.Situation),
					Target:    firstNonEmpty(s.Target, s.Task),
					Actions:   firstNonEmpty(s.Actions, s.Action),
					Result:    strings.TrimSpace(s.Result),
				})
			}
		}
		out = append(out, p)
	}
	slugs := uniqueSlugs(len(out), "position", func(i int) string { return baseSlug(out[i].ID, out[i].alias()) })
	for i := range out {
		out[i].slug = slugs[i]
	}
	return out, nil
}

type rawEducation struct {
	ID             string `yaml:"id"`
	Institution    string `yaml:"institution"`
	Name           string `yaml:"name"`
	School         string `yaml:"school"`
	Qualification  string `yaml:"qualification"`
	Degree         string `yaml:"degree"`
	Diploma        string `yaml:"diploma"`
	Logo           string `yaml:"logo"`
	Location       string `yaml:"location"`
	StartDate      string `yaml:"start_date"`
	StartCamel     string `yaml:"startDate"`
	EndDate        string `yaml:"end_date"`
	EndCamel       string `yaml:"endDate"`
	GraduationDate string `yaml:"graduationDate"`
	Time           string `yaml:"time"`
	Duration       string `yaml:"duration"`
	Details        *struct {
		Course      string `yaml:"course"`
		Description string `yaml:"description"`
		Diploma     string `yaml:"diploma"`
		Grade       string `yaml:"grade"`
	} `yaml:"details"`
}

// DecodeEducation decodes the entries of an education document in document order.
func DecodeEducation(doc *Document) ([]EducationEntry, error) {
	var raw []*rawEducation
	if err := decodeList(doc, &raw, "academic", "education", "institutions", "items"); err != nil {
		return nil, err
	}
	out := make([]EducationEntry, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		e := EducationEntry{
			ID:            strings.TrimSpace(r.ID),
			Institution:   firstNonEmpty(r.Institution, r.Name, r.School),
			Qualification: firstNonEmpty(r.Qualification, r.Degree, r.Diploma),
			Logo:          strings.TrimSpace(r.Logo),
			Location:      strings.TrimSpace(r.Location),
			StartDate:     firstNonEmpty(r.StartDate, r.StartCamel),
			EndDate:       firstNonEmpty(r.EndDate, r.EndCamel, r.GraduationDate),
			Duration:      firstNonEmpty(r.Time, r.Duration),
		}
		if d := r.Details; d != nil {
			e.Details = EducationDetails{
				Course:      strings.TrimSpace(d.Course),
				Description: strings.TrimSpace(d.Description),
				Diploma:     strings.TrimSpace(d.Diploma),
				Grade:       strings.TrimSpace(d.Grade),
			}
			if e.Qualification == "" {
				e.Qualification = e.Details.Diploma
			}
		}
		out = append(out, e)
	}
	slugs := uniqueSlugs(len(out), "education", func(i int) string { return baseSlug(out[i].ID, out[i].alias()) })
	for i := range out {
		out[i].slug = slugs[i]
	}
	return out, nil
}

type rawSkill struct {
	Name        string    `yaml:"name"`
	Level       yaml.Node `yaml:"level"`
	Proficiency yaml.Node `yaml:"proficiency"`
}

// DecodeSkills decodes skill categories in document order. A category is either a
// mapping with title and items or a bare list of items. Items are decoded one by
// one so a malformed entry only affects itself.
func DecodeSkills(doc *Document) ([]SkillCategory, error) {
	if doc == nil || doc.node == nil {
		return nil, fmt.Errorf("content: nil document")
	}
	root := doc.node
	if inner := mappingValue(root, "skills"); inner != nil && inner.Kind == yaml.MappingNode {
		root = inner
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("content: skills: expected mapping, got %s", kindName(root.Kind))
	}
	var out []SkillCategory
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]
		cat := SkillCategory{Key: categoryKey(key)}
		list := val
		if val.Kind == yaml.MappingNode {
			if t := mappingValue(val, "title"); t != nil && t.Kind == yaml.ScalarNode {
				cat.Title = strings.TrimSpace(t.Value)
			}
			list = mappingValue(val, "items")
		}
		if list == nil || list.Kind != yaml.SequenceNode {
			continue
		}
		for _, n := range list.Content {
			if item, ok := decodeSkill(n); ok {
				cat.Items = append(cat.Items, item)
			}
		}
		out = append(out, cat)
	}
	return out, nil
}

func decodeSkill(n *yaml.Node) (SkillItem, bool) {
	if n.Kind == yaml.ScalarNode {
		name := strings.TrimSpace(n.Value)
		return SkillItem{Name: name}, name != ""
	}
	var raw rawSkill
	if err := n.Decode(&raw); err != nil {
		return SkillItem{}, false
	}
	item := SkillItem{Name: strings.TrimSpace(raw.Name)}
	level := &raw.Level
	if level.Kind == 0 {
		level = &raw.Proficiency
	}
	if level.Kind == 0 || level.ShortTag() == "!!null" {
		return item, true
	}
	v := strings.TrimSpace(level.Value)
	f, err := strconv.ParseFloat(v, 64)
	if level.Kind != yaml.ScalarNode || err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		item.InvalidLevel = v
		if level.Kind != yaml.ScalarNode {
			item.InvalidLevel = kindName(level.Kind)
		}
		return item, true
	}
	item.Level = f
	return item, true
}

// categoryKey maps "hardSkills", "hard_skills" and "hard" to "hard".
func categoryKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.TrimSuffix(k, "_skills")
	k = strings.TrimSuffix(k, "skills")
	k = strings.Trim(k, "_- ")
	if k == "" {
		return strings.ToLower(strings.TrimSpace(key))
	}
	return k
}

type rawProject struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	URL          string   `yaml:"url"`
	Link         string   `yaml:"link"`
	Image        string   `yaml:"image"`
	Date         string   `yaml:"date"`
	Technologies []string `yaml:"technologies"`
	Tags         []string `yaml:"tags"`
}

// DecodeProjects decodes the projects document.
func DecodeProjects(doc *Document) ([]Project, error) {
	var raw []*rawProject
	if err := decodeList(doc, &raw, "projects", "items"); err != nil {
		return nil, err
	}
	out := make([]Project, 0, len(raw))
	for _, r := range raw {
		if r == nil {
			continue
		}
		tech := r.Technologies
		if len(tech) == 0 {
			tech = r.Tags
		}
		out = append(out, Project{
			ID:           strings.TrimSpace(r.ID),
			Name:         firstNonEmpty(r.Name, r.Title),
			Description:  strings.TrimSpace(r.Description),
			URL:          firstNonEmpty(r.URL, r.Link),
			Image:        strings.TrimSpace(r.Image),
			Date:         strings.TrimSpace(r.Date),
			Technologies: trimAll(tech),
		})
	}
	slugs := uniqueSlugs(len(out), "project", func(i int) string { return baseSlug(out[i].ID, format.Slugify(out[i].Name)) })
	for i := range out {
		out[i].slug = slugs[i]
	}
	return out, nil
}

type rawContact struct {
	Email    string `yaml:"email"`
	Phone    string `yaml:"phone"`
	Location string `yaml:"location"`
	Website  string `yaml:"website"`
	LinkedIn string `yaml:"linkedin"`
	Xing     string `yaml:"xing"`
	GitHub   string `yaml:"github"`
	Twitter  string `yaml:"twitter"`
	Social   *struct {
		LinkedIn string `yaml:"linkedin"`
		Xing     string `yaml:"xing"`
		GitHub   string `yaml:"github"`
		Twitter  string `yaml:"twitter"`
	} `yaml:"social"`
}

// DecodePersonal decodes the personal document. Contact fields may sit at the top
// level or below "contact".
func DecodePersonal(doc *Document) (PersonalInfo, error) {
	if doc == nil || doc.node == nil {
		return PersonalInfo{}, fmt.Errorf("content: nil document")
	}
	var raw struct {
		rawContact    `yaml:",inline"`
		Name          string      `yaml:"name"`
		Title         string      `yaml:"title"`
		Summary       string      `yaml:"summary"`
		Photo         string      `yaml:"photo"`
		Image         string      `yaml:"image"`
		FeedbackEmail string      `yaml:"feedback_email"`
		Contact       *rawContact `yaml:"contact"`
	}
	if err := doc.node.Decode(&raw); err != nil {
		return PersonalInfo{}, fmt.Errorf("content: personal: %w", err)
	}
	c := raw.rawContact
	if raw.Contact != nil {
		c = mergeContact(*raw.Contact, c)
	}
	info := PersonalInfo{
		Name:          strings.TrimSpace(raw.Name),
		Title:         strings.TrimSpace(raw.Title),
		Summary:       strings.TrimSpace(raw.Summary),
		Photo:         firstNonEmpty(raw.Photo, raw.Image),
		FeedbackEmail: strings.TrimSpace(raw.FeedbackEmail),
		Contact: Contact{
			Email:    strings.TrimSpace(c.Email),
			Phone:    strings.TrimSpace(c.Phone),
			Location: strings.TrimSpace(c.Location),
			Website:  strings.TrimSpace(c.Website),
			LinkedIn: strings.TrimSpace(c.LinkedIn),
			Xing:     strings.TrimSpace(c.Xing),
			GitHub:   strings.TrimSpace(c.GitHub),
			Twitter:  strings.TrimSpace(c.Twitter),
		},
	}
	if s := c.Social; s != nil {
		info.Contact.LinkedIn = firstNonEmpty(info.Contact.LinkedIn, s.LinkedIn)
		info.Contact.Xing = firstNonEmpty(info.Contact.Xing, s.Xing)
		info.Contact.GitHub = firstNonEmpty(info.Contact.GitHub, s.GitHub)
		info.Contact.Twitter = firstNonEmpty(info.Contact.Twitter, s.Twitter)
	}
	return info, nil
}

func mergeContact(primary, secondary rawContact) rawContact {
	primary.Email = firstNonEmpty(primary.Email, secondary.Email)
	primary.Phone = firstNonEmpty(primary.Phone, secondary.Phone)
	primary.Location = firstNonEmpty(primary.Location, secondary.Location)
	primary.Website = firstNonEmpty(primary.Website, secondary.Website)
	primary.LinkedIn = firstNonEmpty(primary.LinkedIn, secondary.LinkedIn)
	primary.Xing = firstNonEmpty(primary.Xing, secondary.Xing)
	primary.GitHub = firstNonEmpty(primary.GitHub, secondary.GitHub)
	primary.Twitter = firstNonEmpty(primary.Twitter, secondary.Twitter)
	if primary.Social == nil {
		primary.Social = secondary.Social
	}
	return primary
}

// DecodeUIText decodes a ui_text document into key -> text. Non-scalar values
// are skipped.
func DecodeUIText(doc *Document) (map[string]string, error) {
	if doc == nil || doc.node == nil {
		return nil, fmt.Errorf("content: nil document")
	}
	root := doc.node
	if inner := mappingValue(root, "ui_text"); inner != nil && inner.Kind == yaml.MappingNode {
		root = inner
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("content: ui_text: expected mapping, got %s", kindName(root.Kind))
	}
	out := make(map[string]string, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		if v := root.Content[i+1]; v.Kind == yaml.ScalarNode {
			out[root.Content[i].Value] = v.Value
		}
	}
	return out, nil
}

// FindCareer returns the position addressed by key. Unique slugs are tried
// first, then the slug derived from company and position.
func FindCareer(items []CareerPosition, key string) (CareerPosition, bool) {
	return find(items, key)
}

// FindEducation returns the entry addressed by key, like FindCareer.
func FindEducation(items []EducationEntry, key string) (EducationEntry, bool) {
	return find(items, key)
}

type addressable interface {
	Slug() string
	alias() string
}

func find[T addressable](items []T, key string) (T, bool) {
	var zero T
	key = format.Slugify(key)
	if key == "" {
		return zero, false
	}
	for _, it := range items {
		if it.Slug() == key {
			return it, true
		}
	}
	for _, it := range items {
		if it.alias() == key {
			return it, true
		}
	}
	return zero, false
}

func baseSlug(id, derived string) string {
	if s := format.Slugify(id); s != "" {
		return s
	}
	return derived
}

// uniqueSlugs makes the n slugs returned by base unique in order. The first
// entry keeps its slug, later duplicates get -2, -3 and so on, skipping any
// value another entry already uses. Empty slugs use fallback.
func uniqueSlugs(n int, fallback string, base func(i int) string) []string {
	bases := make([]string, n)
	out := make([]string, n)
	taken := make(map[string]bool, n)
	for i := range bases {
		bases[i] = base(i)
		if bases[i] == "" {
			bases[i] = fallback
		}
		if !taken[bases[i]] {
			taken[bases[i]] = true
			out[i] = bases[i]
		}
	}
	for i, b := range bases {
		if out[i] != "" {
			continue
		}
		for k := 2; ; k++ {
			if c := fmt.Sprintf("%s-%d", b, k); !taken[c] {
				taken[c] = true
				out[i] = c
				break
			}
		}
	}
	return out
}

// decodeList accepts a bare sequence or a mapping holding the sequence under one
// of keys.
func decodeList(doc *Document, out any, keys ...string) error {
	if doc == nil || doc.node == nil {
		return fmt.Errorf("content: nil document")
	}
	node := doc.node
	if node.Kind == yaml.MappingNode {
		var found *yaml.Node
		for _, k := range keys {
			if v := mappingValue(node, k); v != nil && v.Kind == yaml.SequenceNode {
				found = v
				break
			}
		}
		if found == nil {
			return fmt.Errorf("content: %s: no list under %s", doc.Name, strings.Join(keys, ", "))
		}
		node = found
	}
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("content: %s: expected list, got %s", doc.Name, kindName(node.Kind))
	}
	if err := node.Decode(out); err != nil {
		return fmt.Errorf("content: %s: %w", doc.Name, err)
	}
	return nil
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
