package nav

import (
	"path"
	"strings"

	"finitefield.org/cv-web/internal/format"
	"finitefield.org/cv-web/internal/i18n"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/timeline"
	LabelKey string // ui text key
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href   string
	Label  string
	Active bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Main is the primary navigation definition. Fragment links jump to sections
// of the home page.
var Main = []Item{
	{Path: "/", LabelKey: "home"},
	{Path: "/#career", LabelKey: "career_title"},
	{Path: "/#education", LabelKey: "academic_title"},
	{Path: "/#skills", LabelKey: "skills_title"},
	{Path: "/#projects", LabelKey: "projects_title"},
	{Path: "/timeline", LabelKey: "timeline_link_text"},
}

// sections maps detail path prefixes to their parent label and anchor.
var sections = map[string]Item{
	"career":    {Path: "/#career", LabelKey: "career_details_title"},
	"education": {Path: "/#education", LabelKey: "academic_details_title"},
	"timeline":  {Path: "/timeline", LabelKey: "timeline_page_title"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string, text i18n.Text) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:   it.Path,
			Label:  text.T(it.LabelKey),
			Active: isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if strings.Contains(itemPath, "#") {
		return false
	}
	if itemPath == "/" {
		return currentPath == "/"
	}
	// match exact or prefix boundary: "/timeline" or "/timeline/..."
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries from the current path. leaf, when set,
// labels the last segment instead of the prettified slug.
func Breadcrumbs(currentPath string, text i18n.Text, leaf string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", Label: text.T("home"), Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean(currentPath)
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	if parts[0] == "" {
		return crumbs
	}

	top, known := sections[parts[0]]
	label := format.Prettify(parts[0])
	href := "/" + parts[0]
	if known {
		label = text.T(top.LabelKey)
		href = top.Path
	}
	crumbs = append(crumbs, Crumb{Href: href, Label: label, Active: len(parts) == 1})

	for i := 1; i < len(parts); i++ {
		label := format.Prettify(parts[i])
		if i == len(parts)-1 && leaf != "" {
			label = leaf
		}
		crumbs = append(crumbs, Crumb{
			Href:   "/" + strings.Join(parts[:i+1], "/"),
			Label:  label,
			Active: i == len(parts)-1,
		})
	}
	return crumbs
}
