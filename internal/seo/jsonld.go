package seo

import (
	"encoding/json"
)

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Person describes the CV owner.
type Person struct {
	Name     string
	JobTitle string
	URL      string
	Image    string
	Email    string
	SameAs   []string
}

// PersonSchema returns a schema.org Person payload.
func PersonSchema(p Person) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Person",
		"name":     p.Name,
	}
	if p.JobTitle != "" {
		m["jobTitle"] = p.JobTitle
	}
	if p.URL != "" {
		m["url"] = p.URL
	}
	if p.Image != "" {
		m["image"] = p.Image
	}
	if p.Email != "" {
		m["email"] = "mailto:" + p.Email
	}
	if len(p.SameAs) > 0 {
		m["sameAs"] = p.SameAs
	}
	return m
}

// WebSite returns a minimal WebSite schema.
func WebSite(name, url string, languages []string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if len(languages) > 0 {
		m["inLanguage"] = languages
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}
