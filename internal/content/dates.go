package content

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01",
	"2006/01/02",
	"2006-1-2",
	"01/2006",
	"1/2006",
	"Jan 2006",
	"January 2006",
	"2006",
}

// ParseDate parses the date formats found in CV documents. ok is false for
// empty or unrecognised values.
func ParseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// startOfDuration extracts the leading date from a free-form range such as
// "2019 - Present" or "03/2015 – 09/2018".
func startOfDuration(v string) string {
	v = strings.TrimSpace(v)
	for _, sep := range []string{" - ", " – ", " — ", " to ", " bis ", " à "} {
		if i := strings.Index(v, sep); i > 0 {
			return strings.TrimSpace(v[:i])
		}
	}
	return v
}
