package render

import (
	"html/template"
	"math"
	"strconv"
	"strings"
)

// MaxLevel is the top of the skill scale.
const MaxLevel = 6

// ClampLevel bounds level to [0, MaxLevel]. NaN counts as 0.
func ClampLevel(level float64) float64 {
	if math.IsNaN(level) || level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// Stars returns the filled and empty symbol counts for level.
func Stars(level float64) (filled, empty int) {
	filled = int(math.Round(ClampLevel(level)))
	return filled, MaxLevel - filled
}

// Percent returns the bar width for level in [0, 100].
func Percent(level float64) float64 {
	return ClampLevel(level) / MaxLevel * 100
}

type skillView struct {
	Name    string
	Level   string
	Filled  string
	Empty   string
	Percent string
	Style   template.CSS
}

func newSkillView(name string, level float64, na string) skillView {
	if strings.TrimSpace(name) == "" {
		name = na
	}
	filled, empty := Stars(level)
	pct := strconv.FormatFloat(Percent(level), 'f', 1, 64)
	pct = strings.TrimSuffix(pct, ".0")
	return skillView{
		Name:    name,
		Level:   strconv.FormatFloat(ClampLevel(level), 'f', -1, 64),
		Filled:  strings.Repeat("★", filled),
		Empty:   strings.Repeat("☆", empty),
		Percent: pct + "%",
		Style:   template.CSS("width: " + pct + "%"),
	}
}
