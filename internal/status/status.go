// Package status summarises which content documents load for which language.
package status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"finitefield.org/cv-web/internal/content"
	"finitefield.org/cv-web/internal/i18n"
)

// States of a language or of the whole site.
const (
	StateOperational = "operational"
	StateDegraded    = "degraded"
	StateOutage      = "outage"
)

// Component statuses.
const (
	StatusLoaded  = "loaded"
	StatusMissing = "missing"
	StatusInvalid = "invalid"
	StatusFailed  = "failed"
)

// Summary captures the load state of every document for every language.
type Summary struct {
	State     string           `json:"state"`
	Strategy  string           `json:"strategy"`
	UpdatedAt time.Time        `json:"updated_at"`
	Languages []LanguageStatus `json:"languages"`
}

// LanguageStatus is the outcome of loading all documents for one language.
type LanguageStatus struct {
	Language   string      `json:"language"`
	State      string      `json:"state"`
	Components []Component `json:"components"`
}

// Component is the outcome for a single document.
type Component struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// OK reports whether every document loaded.
func (s Summary) OK() bool { return s.State == StateOperational }

// Failures counts components that did not load.
func (s Summary) Failures() int {
	n := 0
	for _, l := range s.Languages {
		for _, c := range l.Components {
			if c.Status != StatusLoaded {
				n++
			}
		}
	}
	return n
}

// WriteText prints the summary as aligned plain text.
func (s Summary) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "content status: %s (strategy %s)\n", s.State, s.Strategy); err != nil {
		return err
	}
	for _, l := range s.Languages {
		if _, err := fmt.Fprintf(w, "[%s] %s\n", l.Language, l.State); err != nil {
			return err
		}
		for _, c := range l.Components {
			line := fmt.Sprintf("  %-10s %-8s %s", c.Name, c.Status, c.Path)
			if c.Error != "" {
				line += "  " + c.Error
			}
			if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
				return err
			}
		}
	}
	return nil
}

// Build derives a summary from settled fetch results.
func Build(strategy content.Strategy, sets []content.Set, now time.Time) Summary {
	summary := Summary{Strategy: string(strategy), UpdatedAt: now, State: StateOperational}
	outages := 0
	for _, set := range sets {
		ls := LanguageStatus{Language: set.Language.String(), State: StateOperational}
		failed := 0
		criticalFailed := 0
		for _, name := range content.Documents {
			c := Component{Name: string(name), Path: strategy.Path(name, set.Language), Status: StatusLoaded}
			if err := set.Err(name); err != nil {
				c.Status = classify(err)
				c.Error = err.Error()
			} else if set.Get(name) == nil {
				c.Status = StatusFailed
			}
			if c.Status != StatusLoaded {
				failed++
				if isCritical(name) {
					criticalFailed++
				}
			}
			ls.Components = append(ls.Components, c)
		}
		switch {
		case criticalFailed == len(content.Critical):
			ls.State = StateOutage
			outages++
		case failed > 0:
			ls.State = StateDegraded
		}
		if ls.State != StateOperational {
			summary.State = StateDegraded
		}
		summary.Languages = append(summary.Languages, ls)
	}
	if len(sets) > 0 && outages == len(sets) {
		summary.State = StateOutage
	}
	return summary
}

func classify(err error) string {
	var parseErr *content.ParseError
	switch {
	case errors.Is(err, content.ErrNotFound):
		return StatusMissing
	case errors.As(err, &parseErr):
		return StatusInvalid
	default:
		return StatusFailed
	}
}

func isCritical(name content.Name) bool {
	for _, c := range content.Critical {
		if c == name {
			return true
		}
	}
	return false
}

// Checker loads every document for every supported language and caches the
// resulting summary for a short time.
type Checker struct {
	store *content.Store
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	cached  Summary
	expires time.Time
}

// NewChecker returns a Checker. A non-positive ttl disables caching.
func NewChecker(store *content.Store, ttl time.Duration) *Checker {
	return &Checker{store: store, ttl: ttl, now: time.Now}
}

// Check returns the cached summary or loads a fresh one.
func (c *Checker) Check(ctx context.Context) Summary {
	c.mu.Lock()
	if c.ttl > 0 && !c.expires.IsZero() && c.now().Before(c.expires) {
		s := c.cached
		c.mu.Unlock()
		return s
	}
	c.mu.Unlock()

	langs := i18n.Supported()
	sets := make([]content.Set, len(langs))
	var g errgroup.Group
	for i, lang := range langs {
		g.Go(func() error {
			sets[i] = c.store.FetchAll(ctx, lang)
			return nil
		})
	}
	_ = g.Wait()

	now := c.now()
	s := Build(c.store.Strategy(), sets, now)

	c.mu.Lock()
	c.cached = s
	c.expires = now.Add(c.ttl)
	c.mu.Unlock()
	return s
}

// Invalidate drops the cached summary.
func (c *Checker) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expires = time.Time{}
}
