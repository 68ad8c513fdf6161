package i18n

import (
	"sync"
)

// StorageKey is the key under which the selected language is persisted.
const StorageKey = "preferred_language"

// Storage is the client-held key/value store backing a Preference.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// Listener is notified after the stored language changed.
type Listener func(Code)

// Preference resolves and persists the active language of one visitor.
//
// Resolution order: stored value, browser locale, Default. Every successful step
// writes its result back to storage, so resolving an empty storage persists a value.
type Preference struct {
	storage Storage
	locale  string

	mu        sync.Mutex
	current   Code
	listeners []listenerEntry
	nextID    int
}

type listenerEntry struct {
	id int
	fn Listener
}

// PreferenceOption customises a Preference.
type PreferenceOption func(*Preference)

// WithBrowserLocale supplies the browser-reported locale, either a single tag
// ("de-CH") or a full Accept-Language header.
func WithBrowserLocale(locale string) PreferenceOption {
	return func(p *Preference) {
		p.locale = locale
	}
}

// NewPreference binds a Preference to storage. A nil storage keeps values in memory.
func NewPreference(storage Storage, opts ...PreferenceOption) *Preference {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	p := &Preference{storage: storage}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve returns the active language, consulting storage first.
func (p *Preference) Resolve() Code {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolveLocked()
}

func (p *Preference) resolveLocked() Code {
	if raw, ok := p.storage.Get(StorageKey); ok {
		if c, ok := Parse(raw); ok {
			p.current = c
			return c
		}
	}
	if c, ok := FromAcceptLanguage(p.locale); ok {
		p.storage.Set(StorageKey, string(c))
		p.current = c
		return c
	}
	p.storage.Set(StorageKey, string(Default))
	p.current = Default
	return Default
}

// Current returns the last resolved or set language without touching storage.
// It resolves on first use.
func (p *Preference) Current() Code {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == "" {
		return p.resolveLocked()
	}
	return p.current
}

// Set stores code as the active language. Unsupported codes return false and leave
// state untouched. Selecting the already active language persists it again but does
// not notify listeners.
func (p *Preference) Set(code string) bool {
	c, ok := Parse(code)
	if !ok {
		return false
	}
	p.mu.Lock()
	if p.current == "" {
		p.resolveLocked()
	}
	prev := p.current
	p.storage.Set(StorageKey, string(c))
	p.current = c
	if prev == c {
		p.mu.Unlock()
		return true
	}
	listeners := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l.fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
	return true
}

// OnChange registers fn and returns a function removing it again.
func (p *Preference) OnChange(fn Listener) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.listeners = append(p.listeners, listenerEntry{id: id, fn: fn})
	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			for i, l := range p.listeners {
				if l.id == id {
					p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// MemoryStorage is an in-process Storage, safe for concurrent use.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStorage) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}
