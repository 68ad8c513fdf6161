package content

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"finitefield.org/cv-web/internal/i18n"
)

// Store fetches, parses and caches content documents. Parsed files stay cached
// until ClearCache; failures are never cached. Safe for concurrent use.
type Store struct {
	source   Source
	strategy Strategy
	logger   *zap.Logger

	mu    sync.RWMutex
	items map[string]*yaml.Node
	group singleflight.Group
}

// Option customises a Store.
type Option func(*Store)

// WithStrategy sets the loading strategy. The default is PerLanguage.
func WithStrategy(s Strategy) Option {
	return func(st *Store) {
		if s != "" {
			st.strategy = s
		}
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(st *Store) {
		if l != nil {
			st.logger = l
		}
	}
}

// NewStore builds a Store reading from src.
func NewStore(src Source, opts ...Option) *Store {
	s := &Store{
		source:   src,
		strategy: PerLanguage,
		logger:   zap.NewNop(),
		items:    map[string]*yaml.Node{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Strategy returns the loading strategy in use.
func (s *Store) Strategy() Strategy { return s.strategy }

// Fetch returns the document name for lang. Errors are *FetchError or *ParseError
// and have already been logged; callers treat them as "section unavailable".
func (s *Store) Fetch(ctx context.Context, name Name, lang i18n.Code) (*Document, error) {
	path := s.strategy.Path(name, lang)
	key := s.strategy.CacheKey(name, lang)

	root, err := s.load(ctx, key, path)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			err = &ParseError{Name: name, Lang: lang, Path: path, Err: perr.Err}
		} else {
			err = &FetchError{Name: name, Lang: lang, Path: path, Err: err}
		}
		s.logger.Warn("content fetch failed",
			zap.String("document", string(name)),
			zap.String("lang", string(lang)),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	node, err := s.strategy.narrow(name, lang, root)
	if err != nil {
		err = &ParseError{Name: name, Lang: lang, Path: path, Err: err}
		s.logger.Warn("content section missing",
			zap.String("document", string(name)),
			zap.String("lang", string(lang)),
			zap.Error(err),
		)
		return nil, err
	}
	doc := &Document{Name: name, node: node}
	if s.strategy.LanguageScoped(name) {
		doc.Language = lang
	}
	return doc, nil
}

func (s *Store) load(ctx context.Context, key, path string) (*yaml.Node, error) {
	if root, ok := s.cached(key); ok {
		return root, nil
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		if root, ok := s.cached(key); ok {
			return root, nil
		}
		raw, err := s.source.Read(ctx, path)
		if err != nil {
			return nil, err
		}
		root, err := parseRoot(raw)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		s.mu.Lock()
		s.items[key] = root
		s.mu.Unlock()
		return root, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*yaml.Node), nil
}

func (s *Store) cached(key string) (*yaml.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	root, ok := s.items[key]
	return root, ok
}

// ClearCache drops the given cache keys, or everything when called without keys.
func (s *Store) ClearCache(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(keys) == 0 {
		s.items = map[string]*yaml.Node{}
		return
	}
	for _, k := range keys {
		delete(s.items, k)
	}
}

// CachedKeys reports how many entries are cached.
func (s *Store) CachedKeys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Set is the settled outcome of FetchAll. Each document is independently nil
// when its fetch failed.
type Set struct {
	Language i18n.Code
	Docs     map[Name]*Document
	Errors   map[Name]error
}

// Get returns the document or nil.
func (s Set) Get(name Name) *Document {
	return s.Docs[name]
}

// Err returns the failure for name, if any.
func (s Set) Err(name Name) error {
	return s.Errors[name]
}

// FetchAll fetches names concurrently and returns once every fetch settled.
func (s *Store) FetchAll(ctx context.Context, lang i18n.Code, names ...Name) Set {
	if len(names) == 0 {
		names = Documents
	}
	docs := make([]*Document, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			docs[i], errs[i] = s.Fetch(ctx, name, lang)
			return nil
		})
	}
	_ = g.Wait()

	set := Set{Language: lang, Docs: make(map[Name]*Document, len(names)), Errors: map[Name]error{}}
	for i, name := range names {
		set.Docs[name] = docs[i]
		if errs[i] != nil {
			set.Errors[name] = errs[i]
		}
	}
	return set
}
