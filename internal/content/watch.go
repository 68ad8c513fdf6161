package content

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"finitefield.org/cv-web/internal/i18n"
)

// Watch clears cache entries whenever the matching file below dir changes.
// It blocks until ctx is done.
func (s *Store) Watch(ctx context.Context, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("content: watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("content: watch %s: %w", dir, err)
	}
	s.logger.Info("watching content directory", zap.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if key, ok := s.handleEvent(ev); ok {
				s.ClearCache(key)
				s.logger.Info("content changed", zap.String("file", filepath.Base(ev.Name)), zap.String("cache_key", key))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("content watcher error", zap.Error(err))
		}
	}
}

// handleEvent maps a file system event to the cache key it invalidates.
func (s *Store) handleEvent(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return "", false
	}
	return s.strategy.keyForFile(filepath.Base(ev.Name))
}

// keyForFile is the inverse of Path and CacheKey.
func (s Strategy) keyForFile(base string) (string, bool) {
	if strings.HasPrefix(base, ".") {
		return "", false
	}
	ext := filepath.Ext(base)
	if ext != ".yaml" && ext != ".yml" {
		return "", false
	}
	stem := strings.TrimSuffix(base, ext)
	for _, name := range Documents {
		if s == LanguageKeyed || name == Personal {
			if stem == string(name) && base == s.Path(name, "") {
				return s.CacheKey(name, ""), true
			}
			continue
		}
		for _, lang := range i18n.Supported() {
			if base == s.Path(name, lang) {
				return s.CacheKey(name, lang), true
			}
		}
	}
	return "", false
}
