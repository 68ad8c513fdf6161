package middleware

import (
	"net/http"
	"sync"
	"time"

	"finitefield.org/cv-web/internal/i18n"
)

// VaryLocale sets Vary header for Accept-Language on dynamic responses
func VaryLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// append to existing Vary if any
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}

// CookieStorage persists preference values as cookies of one request/response pair.
// Values written during the request are visible to later reads.
type CookieStorage struct {
	r      *http.Request
	w      http.ResponseWriter
	secure bool

	mu      sync.Mutex
	pending map[string]string
}

// NewCookieStorage binds storage to r and w.
func NewCookieStorage(w http.ResponseWriter, r *http.Request, secure bool) *CookieStorage {
	return &CookieStorage{r: r, w: w, secure: secure, pending: map[string]string{}}
}

func (s *CookieStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	v, ok := s.pending[key]
	s.mu.Unlock()
	if ok {
		return v, true
	}
	c, err := s.r.Cookie(key)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Set records value and emits a Set-Cookie header unless the request already
// carries the same value.
func (s *CookieStorage) Set(key, value string) {
	s.mu.Lock()
	prev, had := s.pending[key]
	s.pending[key] = value
	s.mu.Unlock()
	if had && prev == value {
		return
	}
	if !had {
		if c, err := s.r.Cookie(key); err == nil && c.Value == value {
			return
		}
	}
	http.SetCookie(s.w, &http.Cookie{
		Name:     key,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().AddDate(1, 0, 0),
	})
}

var _ i18n.Storage = (*CookieStorage)(nil)
