package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const (
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	// CSRFFormField carries the token in plain form posts.
	CSRFFormField = "csrf_token"
)

// CSRF issues a token cookie and verifies that unsafe requests echo it in the
// X-CSRF-Token header or the csrf_token form field (double submit cookie).
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(csrfCookieName); err == nil && len(c.Value) == 32 {
				token = c.Value
			}

			if !isSafeMethod(r.Method) {
				sent := r.Header.Get(csrfHeaderName)
				if sent == "" {
					sent = r.PostFormValue(CSRFFormField)
				}
				if token == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
					reject(w, r, http.StatusForbidden, "invalid CSRF token")
					return
				}
			}

			if token == "" {
				token = newCSRFToken()
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(24 * time.Hour),
				})
			}
			ctx := context.WithValue(r.Context(), csrfKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type errorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// reject answers a failed check. htmx callers get JSON with HX-Reswap: none so
// the error never replaces page content.
func reject(w http.ResponseWriter, r *http.Request, code int, msg string) {
	htmx := IsHTMX(r.Context())
	if !htmx && !strings.Contains(r.Header.Get("Accept"), "application/json") {
		http.Error(w, msg, code)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if htmx {
		w.Header().Set("HX-Reswap", "none")
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, Status: code})
}

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}
