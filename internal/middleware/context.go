package middleware

import (
	"context"
	"net/http"

	"finitefield.org/cv-web/internal/i18n"
)

type (
	htmxKey       struct{}
	langKey       struct{}
	preferenceKey struct{}
	csrfKey       struct{}
)

// HTMX marks requests that expect a fragment. Boosted navigations and history
// restores need the full page and are treated as regular requests.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fragment := r.Header.Get("HX-Request") == "true" &&
			r.Header.Get("HX-Boosted") != "true" &&
			r.Header.Get("HX-History-Restore-Request") != "true"
		w.Header().Add("Vary", "HX-Request")
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), htmxKey{}, fragment)))
	})
}

// IsHTMX reports whether the request wants a fragment response.
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(htmxKey{}).(bool)
	return v
}

// WithPreference stores the visitor's language preference.
func WithPreference(ctx context.Context, p *i18n.Preference) context.Context {
	return context.WithValue(ctx, preferenceKey{}, p)
}

// PreferenceFrom returns the preference installed by Language, if any.
func PreferenceFrom(ctx context.Context) *i18n.Preference {
	p, _ := ctx.Value(preferenceKey{}).(*i18n.Preference)
	return p
}

// WithLang stores the resolved language.
func WithLang(ctx context.Context, c i18n.Code) context.Context {
	return context.WithValue(ctx, langKey{}, c)
}

// Lang returns the resolved language or the default.
func Lang(ctx context.Context) i18n.Code {
	if c, ok := ctx.Value(langKey{}).(i18n.Code); ok && c != "" {
		return c
	}
	return i18n.Default
}

func CSRFToken(ctx context.Context) string {
	v, _ := ctx.Value(csrfKey{}).(string)
	return v
}
