package middleware

import (
	"net/http"

	"finitefield.org/cv-web/internal/i18n"
)

// Language resolves the visitor's language from the preferred_language cookie,
// Accept-Language or the default, persisting the result as a cookie. A ?hl=
// query selects a language explicitly.
func Language(secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			storage := NewCookieStorage(w, r, secureCookies)
			pref := i18n.NewPreference(storage, i18n.WithBrowserLocale(r.Header.Get("Accept-Language")))
			lang := pref.Resolve()
			// query override
			if q := r.URL.Query().Get("hl"); q != "" && pref.Set(q) {
				lang = pref.Current()
			}
			w.Header().Set("Content-Language", string(lang))
			ctx := WithPreference(WithLang(r.Context(), lang), pref)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
