package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// The platform serves an Arabic-first audience with an English fallback.
var localeMatcher = language.NewMatcher([]language.Tag{
	language.Arabic,
	language.English,
})

// Locale resolves the request locale from X-Locale, then Accept-Language,
// then the configured default, and stores it on the context.
func Locale(defaultLocale string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale)
			ctx := context.WithValue(r.Context(), localeContextKey{}, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string) string {
	xLocale := r.Header.Get("X-Locale")
	acceptLang := r.Header.Get("Accept-Language")
	if xLocale == "" && acceptLang == "" {
		if fallback != "" {
			return fallback
		}
		return "ar"
	}

	tag, _ := language.MatchStrings(localeMatcher, xLocale, acceptLang)
	base, _ := tag.Base()
	return base.String()
}

// LocaleFromContext returns the detected locale, or "" outside a request.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeContextKey{}).(string); ok {
		return v
	}
	return ""
}
