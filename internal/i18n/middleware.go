package i18n

import (
	"net/http"

	"golang.org/x/text/language"
)

const langCookie = "lang"

// Middleware picks the request language from the "lang" query parameter or
// cookie, then Accept-Language, and falls back to lang. A supported "lang"
// query value is remembered in a cookie scoped to basePath, which is the
// normalized mount point of the app ("" when served at the root).
func Middleware(lang, basePath string) func(http.Handler) http.Handler {
	cookiePath := basePath + "/"
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var prefs []string
			if tag, ok := supportedTag(r.URL.Query().Get("lang")); ok {
				prefs = append(prefs, tag)
				http.SetCookie(w, &http.Cookie{
					Name:     langCookie,
					Value:    tag,
					Path:     cookiePath,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			} else if c, err := r.Cookie(langCookie); err == nil {
				if tag, ok := supportedTag(c.Value); ok {
					prefs = append(prefs, tag)
				}
			}
			if al := r.Header.Get("Accept-Language"); al != "" {
				prefs = append(prefs, al)
			}
			prefs = append(prefs, lang)
			ctx := WithLocalizer(r.Context(), NewLocalizer(prefs...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// supportedTag maps s to the bundle language sharing its base, so "ru-RU"
// resolves to "ru". Unknown or malformed values are rejected.
func supportedTag(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	tag, err := language.Parse(s)
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	for _, t := range Supported() {
		if b, _ := t.Base(); b == base {
			return t.String(), true
		}
	}
	return "", false
}
