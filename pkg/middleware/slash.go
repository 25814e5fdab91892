package middleware

import (
	"net/http"
	"strings"
)

// TrimSlash redirects paths with a trailing slash to the same path without
// it. The root path is left alone. 308 keeps the method and body, so JSON
// posts survive the redirect.
func TrimSlash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) <= 1 || !strings.HasSuffix(r.URL.Path, "/") {
				next.ServeHTTP(w, r)
				return
			}

			target := *r.URL
			target.Path = strings.TrimRight(r.URL.Path, "/")
			target.RawPath = ""
			if target.Path == "" {
				target.Path = "/"
			}
			http.Redirect(w, r, target.RequestURI(), http.StatusPermanentRedirect)
		})
	}
}
