// Package apicors provides CORS middleware for the JSON API.
//
// The API authenticates with bearer tokens, never cookies, so credentials
// are not allowed and the wildcard origin is safe when no list is configured.
package apicors

import (
	"net/http"
	"strings"
)

const (
	allowMethods  = "GET, POST, PATCH, DELETE, OPTIONS"
	allowHeaders  = "Authorization, Content-Type, Accept, Accept-Language"
	exposeHeaders = "Retry-After, X-Request-Id"
	maxAge        = "86400"
)

// Middleware returns CORS middleware for the API routes.
//
// With no origins every origin is allowed ("*"). Otherwise only the listed
// origins are echoed back and responses vary on Origin. A "*" entry in the
// list behaves like an empty list.
//
//	r.Route("/api", func(r chi.Router) {
//	    r.Use(apicors.Middleware(appCfg.CORSOrigins...))
//	    ...
//	})
func Middleware(origins ...string) func(http.Handler) http.Handler {
	originSet := make(map[string]struct{}, len(origins))
	wildcard := len(origins) == 0
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if o == "*" {
			wildcard = true
		}
		originSet[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			origin := r.Header.Get("Origin")

			switch {
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "":
				h.Add("Vary", "Origin")
				if _, ok := originSet[origin]; ok {
					h.Set("Access-Control-Allow-Origin", origin)
				}
			}
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
			h.Set("Access-Control-Max-Age", maxAge)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
