package middleware

import (
	"net/http"
	"strings"
)

// CORS sets cross-origin headers for the configured origin. An empty origin
// disables the headers; "*" allows any origin without credentials. Preflight
// requests are answered directly.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	origin := strings.TrimSpace(allowedOrigin)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestOrigin := r.Header.Get("Origin")
			allowed := false

			switch {
			case origin == "":
			case origin == "*":
				w.Header().Set("Access-Control-Allow-Origin", "*")
				allowed = true
			case requestOrigin != "" && strings.EqualFold(requestOrigin, origin):
				w.Header().Set("Access-Control-Allow-Origin", requestOrigin)
				w.Header().Add("Vary", "Origin")
				// the session cookie must travel on cross-origin API calls
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				allowed = true
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept, "+RequestIDHeader)
				w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if allowed && r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
