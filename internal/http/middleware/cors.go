package middleware

import (
	"net/http"
	"strings"
)

// CORS applies cross-origin headers for the single configured frontend
// origin (CORS_ALLOWED_ORIGIN, dev default http://localhost:5173). An empty
// origin disables the headers entirely; "*" admits any origin without
// credentials. Preflight OPTIONS requests are answered directly with 204.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	origin := strings.TrimSpace(allowedOrigin)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			applyCORS(w, r, origin)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func applyCORS(w http.ResponseWriter, r *http.Request, origin string) {
	switch origin {
	case "":
		return
	case "*":
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "false")
	default:
		requestOrigin := r.Header.Get("Origin")
		if requestOrigin == "" || !strings.EqualFold(requestOrigin, origin) {
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", requestOrigin)
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept")
	w.Header().Set("Access-Control-Max-Age", "3600")
}
