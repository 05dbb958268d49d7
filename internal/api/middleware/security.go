package middleware

import (
	"net/http"
	"os"

	"github.com/stationwatch/stationwatch/internal/api/models"
)

// securityHeaders is the fixed header set stamped on every response. The
// API serves no HTML, so the CSP and frame policies lock everything down.
var securityHeaders = [...]struct{ name, value string }{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), camera=(), microphone=()"},
}

// SecurityHeaders applies the standard security header set to every
// response, including export downloads and problem+json errors.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, hdr := range securityHeaders {
			h.Set(hdr.name, hdr.value)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTLS rejects plain-HTTP requests when REQUIRE_TLS=true. The
// deployment terminates TLS at the load balancer, so the check relies on
// the X-Forwarded-Proto header it sets rather than the local connection.
func RequireTLS(next http.Handler) http.Handler {
	enforce := os.Getenv("REQUIRE_TLS") == "true"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if enforce && isForwardedHTTP(r) {
			models.NewProblem(
				"https://api.stationwatch.in/problems/tls-required",
				"TLS required",
				http.StatusForbidden,
				GetRequestID(r.Context()),
			).
				WithDetail("This endpoint requires HTTPS").
				WithInstance(r.URL.Path).
				Write(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isForwardedHTTP(r *http.Request) bool {
	proto := r.Header.Get("X-Forwarded-Proto")
	return proto != "" && proto != "https"
}
