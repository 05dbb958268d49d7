package middleware

import (
	"net/http"
	"strings"

	"github.com/stationwatch/stationwatch/internal/api/models"
)

// ContentTypeJSON defaults responses to application/json and rejects
// request bodies declared as anything else. Every surface on this API
// speaks JSON: station firmware posts readings, the dashboard posts the
// data-request form, and errors go out as problem+json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				problem := models.NewProblem(
					models.ProblemTypeUnsupportedMedia,
					"Unsupported media type",
					http.StatusUnsupportedMediaType,
					GetRequestID(r.Context()),
				)
				problem.WithDetail("request bodies must be application/json").
					WithInstance(r.URL.Path).
					Write(w)
				return
			}
		}

		// Handlers that stream another type (export downloads) override this.
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}

		next.ServeHTTP(w, r)
	})
}
