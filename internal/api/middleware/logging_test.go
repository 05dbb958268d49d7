package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/stationwatch/stationwatch/internal/api/middleware"
)

func logRequest(t *testing.T, log zerolog.Logger, buf *bytes.Buffer, target string, h http.HandlerFunc) map[string]interface{} {
	t.Helper()

	handler := middleware.Logger(log)(h)
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	req.Header.Set("User-Agent", "stationwatch-dashboard/2.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if buf.Len() == 0 {
		return nil
	}
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	entry := logRequest(t, log, &buf, "/api/weather/readings?station_id=st_pune01&days=7",
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"readings":[]}`))
		})

	assert.Equal(t, "request completed", entry["message"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/api/weather/readings", entry["path"])
	assert.Equal(t, "station_id=st_pune01&days=7", entry["query"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, float64(15), entry["bytes"]) // len(`{"readings":[]}`)
	assert.Equal(t, "stationwatch-dashboard/2.1", entry["user_agent"])
	assert.NotEmpty(t, entry["duration"])
}

func TestLogger_LogsErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	entry := logRequest(t, log, &buf, "/api/data-requests",
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

	assert.Equal(t, float64(500), entry["status"])
}

func TestLogger_HealthEndpointsLogAtDebug(t *testing.T) {
	var buf bytes.Buffer
	// Info-level logger drops the debug-level health lines entirely.
	log := zerolog.New(&buf).Level(zerolog.InfoLevel)

	for _, path := range []string{"/health", "/ready"} {
		buf.Reset()
		entry := logRequest(t, log, &buf, path, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		assert.Nil(t, entry, "expected no info-level line for %s", path)
	}

	buf.Reset()
	entry := logRequest(t, log, &buf, "/api/stations", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	assert.Equal(t, "request completed", entry["message"])
}

func TestLogger_IncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	handler := middleware.RequestID(
		middleware.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/stations", http.NoBody)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	requestID, ok := entry["request_id"].(string)
	assert.True(t, ok)
	assert.Contains(t, requestID, "req_")
}

func TestLogger_IncludesTraceID(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var buf bytes.Buffer
	log := zerolog.New(&buf)

	handler := middleware.Tracing("stationwatch-api")(
		middleware.Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/river/level", http.NoBody)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	traceID, ok := entry["trace_id"].(string)
	assert.True(t, ok)
	assert.Len(t, traceID, 32)

	spanID, ok := entry["span_id"].(string)
	assert.True(t, ok)
	assert.Len(t, spanID, 16)
}

func TestLogger_DefaultStatusCode(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	// Handler writes a body without calling WriteHeader.
	entry := logRequest(t, log, &buf, "/api/stations", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	assert.Equal(t, float64(200), entry["status"])
}
