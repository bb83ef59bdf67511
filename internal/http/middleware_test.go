package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLogger(t *testing.T) {

	t.Run("attaches a request scoped logger to the context", func(t *testing.T) {
		base := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

		var sawLogger bool
		handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sawLogger = LoggerFromContext(r.Context()) != nil
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/ev-1", nil))

		if !sawLogger {
			t.Fatalf("expected a logger in the request context")
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("logs request start and completion with identifying attributes", func(t *testing.T) {
		var buf bytes.Buffer
		base := slog.New(slog.NewJSONHandler(&buf, nil))

		handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/events", nil))

		output := buf.String()
		for _, want := range []string{
			"request started",
			"request completed",
			`"method":"POST"`,
			`"path":"/events"`,
			`"request_id":1`,
		} {
			if !strings.Contains(output, want) {
				t.Fatalf("expected log output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("assigns increasing request ids", func(t *testing.T) {
		var buf bytes.Buffer
		base := slog.New(slog.NewJSONHandler(&buf, nil))

		handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for i := 0; i < 2; i++ {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/identities", nil))
		}

		if !strings.Contains(buf.String(), `"request_id":2`) {
			t.Fatalf("expected a second request id, got:\n%s", buf.String())
		}
	})
}
