package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newInstrumentedRouter(logger *slog.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(MetricsMiddleware())
	r.Get("/files/{filename}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	r.Get("/health/live", func(http.ResponseWriter, *http.Request) {})
	return r
}

func scrapeMetrics(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return w.Body.String()
}

func TestMetrics_RoutePatternLabels(t *testing.T) {
	r := newInstrumentedRouter(slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, path := range []string{"/files/1712345678901-abc-report.pdf", "/wp-admin/login.php"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out := scrapeMetrics(t)
	for _, want := range []string{
		`flyshare_http_requests_total{method="GET",path="/files/{filename}",status="418"}`,
		`flyshare_http_requests_total{method="GET",path="other",status="404"}`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("нет серии %s", want)
		}
	}
	if strings.Contains(out, "report.pdf") || strings.Contains(out, "wp-admin") {
		t.Error("имя файла или сырой путь попали в метки")
	}
}

func TestMiddleware_ResponsePassthrough(t *testing.T) {
	r := newInstrumentedRouter(slog.New(slog.NewTextHandler(io.Discard, nil)))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/a.txt", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("статус ответа %d, ожидался 418", w.Code)
	}
	if w.Body.String() != "short and stout" {
		t.Errorf("тело ответа искажено: %q", w.Body.String())
	}
}

func TestRequestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	r := newInstrumentedRouter(logger)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/files/a.txt", nil))
	line := buf.String()
	for _, want := range []string{"level=WARN", "status=418", "bytes=15", "route=/files/{filename}", "request_id="} {
		if !strings.Contains(line, want) {
			t.Errorf("в записи нет %q: %s", want, line)
		}
	}

	// health-проверки пишутся на DEBUG и при уровне INFO не видны
	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if buf.Len() != 0 {
		t.Errorf("health-проверка попала в журнал: %s", buf.String())
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		status int
		path   string
		want   slog.Level
	}{
		{http.StatusOK, "/files", slog.LevelInfo},
		{http.StatusSwitchingProtocols, "/ws", slog.LevelInfo},
		{http.StatusOK, "/health/ready", slog.LevelDebug},
		{http.StatusServiceUnavailable, "/health/ready", slog.LevelError},
		{http.StatusNotFound, "/download/x", slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := logLevel(tt.status, tt.path); got != tt.want {
			t.Errorf("logLevel(%d, %q) = %s, ожидалось %s", tt.status, tt.path, got, tt.want)
		}
	}
}
