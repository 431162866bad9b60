package observability

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func newRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(buf)))
	r.Use(RequestMetricsMiddleware("mwtest"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/v1/decode/:container", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })
	return r
}

func TestRequestLoggerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter(&buf)

	req := httptest.NewRequest(http.MethodPost, "/v1/decode/map?fields=quotes", strings.NewReader("abc"))
	req.Header.Set("Content-Encoding", "br")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one json log line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" {
		t.Fatalf("expected warn for 422, got %v", entry["level"])
	}
	if entry["path"] != "/v1/decode/:container" {
		t.Fatalf("expected route template path, got %v", entry["path"])
	}
	if entry["encoding"] != "br" || entry["req_bytes"] != float64(3) {
		t.Fatalf("expected encoding and request size, got %v", entry)
	}

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Fatalf("expected health probe at debug, got %q", buf.String())
	}
}

func TestRequestMetricsUseBoundedPaths(t *testing.T) {
	RegisterMetrics()
	r := newRouter(&bytes.Buffer{})
	counter := httpRequests.WithLabelValues("mwtest", "GET", "unmatched", "404")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/2", nil))
	if got := testutil.ToFloat64(counter); got != before+2 {
		t.Fatalf("expected unmatched counter %v, got %v", before+2, got)
	}
}
