package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestRouterSkipsUnwiredHandlers(t *testing.T) {
	r := NewRouter(RouterConfig{})

	for _, path := range []string{"/health", "/api/v1/mapping/status"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s = %d, want 404 when handler is nil", path, rec.Code)
		}
	}
}

func TestRouterStampsTraceHeadersOnEveryResponse(t *testing.T) {
	r := NewRouter(RouterConfig{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Trace-Id") == "" || rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("trace headers missing on %d response: %v", rec.Code, rec.Header())
	}
}
