package httpserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"skillbridge/internal/cache"
	"skillbridge/internal/generation"
	"skillbridge/internal/handlers"
	"skillbridge/internal/metrics"
	"skillbridge/internal/resolver"
	"skillbridge/internal/store"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newRouter(t *testing.T, health Pinger) *chi.Mux {
	t.Helper()
	metrics.Register()

	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "router.db"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	mem := cache.NewMemoryStore(cache.MemoryConfig{})
	t.Cleanup(func() { mem.Close() })

	h := handlers.NewAssessmentHandler(
		s,
		resolver.New(s, mem, time.Minute),
		generation.NewService(mem, generation.Disabled(), generation.Config{}),
	)

	r := chi.NewRouter()
	SetupRouter(r, zaptest.NewLogger(t), h, health, Options{})
	return r
}

func TestRoutes(t *testing.T) {
	r := newRouter(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"create", http.MethodPost, "/v1/assessments", `{"rawInput":"Go and Docker"}`, http.StatusCreated},
		{"result", http.MethodGet, "/v1/assessments/abc/result", "", http.StatusOK},
		{"analyze unknown", http.MethodPost, "/v1/assessments/abc/analyze", "", http.StatusNotFound},
		{"recommendations", http.MethodPost, "/v1/assessments/abc/recommendations", `{}`, http.StatusOK},
		{"healthz", http.MethodGet, "/healthz", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"unknown", http.MethodGet, "/v1/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("%s %s: expected %d, got %d: %s", tt.method, tt.path, tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestMetricsExposeResolverOrigins(t *testing.T) {
	r := newRouter(t, nil)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/assessments/xyz/result", nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), `skillbridge_resolve_origin_total{origin="synthesized"}`) {
		t.Fatalf("expected resolver origin counter in metrics output")
	}
}

func TestHealthzReportsUnavailable(t *testing.T) {
	healthy := pingFunc(func(context.Context) error { return nil })
	r := newRouter(t, PingAll{healthy, pingFunc(func(context.Context) error { return errors.New("redis gone") })})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestHealthzPingsRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	r := newRouter(t, PingAll{cache.NewRedisStore(client, cache.RedisConfig{Prefix: "skillbridge"})})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with redis up, got %d", rr.Code)
	}

	mr.Close()

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with redis down, got %d", rr.Code)
	}
}
