package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"padelhub/pkg/client"
	"padelhub/pkg/config"
	"padelhub/pkg/contracts"
	httputil "padelhub/pkg/http"
	"padelhub/pkg/logger"
	"padelhub/pkg/middleware"
)

func newTestLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

func newTestConfig() *config.Config {
	return &config.Config{
		Port:              "0",
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		IdempotencyTTL:    time.Minute,
		MaxRequestSize:    1024,
		ShutdownTimeout:   time.Second,
		Log:               newTestLogger(),
		Client:            client.NewClient(),
	}
}

type echoHandler struct {
	calls int
}

func (h *echoHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/echo", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.calls++
		_ = httputil.WriteCreated(w, map[string]int{"call": h.calls})
	})
}

func newTestApp(t *testing.T, h contracts.Handler) *Application {
	t.Helper()
	a := NewApplication(newTestConfig())
	a.SetApp(h)
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a
}

func post(a *Application, user, idemKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(httputil.HeaderUserID, user)
	if idemKey != "" {
		req.Header.Set(middleware.HeaderIdempotencyKey, idemKey)
	}
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func TestApplication_MiddlewareChain(t *testing.T) {
	echo := &echoHandler{}
	a := newTestApp(t, echo)

	first := post(a, "alice", "k1")
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body)
	}
	if first.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("expected a request id on every response")
	}

	replay := post(a, "alice", "k1")
	if echo.calls != 1 || replay.Header().Get("Idempotent-Replayed") != "true" {
		t.Errorf("expected replay without a second call, calls=%d", echo.calls)
	}

	if rec := post(a, "alice", ""); rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected the third request from alice to be limited, got %d", rec.Code)
	}
	if rec := post(a, "bob", ""); rec.Code != http.StatusCreated {
		t.Errorf("expected bob unaffected, got %d", rec.Code)
	}
}

func TestApplication_RejectsNonJSON(t *testing.T) {
	a := newTestApp(t, &echoHandler{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader(`a=b`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415, got %d", rec.Code)
	}
}

func TestApplication_HealthWithoutMongo(t *testing.T) {
	a := newTestApp(t, &echoHandler{})

	tests := []struct {
		path string
		want int
	}{
		{path: "/health", want: http.StatusOK},
		{path: "/ready", want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name       string
		mongo      pingFunc
		redis      pingFunc
		wantStatus int
		want       HealthResponse
	}{
		{
			name:       "all healthy",
			mongo:      ok,
			redis:      ok,
			wantStatus: http.StatusOK,
			want:       HealthResponse{Status: "ready", Database: "ok", Cache: "ok"},
		},
		{
			name:       "no redis configured",
			mongo:      ok,
			wantStatus: http.StatusOK,
			want:       HealthResponse{Status: "ready", Database: "ok"},
		},
		{
			name:       "redis down is reported only",
			mongo:      ok,
			redis:      fail,
			wantStatus: http.StatusOK,
			want:       HealthResponse{Status: "ready", Database: "ok", Cache: "error"},
		},
		{
			name:       "mongo down",
			mongo:      fail,
			wantStatus: http.StatusServiceUnavailable,
			want:       HealthResponse{Status: "unavailable", Database: "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HealthHandler{mongo: tt.mongo, redis: tt.redis, log: newTestLogger()}

			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil), nil)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			var got HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
