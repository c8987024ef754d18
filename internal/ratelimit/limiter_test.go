package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/nartaq/forms-service/internal/config"
)

func newTestLimiter(t *testing.T, requests int) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(rdb, config.RateLimitConfig{PerMinute: requests, WindowSeconds: 60}), mr
}

func TestLimiterBlocksAfterLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3)

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/forms/newsletter", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/forms/newsletter", nil)
	req.RemoteAddr = "10.1.2.3:5000"
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("4th request: status = %d, want 429", rec.Code)
	}
}

func TestLimiterIsolatesClients(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1)

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	first := httptest.NewRequest(http.MethodPost, "/", nil)
	first.RemoteAddr = "10.0.0.1:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)

	blocked := httptest.NewRequest(http.MethodPost, "/", nil)
	blocked.RemoteAddr = "10.0.0.1:1000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, blocked)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("same client should be blocked, got %d", rec.Code)
	}

	other := httptest.NewRequest(http.MethodPost, "/", nil)
	other.RemoteAddr = "10.0.0.2:1000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	if rec.Code == http.StatusTooManyRequests {
		t.Fatal("a different client must not share the window")
	}
}

func TestLimiterFailsOpenWhenRedisDown(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1)
	mr.Close()

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d should pass with redis down, got %d", i+1, rec.Code)
		}
	}
}

func TestLimiterNilClientDisabled(t *testing.T) {
	limiter := New(nil, config.RateLimitConfig{PerMinute: 1, WindowSeconds: 60})
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	for i := 0; i < 10; i++ {
		if !limiter.Allow(req, "10.0.0.1") {
			t.Fatal("nil client must disable limiting")
		}
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := ClientIP(req); ip != "203.0.113.7" {
		t.Errorf("ip = %q", ip)
	}

	req.Header.Del("X-Forwarded-For")
	if ip := ClientIP(req); ip != "127.0.0.1" {
		t.Errorf("ip = %q", ip)
	}
}
