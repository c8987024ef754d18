// Package ratelimit provides a per-IP fixed-window rate limit backed by
// Redis. The limiter fails open: if Redis is unreachable, requests pass and
// the incident is logged, so form submissions never bounce off a cache
// outage.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nartaq/forms-service/internal/config"
	"github.com/nartaq/forms-service/internal/pkg/logger"
)

// Limiter counts requests per client IP in fixed windows.
type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// New creates a limiter from config. A nil client disables limiting.
func New(rdb *redis.Client, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		rdb:    rdb,
		limit:  cfg.PerMinute,
		window: cfg.Window(),
		prefix: "ratelimit:forms",
	}
}

// Allow reports whether the client identified by ip may proceed.
func (l *Limiter) Allow(r *http.Request, ip string) bool {
	if l.rdb == nil || l.limit <= 0 {
		return true
	}

	bucket := time.Now().Unix() / int64(l.window.Seconds())
	key := fmt.Sprintf("%s:%s:%d", l.prefix, ip, bucket)

	count, err := l.rdb.Incr(r.Context(), key).Result()
	if err != nil {
		logger.Warn("rate limit check failed, allowing request", "ip", ip, "error", err.Error())
		return true
	}
	if count == 1 {
		// first hit in the window owns the expiry
		if err := l.rdb.Expire(r.Context(), key, l.window).Err(); err != nil {
			logger.Warn("rate limit expire failed", "key", key, "error", err.Error())
		}
	}
	return count <= int64(l.limit)
}

// Middleware enforces the limit on every request it wraps. Rejections carry
// the same envelope shape as the form handlers.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		if !l.Allow(r, ip) {
			logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"success":false,"error":"Too many requests, please try again later"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP resolves the originating address, trusting X-Forwarded-For from
// the fronting proxy (leftmost entry) before falling back to the socket peer.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
