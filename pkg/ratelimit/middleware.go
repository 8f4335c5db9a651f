package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"
)

// Config holds per-client-IP limits.
type Config struct {
	Burst     int
	PerSecond float64
	BucketTTL time.Duration
}

// DefaultConfig allows bursts of 20 and one request per second afterwards.
func DefaultConfig() Config {
	return Config{
		Burst:     20,
		PerSecond: 1,
		BucketTTL: time.Hour,
	}
}

type Middleware struct {
	limiter *RateLimiter
}

func NewMiddleware(cfg Config) *Middleware {
	return &Middleware{limiter: NewRateLimiter(cfg.Burst, cfg.PerSecond, cfg.BucketTTL)}
}

// Handler answers 429 once a client IP runs out of tokens.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !m.limiter.Allow(ip) {
			slog.Warn("rate limit exceeded", "ip", ip, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(1))
			render.Status(r, http.StatusTooManyRequests)
			render.JSON(w, r, map[string]string{
				"error":             "rate_limit_exceeded",
				"error_description": "Too many requests. Please try again later.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
