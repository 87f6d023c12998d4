package main

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vigneshwaranr/highcharts-trendline/internal/config"
)

// securityHeaders adds security-related HTTP headers.
func securityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		next(w, r)
	}
}

const rateLimiterMaxSize = 10000
const rateLimiterEvictAge = time.Hour

// rateLimiter limits requests per IP (simple in-memory, per-endpoint). Map size is capped.
type rateLimiter struct {
	mu       sync.Mutex
	last     map[string]time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{
		last:     make(map[string]time.Time),
		interval: interval,
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := time.Now()
	if len(rl.last) >= rateLimiterMaxSize {
		for k, t := range rl.last {
			if now.Sub(t) > rateLimiterEvictAge {
				delete(rl.last, k)
			}
		}
	}
	if t, ok := rl.last[key]; ok && now.Sub(t) < rl.interval {
		return false
	}
	rl.last[key] = now
	return true
}

var computeLimiter = newRateLimiter(200 * time.Millisecond)

func rateLimitCompute(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if f := r.Header.Get("X-Forwarded-For"); f != "" {
			ip = strings.TrimSpace(strings.Split(f, ",")[0])
		}
		if !computeLimiter.allow(ip) {
			http.Error(w, `{"error":"rate limit: try again shortly"}`, http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// isAdmin reports whether the request carries the admin key. With no
// ADMIN_API_KEY configured every caller is an admin.
func isAdmin(r *http.Request) bool {
	if config.AdminAPIKey == "" {
		return true
	}
	key := r.Header.Get("X-Admin-Key")
	if key == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			key = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	return key == config.AdminAPIKey
}
