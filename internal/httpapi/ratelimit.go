package httpapi

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	ReadPerMinute  int
	ReadBurst      int
	WritePerMinute int
	WriteBurst     int
}

// RateLimiter applies separate per-client budgets to reads (GET, HEAD) and
// writes (everything else).
type RateLimiter struct {
	read  *keyedLimiter
	write *keyedLimiter
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		read:  newKeyedLimiter(cfg.ReadPerMinute, cfg.ReadBurst),
		write: newKeyedLimiter(cfg.WritePerMinute, cfg.WriteBurst),
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		limiter := l.write
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			limiter = l.read
		}
		if ip := clientIP(r); ip != "" && !limiter.allow(ip) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, fmt.Sprintf("Rate limit exceeded: %d per 1 minute", limiter.perMinute))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type keyedLimiter struct {
	mu        sync.Mutex
	perMinute int
	burst     int
	clients   map[string]*client
	lastSweep time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const idleClientTTL = 10 * time.Minute

func newKeyedLimiter(perMinute, burst int) *keyedLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &keyedLimiter{
		perMinute: perMinute,
		burst:     burst,
		clients:   make(map[string]*client),
		lastSweep: time.Now(),
	}
}

func (l *keyedLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > idleClientTTL {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > idleClientTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(float64(l.perMinute)/60.0), l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
