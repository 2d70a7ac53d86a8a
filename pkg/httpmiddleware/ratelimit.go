package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the per-client sliding window limiter.
type RateLimitConfig struct {
	// Max is the number of requests allowed per window.
	Max int
	// Window is the sliding window length.
	Window time.Duration
	// KeyFunc derives the limiter key from a request. Defaults to the
	// client IP taken from X-Forwarded-For, X-Real-IP, or RemoteAddr.
	KeyFunc func(*http.Request) string
}

// bucket holds request counts for a key across two adjacent windows.
// The weighted sum of both windows approximates a true sliding window.
type bucket struct {
	window int64
	count  float64
	prev   float64
}

type limiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	buckets map[string]*bucket
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	return &limiter{cfg: cfg, buckets: make(map[string]*bucket)}
}

// take records one request for key and reports whether it is allowed,
// along with the remaining budget and the current window's reset time.
func (l *limiter) take(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	window := now.UnixNano() / int64(l.cfg.Window)
	frac := float64(now.UnixNano()%int64(l.cfg.Window)) / float64(l.cfg.Window)
	resetAt = time.Unix(0, (window+1)*int64(l.cfg.Window))

	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b == nil {
		b = &bucket{window: window}
		l.buckets[key] = b
	}
	switch window - b.window {
	case 0:
	case 1:
		b.prev, b.count, b.window = b.count, 0, window
	default:
		b.prev, b.count, b.window = 0, 0, window
	}

	weighted := b.prev*(1-frac) + b.count
	if weighted >= float64(l.cfg.Max) {
		return 0, resetAt, false
	}

	b.count++
	remaining = int(float64(l.cfg.Max) - weighted - 1)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, resetAt, true
}

// evict drops buckets that have been idle for two full windows.
func (l *limiter) evict(now time.Time) {
	window := now.UnixNano() / int64(l.cfg.Window)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if window-b.window >= 2 {
			delete(l.buckets, key)
		}
	}
}

// RateLimit enforces a per-key sliding window limit. Rejected requests
// get a 429 with a JSON body; every response carries X-RateLimit-Limit,
// X-RateLimit-Remaining, and X-RateLimit-Reset headers.
func RateLimit(cfg RateLimitConfig) Middleware {
	return limitMiddleware(newLimiter(cfg))
}

// RateLimitWithCleanup is RateLimit plus a background goroutine that
// evicts idle keys. The goroutine stops when ctx is cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	go func() {
		ticker := time.NewTicker(2 * cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.evict(now)
			}
		}
	}()
	return limitMiddleware(l)
}

func limitMiddleware(l *limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, resetAt, ok := l.take(l.cfg.KeyFunc(r), time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				retry := math.Ceil(time.Until(resetAt).Seconds())
				if retry < 0 {
					retry = 0
				}
				h.Set("Retry-After", strconv.Itoa(int(retry)))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"code":429,"message":"rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the caller's address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ip, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(ip)
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
