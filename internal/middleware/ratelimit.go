package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client
type RateLimiter struct {
	mu       sync.RWMutex
	visitors map[string]*visitor
	rps      float64
	burst    int
	now      func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rps,
		burst:    burst,
		now:      time.Now,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	v, exists := rl.visitors[key]
	rl.mu.RUnlock()

	if exists {
		rl.mu.Lock()
		v.lastSeen = rl.now()
		rl.mu.Unlock()
		return v.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	if v, exists := rl.visitors[key]; exists {
		v.lastSeen = rl.now()
		return v.limiter
	}

	v = &visitor{limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst), lastSeen: rl.now()}
	rl.visitors[key] = v
	return v.limiter
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// RetryAfter is the number of whole seconds until one token is back.
func (rl *RateLimiter) RetryAfter() int {
	if rl.rps <= 0 {
		return 60
	}
	return int(math.Ceil(1 / rl.rps))
}

// Cleanup drops clients idle for longer than maxIdle and returns how many went.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	now := rl.now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > maxIdle {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// Size reports how many clients are tracked.
func (rl *RateLimiter) Size() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.visitors)
}

// RateLimitMiddleware limits each client (authenticated name, else IP).
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			key := GetClientFromContext(r.Context())
			if key == "" {
				key = clientIP(r)
			}

			if !limiter.Allow(key) {
				w.Header().Set("Retry-After", strconv.Itoa(limiter.RetryAfter()))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
