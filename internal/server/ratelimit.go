package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"interviewprep/internal/errors"

	"golang.org/x/time/rate"
)

// bucket is the token bucket of one client key
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per client key. Buckets idle for longer
// than the eviction age are dropped by a background sweep.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	limit    rate.Limit
	burst    int
	idle     time.Duration
	rejected uint64

	done      chan struct{}
	closeOnce sync.Once
	logger    *errors.Logger
}

// NewRateLimiter allows requestsPerMin per client with bursts of burstCapacity
func NewRateLimiter(requestsPerMin int, burstCapacity int, logger *errors.Logger) *RateLimiter {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	l := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(requestsPerMin) / 60.0),
		burst:   burstCapacity,
		idle:    10 * time.Minute,
		done:    make(chan struct{}),
		logger:  logger,
	}
	go l.sweep()
	return l
}

// Allow takes a token from key's bucket. It never blocks; on rejection it
// returns how long until the next token.
func (l *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	if b.limiter.AllowN(now, 1) {
		return true, 0
	}
	l.rejected++

	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

// GetStats describes the limiter for /stats
func (l *RateLimiter) GetStats() map[string]any {
	l.mu.Lock()
	defer l.mu.Unlock()

	return map[string]any{
		"active_limiters":   len(l.buckets),
		"rejected_requests": l.rejected,
		"rate_per_minute":   float64(l.limit) * 60.0,
		"burst_capacity":    l.burst,
	}
}

func (l *RateLimiter) sweep() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			l.evict(now)
		case <-l.done:
			return
		}
	}
}

// evict drops buckets unused since before now minus the eviction age
func (l *RateLimiter) evict(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, key)
			removed++
		}
	}
	if removed > 0 {
		l.logger.Debug("Evicted idle rate limit buckets", "removed", removed, "remaining", len(l.buckets))
	}
	return removed
}

// Close stops the sweep. It is safe to call more than once.
func (l *RateLimiter) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

// rateLimitMiddleware rejects requests over the per-IP budget with 429
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled || s.RateLimiter == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := getRateLimitKey(r, s.RateLimit.ByIP)
			if ok, wait := s.RateLimiter.Allow(key); !ok {
				s.Logger.Info("Rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", wait)
				s.metrics.RecordRateLimitHit(r.Context(), "server")
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
				return
			}

			next(w, r)
		}
	}
}

// getRateLimitKey returns the limiter key. Without byIP all clients share one bucket.
func getRateLimitKey(r *http.Request, byIP bool) string {
	if byIP {
		return "ip:" + getClientIP(r)
	}
	return "global"
}

// getClientIP prefers proxy headers over the socket address
func getClientIP(r *http.Request) string {
	if ip := parseFirstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}
	if ip := parseFirstIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP returns the first valid address of a comma separated list
func parseFirstIP(list string) string {
	for candidate := range strings.SplitSeq(list, ",") {
		if ip := net.ParseIP(strings.TrimSpace(candidate)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
