package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/GraceHermine/GenerateurDocument/pkg/ctxutil"
)

// idleTTL is how long an unused quota is kept before cleanup drops it.
const idleTTL = 10 * time.Minute

// RateLimiter enforces a per-caller quota with token buckets. Authenticated
// callers are keyed by user id, anonymous ones by client IP.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	stop    chan struct{}
}

type bucket struct {
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
}

// NewRateLimiter starts a limiter whose idle buckets are swept every
// cleanupInterval. Call Stop on shutdown.
func NewRateLimiter(cleanupInterval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.sweepEvery(cleanupInterval)
	return rl
}

// Stop terminates the background sweep.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

// Limit allows each caller perMinute requests per minute, with bursts up to
// perMinute.
func (rl *RateLimiter) Limit(perMinute int) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if wait, ok := rl.take(callerKey(r), perMinute); !ok {
				w.Header().Set("Retry-After", strconv.Itoa(max(1, int(math.Ceil(wait.Seconds())))))
				writeError(w, http.StatusTooManyRequests, "too many generation requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if id, ok := ctxutil.UserIDFromCtx(r.Context()); ok {
		return "user:" + id.String()
	}
	ip := ctxutil.ClientIPFromCtx(r.Context())
	if ip == "" {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

// take consumes one token for key. When none is left it returns the time
// until the next token.
func (rl *RateLimiter) take(key string, perMinute int) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{
			tokens:   float64(perMinute),
			capacity: float64(perMinute),
			perSec:   float64(perMinute) / 60,
			last:     now,
		}
		rl.buckets[key] = b
	}

	b.tokens = min(b.capacity, b.tokens+now.Sub(b.last).Seconds()*b.perSec)
	b.last = now
	if b.tokens < 1 {
		return time.Duration((1 - b.tokens) / b.perSec * float64(time.Second)), false
	}
	b.tokens--
	return 0, true
}

func (rl *RateLimiter) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, b := range rl.buckets {
		if now.Sub(b.last) > idleTTL {
			delete(rl.buckets, key)
		}
	}
}
