package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MrSnakeDoc/icebreaker/internal/auth"
	"github.com/MrSnakeDoc/icebreaker/internal/utils"
)

// RateLimitConfig sizes the per-caller token buckets guarding the mutation routes.
type RateLimitConfig struct {
	Burst        int
	RefillPerMin int
	MaxKeys      int           // buckets kept before idle ones are evicted early
	IdleTTL      time.Duration // how long an untouched bucket survives
	TrustProxy   bool          // resolve the fallback IP from proxy headers
	Now          func() time.Time
}

// rateKey buckets authenticated callers by user id, since every mutation of a user
// contends on that user's single document. Anonymous callers share their client IP.
func rateKey(r *http.Request, trustProxy bool) string {
	if id, ok := auth.FromContext(r.Context()); ok {
		return "user:" + id.UserID
	}
	return "ip:" + utils.ClientIP(r, trustProxy)
}

type bucket struct {
	tokens float64
	at     time.Time
}

type limiter struct {
	cfg       RateLimitConfig
	perSecond float64

	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	cfg.Burst = max(cfg.Burst, 1)
	cfg.RefillPerMin = max(cfg.RefillPerMin, 1)
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &limiter{
		cfg:       cfg,
		perSecond: float64(cfg.RefillPerMin) / 60,
		buckets:   make(map[string]*bucket),
		nextSweep: cfg.Now().Add(cfg.IdleTTL),
	}
}

// take spends one token for key. When the bucket is dry it returns the whole
// seconds until the next token.
func (l *limiter) take(key string) (ok bool, remaining, retryAfter int) {
	now := l.cfg.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) || (l.cfg.MaxKeys > 0 && len(l.buckets) >= l.cfg.MaxKeys) {
		l.evictIdle(now)
	}

	capacity := float64(l.cfg.Burst)
	b, found := l.buckets[key]
	if !found {
		b = &bucket{tokens: capacity, at: now}
		l.buckets[key] = b
	}
	if dt := now.Sub(b.at).Seconds(); dt > 0 {
		b.tokens = math.Min(capacity, b.tokens+dt*l.perSecond)
		b.at = now
	}

	if b.tokens < 1 {
		return false, 0, max(1, int(math.Ceil((1-b.tokens)/l.perSecond)))
	}
	b.tokens--
	return true, int(b.tokens), 0
}

func (l *limiter) evictIdle(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.at) > l.cfg.IdleTTL {
			delete(l.buckets, k)
		}
	}
	l.nextSweep = now.Add(l.cfg.IdleTTL)
}

// RateLimit must run after RequireUser so the bucket key is the caller's user id.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, retryAfter := l.take(rateKey(r, l.cfg.TrustProxy))
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				jsonError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
