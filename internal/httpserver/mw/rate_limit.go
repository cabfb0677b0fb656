package mw

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/webclipper/internal/logger"
	"github.com/MrSnakeDoc/webclipper/internal/utils"
)

// RateLimitConfig configures the API token buckets. Each client gets one
// bucket per route group ("state", "accounts", "extensions", ...), so an
// extension polling /api/state does not eat into its own clip runs.
type RateLimitConfig struct {
	Burst        int           // requests a client may send at once within a group
	RefillPerMin int           // tokens returned to each bucket per minute
	MaxEntries   int           // sweep idle buckets early once this many exist (0 = no cap)
	IdleTTL      time.Duration // buckets untouched this long are dropped
	TrustProxy   bool          // resolve the client from proxy headers
	Now          func() time.Time
}

type bucketKey struct {
	client string
	group  string
}

type tokenBucket struct {
	tokens  float64
	updated time.Time
}

type limiter struct {
	cfg       RateLimitConfig
	perSecond float64
	capacity  float64

	mu        sync.Mutex
	buckets   map[bucketKey]*tokenBucket
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
		capacity:  float64(cfg.Burst),
		buckets:   make(map[bucketKey]*tokenBucket),
		nextSweep: cfg.Now().Add(cfg.IdleTTL),
	}
}

// take spends one token from k's bucket. When the bucket is empty it reports
// how long until the next token.
func (l *limiter) take(k bucketKey, now time.Time) (remaining int, wait time.Duration, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !now.Before(l.nextSweep) || (l.cfg.MaxEntries > 0 && len(l.buckets) >= l.cfg.MaxEntries) {
		l.sweep(now)
	}

	b := l.buckets[k]
	if b == nil {
		b = &tokenBucket{tokens: l.capacity, updated: now}
		l.buckets[k] = b
	}
	if elapsed := now.Sub(b.updated).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.perSecond)
		b.updated = now
	}

	if b.tokens < 1 {
		missing := (1 - b.tokens) / l.perSecond
		return 0, time.Duration(missing * float64(time.Second)), false
	}
	b.tokens--
	return int(b.tokens), 0, true
}

func (l *limiter) sweep(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.updated) > l.cfg.IdleTTL {
			delete(l.buckets, k)
		}
	}
	l.nextSweep = now.Add(l.cfg.IdleTTL)
}

// routeGroup returns the first path segment below /api.
func routeGroup(path string) string {
	path = strings.TrimPrefix(path, "/api")
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}

// RateLimit answers 429 with Retry-After once a client empties the bucket of a route group.
func RateLimit(cfg RateLimitConfig, loggerClient logger.Logger) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := bucketKey{
				client: utils.ClientIP(r, l.cfg.TrustProxy),
				group:  routeGroup(r.URL.Path),
			}

			remaining, wait, ok := l.take(key, l.cfg.Now())
			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !ok {
				retry := max(int(math.Ceil(wait.Seconds())), 1)
				loggerClient.Warn("rate limited",
					logger.String("client", key.client),
					logger.String("group", key.group),
					logger.Int("retry_after_s", retry))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
