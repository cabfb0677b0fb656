package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/webclipper/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAllowOnlyCIDRS(t *testing.T) {
	h := AllowOnlyCIDRS([]string{"10.0.0.0/8"}, false, logger.Nop())(okHandler)

	tests := []struct {
		remote string
		want   int
	}{
		{"10.2.3.4:1234", http.StatusOK},
		{"192.168.0.1:1234", http.StatusForbidden},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		r.RemoteAddr = tt.remote
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, tt.want, w.Code, tt.remote)
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"clipper.local", "*.example.com"}, logger.Nop())(okHandler)

	tests := []struct {
		host string
		want int
	}{
		{"clipper.local", http.StatusOK},
		{"api.example.com", http.StatusOK},
		{"a.b.example.com", http.StatusForbidden},
		{"evil.com", http.StatusForbidden},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		r.Host = tt.host
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, tt.want, w.Code, tt.host)
	}

	passthrough := EnforceHost(nil, logger.Nop())(okHandler)
	w := httptest.NewRecorder()
	passthrough.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"chrome-extension://*"}, logger.Nop())(okHandler)

	t.Run("preflight allowed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, "/api/accounts", nil)
		r.Header.Set("Origin", "chrome-extension://abcdef")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "chrome-extension://abcdef", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
	})

	t.Run("preflight rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, "/api/accounts", nil)
		r.Header.Set("Origin", "https://evil.com")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("simple request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		r.Header.Set("Origin", "chrome-extension://abcdef")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "chrome-extension://abcdef", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/state", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func rateLimitedRequest(h http.Handler, remote, path string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.RemoteAddr = remote
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:        2,
		RefillPerMin: 6,
		Now:          func() time.Time { return now },
	}, logger.Nop())(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := rateLimitedRequest(h, "10.0.0.1:1000", "/api/state")
		codes = append(codes, w.Code)
		if i == 0 {
			assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
		}
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "10", w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Other route groups and other clients have their own buckets.
	assert.Equal(t, http.StatusOK, rateLimitedRequest(h, "10.0.0.1:1000", "/api/extensions/pagelink/run").Code)
	assert.Equal(t, http.StatusOK, rateLimitedRequest(h, "10.0.0.2:1000", "/api/state").Code)

	// One token comes back every ten seconds.
	now = now.Add(10 * time.Second)
	assert.Equal(t, http.StatusOK, rateLimitedRequest(h, "10.0.0.1:1000", "/api/state").Code)
	assert.Equal(t, http.StatusTooManyRequests, rateLimitedRequest(h, "10.0.0.1:1000", "/api/state").Code)
}

func TestRateLimitSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 1, IdleTTL: time.Minute, Now: func() time.Time { return now }})

	_, _, ok := l.take(bucketKey{client: "a", group: "state"}, now)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, _, ok = l.take(bucketKey{client: "b", group: "state"}, now)
	assert.True(t, ok)
	assert.Len(t, l.buckets, 1, "idle bucket of a is dropped")
}

func TestRouteGroup(t *testing.T) {
	tests := map[string]string{
		"/api/state":                   "state",
		"/api/accounts/abc":            "accounts",
		"/api/extensions/pagelink/run": "extensions",
		"/api":                         "",
	}
	for path, want := range tests {
		assert.Equal(t, want, routeGroup(path), path)
	}
}
