package server

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStripPort(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"127.0.0.1:8080": "127.0.0.1",
		"[::1]:8080":     "::1",
		"192.168.1.1":    "192.168.1.1",
		"[::1]":          "::1",
	}
	for in, want := range tests {
		if got := stripPort(in); got != want {
			t.Errorf("stripPort(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimiterConfig{TrustedProxies: []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("::1/128"),
	}})
	defer rl.Stop()

	tests := []struct {
		name   string
		remote string
		xff    []string
		xri    string
		want   string
	}{
		{"Direct client", "198.51.100.7:5555", nil, "", "198.51.100.7"},
		{"Untrusted peer ignores X-Forwarded-For", "198.51.100.7:5555", []string{"203.0.113.9"}, "", "198.51.100.7"},
		{"Untrusted peer ignores X-Real-IP", "198.51.100.7:5555", nil, "203.0.113.9", "198.51.100.7"},
		{"Trusted proxy", "10.0.0.2:443", []string{"203.0.113.9"}, "", "203.0.113.9"},
		{"Spoofed hop before the proxy's entry", "10.0.0.2:443", []string{"1.2.3.4, 203.0.113.9"}, "", "203.0.113.9"},
		{"Chain of trusted proxies", "10.0.0.2:443", []string{"203.0.113.9, 10.0.0.7", "10.0.0.3"}, "", "203.0.113.9"},
		{"Only trusted hops", "10.0.0.2:443", []string{"10.0.0.5, 10.0.0.6"}, "", "10.0.0.5"},
		{"Trusted X-Real-IP", "[::1]:443", nil, " 203.0.113.8 ", "203.0.113.8"},
		{"Trusted peer without headers", "[::1]:443", nil, "", "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remote
			for _, v := range tt.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := rl.ClientIP(req); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Rotating X-Forwarded-For must not buy a fresh budget.
func TestRateLimitMiddlewareIgnoresForgedForwardedFor(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimiterConfig{Requests: 2, Window: time.Hour})
	defer rl.Stop()
	handler := RateLimitMiddleware(rl, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/calculate", http.NoBody)
		req.RemoteAddr = "198.51.100.7:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		handler(rec, req)
		codes = append(codes, rec.Code)
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: status = %d, want %d", i, codes[i], want[i])
		}
	}
}

func TestRateLimiterWindow(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimiterConfig{Requests: 2, Window: time.Minute})
	defer rl.Stop()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow("a"); !ok {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	ok, retry := rl.Allow("a")
	if ok || retry != time.Minute {
		t.Errorf("third request: ok=%v retry=%v", ok, retry)
	}
	if ok, _ := rl.Allow("b"); !ok {
		t.Error("other clients have their own budget")
	}

	now = now.Add(time.Minute)
	if ok, _ := rl.Allow("a"); !ok {
		t.Error("budget should reset with the window")
	}

	now = now.Add(3 * time.Minute)
	rl.sweep()
	if rl.Len() != 0 {
		t.Errorf("idle clients not swept: %d left", rl.Len())
	}
	rl.Stop()
}

func TestNewRateLimiterDefaults(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimiterConfig{})
	defer rl.Stop()
	def := DefaultRateLimiterConfig()
	if rl.rate != def.Requests || rl.window != def.Window || rl.cleanup != def.CleanupInterval {
		t.Errorf("defaults not applied: rate=%d window=%v cleanup=%v", rl.rate, rl.window, rl.cleanup)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimiterConfig{Requests: 1})
	defer rl.Stop()
	h := RateLimitMiddleware(rl, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	codes := make([]int, 2)
	for i := range codes {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		codes[i] = rec.Code
		if i == 1 {
			if rec.Header().Get("Retry-After") == "" {
				t.Error("missing Retry-After header")
			}
			if !strings.Contains(rec.Body.String(), "Rate limit exceeded") {
				t.Errorf("unexpected body %q", rec.Body.String())
			}
		}
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

func TestRateLimiterConcurrentAccess(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(RateLimiterConfig{Requests: 50})
	defer rl.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := rl.Allow("shared"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Errorf("allowed %d requests, want 50", allowed)
	}
}

func TestSecurityMiddleware(t *testing.T) {
	t.Parallel()
	next := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	t.Run("Headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SecurityMiddleware(DefaultSecurityConfig(), next)(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy", "Referrer-Policy"} {
			if rec.Header().Get(h) == "" {
				t.Errorf("missing %s", h)
			}
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("wildcard CORS origin not set")
		}
	})

	t.Run("Preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SecurityMiddleware(DefaultSecurityConfig(), next)(rec, httptest.NewRequest(http.MethodOptions, "/", http.NoBody))
		if rec.Code != http.StatusNoContent {
			t.Errorf("preflight status = %d", rec.Code)
		}
	})

	t.Run("AllowedOrigin", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.AllowedOrigins = []string{"https://example.com"}
		for origin, want := range map[string]string{"https://example.com": "https://example.com", "https://evil.test": ""} {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			req.Header.Set("Origin", origin)
			rec := httptest.NewRecorder()
			SecurityMiddleware(cfg, next)(rec, req)
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != want {
				t.Errorf("origin %s: allow-origin = %q, want %q", origin, got, want)
			}
		}
	})

	t.Run("QueryTooLong", func(t *testing.T) {
		cfg := DefaultSecurityConfig()
		cfg.MaxQueryLength = 8
		rec := httptest.NewRecorder()
		SecurityMiddleware(cfg, next)(rec, httptest.NewRequest(http.MethodGet, "/?q=123456789", http.NoBody))
		if rec.Code != http.StatusRequestURITooLong {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()
	var seen string
	h := requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	id, err := uuid.Parse(seen)
	if err != nil || id.Version() != 7 {
		t.Errorf("generated ID %q is not a UUIDv7", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Error("response header does not echo the request ID")
	}

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set(RequestIDHeader, "trace-42")
	h(httptest.NewRecorder(), req)
	if seen != "trace-42" {
		t.Errorf("client request ID not reused, got %q", seen)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s := newTestServer(t, WithStdLogger(log.New(&buf, "", 0)))

	rec := get(s, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	out := buf.String()
	for _, want := range []string{"[INFO] request", "{path /health}", "{status 200}", "{request_id "} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q lacks %q", out, want)
		}
	}
}
