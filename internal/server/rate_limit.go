package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter implements a fixed-window request budget per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	rate     int
	window   time.Duration
	cleanup  time.Duration
	now      func() time.Time
	proxies  []netip.Prefix
	stopOnce sync.Once
	stopChan chan struct{}
}

// clientLimiter tracks the remaining budget of a single client.
type clientLimiter struct {
	tokens      int
	windowStart time.Time
}

// RateLimiterConfig holds configuration for the rate limiter.
type RateLimiterConfig struct {
	// Requests is the budget of each client per window. Default: 120.
	Requests int
	// Window is the length of a budget window. Default: 1 minute.
	Window time.Duration
	// CleanupInterval is how often idle clients are forgotten. Default: 5 minutes.
	CleanupInterval time.Duration
	// TrustedProxies are the peers whose forwarding headers are believed.
	// Requests from any other peer are identified by RemoteAddr alone.
	TrustedProxies []netip.Prefix
}

// DefaultRateLimiterConfig returns the default rate limiter configuration.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Requests:        120,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
// Call Stop to release it.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	def := DefaultRateLimiterConfig()
	if config.Requests <= 0 {
		config.Requests = def.Requests
	}
	if config.Window <= 0 {
		config.Window = def.Window
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}

	rl := &RateLimiter{
		clients:  make(map[string]*clientLimiter),
		rate:     config.Requests,
		window:   config.Window,
		cleanup:  config.CleanupInterval,
		now:      time.Now,
		proxies:  config.TrustedProxies,
		stopChan: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow consumes one request from the client's budget. When the budget is
// spent it returns false and the time left until the window resets.
func (rl *RateLimiter) Allow(clientIP string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	client, exists := rl.clients[clientIP]
	if !exists || now.Sub(client.windowStart) >= rl.window {
		rl.clients[clientIP] = &clientLimiter{tokens: rl.rate - 1, windowStart: now}
		return true, 0
	}
	if client.tokens > 0 {
		client.tokens--
		return true, 0
	}
	return false, rl.window - now.Sub(client.windowStart)
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// sweep forgets clients idle for more than two windows.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for ip, client := range rl.clients {
		if now.Sub(client.windowStart) > rl.window*2 {
			delete(rl.clients, ip)
		}
	}
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopChan:
			return
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// RateLimitMiddleware rejects requests from clients that exhausted their
// budget with 429 and a Retry-After header.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.Allow(rl.ClientIP(r))
		if !ok {
			secs := int(retry.Round(time.Second) / time.Second)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(ErrorResponse{
				Error:     http.StatusText(http.StatusTooManyRequests),
				Message:   "Rate limit exceeded. Please try again later.",
				RequestID: w.Header().Get(RequestIDHeader),
			})
			return
		}
		next(w, r)
	}
}

// ClientIP identifies the client of r. RemoteAddr is authoritative unless
// the peer is a trusted proxy. X-Forwarded-For is then read from the right,
// and the first hop that is not itself a trusted proxy is the client; a chain
// made only of trusted proxies resolves to its leftmost hop. X-Real-IP is
// used when a trusted peer sends no X-Forwarded-For.
func (rl *RateLimiter) ClientIP(r *http.Request) string {
	peer := stripPort(r.RemoteAddr)
	if !rl.trusted(peer) {
		return peer
	}
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		client := ""
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			client = hop
			if !rl.trusted(hop) {
				break
			}
		}
		if client != "" {
			return client
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func (rl *RateLimiter) trusted(ip string) bool {
	if len(rl.proxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range rl.proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// stripPort handles both "127.0.0.1:8080" and "[::1]:8080".
func stripPort(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.Trim(addr, "[]")
	}
	return host
}
