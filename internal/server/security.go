package server

import (
	"net/http"
	"slices"
	"strings"

	"github.com/agbru/cfcalc/internal/config"
)

// SecurityConfig holds the security headers and request limits of the API.
type SecurityConfig struct {
	// EnableCORS enables Cross-Origin Resource Sharing headers.
	EnableCORS bool
	// AllowedOrigins lists the allowed CORS origins; "*" allows all.
	AllowedOrigins []string
	// AllowedMethods lists the HTTP methods announced for CORS.
	AllowedMethods []string
	// MaxOperandBits bounds the numerator and denominator of every operand.
	// Larger operands are rejected with 413. Zero disables the check.
	MaxOperandBits int
	// MaxQueryLength bounds the raw query string. Zero disables the check.
	MaxQueryLength int
}

// DefaultSecurityConfig returns the default security configuration.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxOperandBits: config.DefaultMaxOperandBits,
		MaxQueryLength: 64 << 10,
	}
}

// SecurityMiddleware sets the hardening headers, answers CORS preflight
// requests and rejects oversized query strings.
func SecurityMiddleware(cfg SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if cfg.EnableCORS {
			origin := r.Header.Get("Origin")
			if slices.Contains(cfg.AllowedOrigins, "*") {
				h.Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" && slices.Contains(cfg.AllowedOrigins, origin) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			if h.Get("Access-Control-Allow-Origin") != "" {
				h.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", "Content-Type, Accept, "+RequestIDHeader)
				h.Set("Access-Control-Expose-Headers", RequestIDHeader)
				h.Set("Access-Control-Max-Age", "86400")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		if cfg.MaxQueryLength > 0 && len(r.URL.RawQuery) > cfg.MaxQueryLength {
			writeError(w, http.StatusRequestURITooLong, "Query string too long")
			return
		}

		next(w, r)
	}
}
