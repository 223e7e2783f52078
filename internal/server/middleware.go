package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agbru/cfcalc/internal/logging"
)

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the identifier attached to ctx by the request ID
// middleware, or "" when there is none.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithRateLimiter sets a custom rate limiter for the server.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) {
		s.rateLimiter = rl
	}
}

// WithSecurityConfig sets a custom security configuration for the server.
func WithSecurityConfig(config SecurityConfig) Option {
	return func(s *Server) {
		s.securityConfig = config
	}
}

// WithMaxOperandBits sets the maximum operand size accepted by the API.
func WithMaxOperandBits(bits int) Option {
	return func(s *Server) {
		s.securityConfig.MaxOperandBits = bits
	}
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestIDMiddleware reuses a client supplied X-Request-ID or generates a
// time-ordered UUID, then exposes it on the response and the context.
func requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.Must(uuid.NewV7()).String()
		}
		w.Header().Set(RequestIDHeader, id)
		next(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	}
}

// loggingMiddleware logs every request with its status and duration.
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		s.logger.Info("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.String("remote", s.rateLimiter.ClientIP(r)),
			logging.String("request_id", RequestID(r.Context())),
			logging.Int("status", rec.status),
			logging.Duration("duration", time.Since(start)),
		)
	}
}
