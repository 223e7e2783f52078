package server

import (
	"log"
	"time"

	"github.com/agbru/cfcalc/internal/logging"
	"github.com/agbru/cfcalc/internal/service"
)

// Option defines a functional option for configuring a Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server. A nil logger keeps the
// default one.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStdLogger routes the server logs to a standard library logger.
func WithStdLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logging.NewStdLoggerAdapter(logger)
		}
	}
}

// WithService replaces the evaluation service, typically with a mock.
func WithService(svc service.Service) Option {
	return func(s *Server) {
		if svc != nil {
			s.service = svc
		}
	}
}

// WithTimeouts sets custom timeout configuration for the server.
func WithTimeouts(timeouts Timeouts) Option {
	return func(s *Server) {
		s.timeouts = timeouts
	}
}

// Timeouts holds timeout configuration for the HTTP server.
type Timeouts struct {
	// RequestTimeout bounds a single evaluation.
	RequestTimeout time.Duration
	// ShutdownTimeout bounds the graceful shutdown.
	ShutdownTimeout time.Duration
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the keep-alive idle timeout.
	IdleTimeout time.Duration
}

// DefaultServerTimeouts returns the timeouts used when none are given.
func DefaultServerTimeouts() Timeouts {
	return Timeouts{
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    time.Minute,
		IdleTimeout:     2 * time.Minute,
	}
}
