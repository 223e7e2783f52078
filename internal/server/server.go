// Package server exposes the continued-fraction calculator as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/config"
	apperrors "github.com/agbru/cfcalc/internal/errors"
	"github.com/agbru/cfcalc/internal/logging"
	"github.com/agbru/cfcalc/internal/service"
)

// Server wraps an http.Server with the API routes, its middleware chain
// and graceful shutdown on SIGINT or SIGTERM.
type Server struct {
	factory        arith.CalculatorFactory
	service        service.Service
	cfg            config.AppConfig
	httpServer     *http.Server
	logger         logging.Logger
	shutdownSignal chan os.Signal
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
}

// NewServer creates a Server for the calculators of factory. cfg provides
// the port and the default operand and cache limits; opts override them.
func NewServer(factory arith.CalculatorFactory, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		factory:        factory,
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stdout, "server"),
		shutdownSignal: make(chan os.Signal, 1),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
	}
	if cfg.MaxOperandBits > 0 {
		s.securityConfig.MaxOperandBits = cfg.MaxOperandBits
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.service == nil {
		svcCfg := s.cfg
		svcCfg.MaxOperandBits = s.securityConfig.MaxOperandBits
		s.service = service.NewCalculatorService(s.factory, svcCfg)
	}
	if s.rateLimiter == nil {
		rlCfg := DefaultRateLimiterConfig()
		proxies, err := config.ParseTrustedProxies(cfg.TrustedProxies)
		if err != nil {
			s.logger.Error("ignoring trusted proxies", err)
		}
		rlCfg.TrustedProxies = proxies
		s.rateLimiter = NewRateLimiter(rlCfg)
	}

	mux := http.NewServeMux()
	s.route(mux, "/calculate", s.handleCalculate)
	s.route(mux, "/expand", s.handleExpand)
	s.route(mux, "/round", s.handleRound)
	s.route(mux, "/health", s.handleHealth)
	s.route(mux, "/algorithms", s.handleAlgorithms)
	s.route(mux, "/metrics", s.handleMetrics)

	port := cfg.Port
	if port == "" {
		port = config.DefaultPort
	}
	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}

	return s
}

func (s *Server) route(mux *http.ServeMux, path string, handler http.HandlerFunc) {
	mux.HandleFunc(path, s.wrapWithMiddleware(path, handler))
}

// wrapWithMiddleware applies, from the outside in: request ID, security,
// rate limiting, logging and metrics.
func (s *Server) wrapWithMiddleware(path string, handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(path, handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	wrapped = SecurityMiddleware(s.securityConfig, wrapped)
	return requestIDMiddleware(wrapped)
}

// Handler returns the routed handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured port and blocks until a shutdown signal
// is received or the listener fails.
func (s *Server) Start() error {
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.shutdownSignal)
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			logging.String("addr", s.httpServer.Addr),
			logging.Int("max_operand_bits", s.securityConfig.MaxOperandBits),
			logging.Int("cache_size", s.cfg.CacheSize),
		)
		s.logger.Println("Available endpoints:")
		s.logger.Printf("  GET /calculate?x=<q>&y=<q>&op=<add|sub|mul|div>&algo=<name>&precision=<bits>")
		s.logger.Printf("  GET /expand?q=<q>")
		s.logger.Printf("  GET /round?q=<q>&precision=<bits>")
		s.logger.Printf("  GET /algorithms, /health, /metrics")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-s.shutdownSignal:
		s.logger.Info("shutdown signal received, draining connections")
	case err := <-errCh:
		return apperrors.NewServerError("server failed to start", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
