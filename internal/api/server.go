package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"botlint/internal/auth"
	"botlint/internal/config"
	"botlint/internal/engine"
)

// Server represents the HTTP API server
type Server struct {
	router  *http.ServeMux
	server  *http.Server
	addr    string
	cfg     config.ServerConfig
	logger  *slog.Logger
	engine  *engine.Engine
	tokens  *auth.Verifier
	limiter *auth.RateLimiter
	metrics *MetricsCollector
	started time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(cfg config.ServerConfig, eng *engine.Engine, logger *slog.Logger) *Server {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	s := &Server{
		addr:    addr,
		cfg:     cfg,
		logger:  logger,
		engine:  eng,
		router:  http.NewServeMux(),
		tokens:  auth.NewVerifier(cfg.TokenHash),
		limiter: auth.NewRateLimiter(cfg.RateLimit, logger),
		started: time.Now(),
	}
	if cfg.Metrics {
		s.metrics = NewMetricsCollector()
	}

	s.registerRoutes()

	handler := s.applyMiddleware(s.router)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.addr
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting HTTP server",
		"addr", s.addr,
		"auth", s.tokens.Enabled(),
		"rate_limit", s.limiter.Enabled())

	s.limiter.StartCleanup(ctx)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shut down successfully")
	return nil
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// applyMiddleware wraps the handler with middleware in the correct order
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last one wraps first)
	handler = AuthMiddleware(s.tokens)(handler)
	handler = RateLimitMiddleware(s.limiter, s.metrics)(handler)
	handler = RecoveryMiddleware(s.logger)(handler)
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = CORSMiddleware(s.cfg.CORSOrigins)(handler)
	return handler
}
