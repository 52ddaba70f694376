// Package server implements the HTTP interface of the chunking service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanonone/kektorrag/internal/config"
	"github.com/sanonone/kektorrag/internal/mcp"
	"github.com/sanonone/kektorrag/pkg/rag"
)

// Version is reported by the service banner and the MCP implementation info.
const Version = "0.1.0"

// ServiceName is the name reported by the service banner.
const ServiceName = "kektorrag"

// Server holds the HTTP interface and the chunking pipeline behind it.
type Server struct {
	cfg      config.Config
	pipeline *rag.Pipeline
	logger   *zap.Logger

	handler    http.Handler
	httpServer *http.Server
}

// NewServer wires routes and middlewares around an existing pipeline.
func NewServer(cfg config.Config, pipeline *rag.Pipeline, logger *zap.Logger) (*Server, error) {
	if pipeline == nil {
		return nil, errors.New("server: nil pipeline")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		logger:   logger,
	}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	if cfg.MCPEnabled {
		mux.Handle("/mcp", mcp.NewHTTPHandler(mcp.NewMCPServer(pipeline, Version)))
	}

	// Chain middlewares: RequestID -> Recovery -> Logging -> CORS -> Mux
	// Recovery must wrap everything that can panic; RequestID goes first so
	// both Recovery and Logging can see the id.

	var handler http.Handler = mux

	// 1. CORS (Inner)
	handler = s.CORSMiddleware(handler)

	// 2. Logging - Logs duration and status, records metrics
	handler = s.LoggingMiddleware(handler)

	// 3. Recovery - Catches panics
	handler = s.RecoveryMiddleware(handler)

	// 4. Request ID (Outer)
	handler = s.RequestIDMiddleware(handler)

	s.handler = handler
	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until Shutdown is called.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", zap.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests,
// up to the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Starting graceful shutdown of HTTP server")

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	return nil
}
