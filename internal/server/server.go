// Package server exposes the multiplication metrics over HTTP for
// Prometheus while the CLI runs.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/logging"
)

// Server serves /metrics and /health.
type Server struct {
	httpServer *http.Server
	logger     logging.Logger
	metrics    *Metrics
	timeouts   Timeouts
	listener   net.Listener
	errCh      chan error
}

// NewServer creates a Server listening on addr once started.
//
// Parameters:
//   - addr: The listen address, e.g. ":9090" or "127.0.0.1:0".
//   - opts: Optional functional options (WithLogger, WithTimeouts).
//
// Returns:
//   - *Server: The configured server.
func NewServer(addr string, opts ...Option) *Server {
	s := &Server{
		logger:   logging.Nop(),
		metrics:  NewMetrics(),
		timeouts: DefaultServerTimeouts(),
		errCh:    make(chan error, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.wrapWithMiddleware(s.handleMetrics))
	mux.HandleFunc("/health", s.wrapWithMiddleware(s.handleHealth))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: s.timeouts.ReadTimeout,
		ReadTimeout:       s.timeouts.ReadTimeout,
		WriteTimeout:      s.timeouts.WriteTimeout,
		IdleTimeout:       s.timeouts.IdleTimeout,
	}
	return s
}

// wrapWithMiddleware applies Logging -> Metrics -> Handler.
func (s *Server) wrapWithMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return s.loggingMiddleware(s.metricsMiddleware(handler))
}

// loggingMiddleware logs each request at debug level.
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		s.logger.Debug("request served",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Duration("duration", time.Since(start)))
	}
}

// Start binds the listener and serves in the background. It returns once
// the address is bound, so that a bad address is reported immediately.
//
// Returns:
//   - net.Addr: The bound address.
//   - error: A ServerError if the address cannot be bound.
func (s *Server) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, apperrors.NewServerError("server failed to start", err)
	}
	s.listener = ln
	s.logger.Info("metrics server started", logging.String("addr", ln.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- err
		}
		close(s.errCh)
	}()
	return ln.Addr(), nil
}

// Shutdown stops the server gracefully within the shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}
	if err := <-s.errCh; err != nil {
		return apperrors.NewServerError("server stopped unexpectedly", err)
	}
	s.logger.Info("metrics server stopped")
	return nil
}

// handleHealth reports that the process is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

// ErrorResponse is the JSON body of an error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, ErrorResponse{Error: http.StatusText(statusCode), Message: message})
}
