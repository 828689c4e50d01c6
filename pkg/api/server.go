package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
)

// Server is the hub's HTTP server.
//
// One listener carries the whole surface: the WebSocket relay endpoint,
// the JSON API, health probes, Prometheus metrics, and the landing page.
// WebSocket connections are hijacked at upgrade time, so graceful
// shutdown here drains plain HTTP requests only; live relay connections
// are drained by the WebSocket adapter.
type Server struct {
	httpServer   *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer builds the router and returns a server that is not yet
// listening. Call Start to serve.
func NewServer(config Config, deps Deps) *Server {
	config.applyDefaults()

	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
			Handler:      NewRouter(config, deps),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		config: config,
	}
}

// Start binds the listener and blocks until ctx is cancelled or serving
// fails. Cancellation triggers a graceful drain bounded by
// Config.ShutdownTimeout; a clean drain returns nil.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}

	logger.Info("HTTP server listening", logger.Addr(ln.Addr().String()))
	logger.Debug("endpoints available",
		"ws", fmt.Sprintf("ws://localhost:%d/ws", s.config.Port),
		"health", fmt.Sprintf("http://localhost:%d/health", s.config.Port),
		"qrcode", fmt.Sprintf("http://localhost:%d/api/qrcode", s.config.Port),
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		logger.Info("HTTP server shutdown signal received")
		// ctx is already done here and cannot bound the drain.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server failed: %w", err)
	}
}

// Stop drains in-flight requests until ctx expires. Safe to call more
// than once and concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if serr := s.httpServer.Shutdown(ctx); serr != nil {
			logger.Error("HTTP server shutdown error", logger.Err(serr))
			err = fmt.Errorf("HTTP server shutdown: %w", serr)
			return
		}
		logger.Info("HTTP server stopped gracefully")
	})
	return err
}

// Port returns the TCP port the server is configured to listen on.
func (s *Server) Port() int {
	return s.config.Port
}
