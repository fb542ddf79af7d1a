package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"log/slog"
)

// HTTPServer owns the listener lifecycle shared by the four services.
type HTTPServer struct {
	addr    string
	logger  *slog.Logger
	httpSrv *http.Server
}

func NewHTTPServer(addr string, handler http.Handler, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPServer{
		addr:   addr,
		logger: logger,
		httpSrv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start binds the address and serves in the background. Binding errors are
// returned; serve errors after that are logged rather than surfaced, since
// by then the caller is blocked on its shutdown signal.
func (s *HTTPServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.httpSrv.BaseContext = func(net.Listener) context.Context { return ctx }

	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", "error", err)
		}
	}()
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server", "addr", s.addr)
	return s.httpSrv.Shutdown(ctx)
}
