package service

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/weatherbot/core/logger"
)

// HTTPServer adapts an http.Handler to the Service contract.
type HTTPServer struct {
	name   string
	server *http.Server
	log    *slog.Logger
	// ready is closed once the listener is bound; used by tests.
	ready chan struct{}
	addr  string
}

// NewHTTPServer builds a named HTTP service listening on addr.
func NewHTTPServer(name, addr string, handler http.Handler, log *slog.Logger) *HTTPServer {
	if log == nil {
		log = slog.Default()
	}
	return &HTTPServer{
		name: name,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log:   log,
		ready: make(chan struct{}),
	}
}

// Name implements Service.
func (s *HTTPServer) Name() string { return s.name }

// Handler returns the root handler.
func (s *HTTPServer) Handler() http.Handler { return s.server.Handler }

// Addr reports the bound address once the listener is up.
func (s *HTTPServer) Addr() string {
	<-s.ready
	return s.addr
}

// Start binds the listener and serves until Stop.
func (s *HTTPServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		close(s.ready)
		return err
	}
	s.addr = ln.Addr().String()
	close(s.ready)

	logger.LogEvent(ctx, s.log, slog.LevelInfo, "listen",
		slog.String("service", s.name),
		slog.String("listen", s.addr),
	)
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
