// Package server serves the greeting page over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/benaskins/hellodock/internal/config"
)

// Greeting is the HTML fragment returned for GET /.
const Greeting = `<h1>Hello From Node Running Inside Docker !!!</h1>
<h2>changes</h2>
`

const shutdownTimeout = 10 * time.Second

// State represents the lifecycle state of the server.
type State string

const (
	StateStarting  State = "starting"
	StateListening State = "listening"
	StateStopped   State = "stopped"
)

// Server serves the greeting on a single TCP port.
type Server struct {
	cfg    config.Config
	server *http.Server
	logger *slog.Logger
	stdout io.Writer

	mu    sync.Mutex
	state State
	addr  net.Addr
}

// Option configures a Server.
type Option func(*Server)

// WithStdout sets where the startup line is printed. Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(s *Server) {
		s.stdout = w
	}
}

// New creates a server for the given configuration. Requests other than
// GET / get the net/http defaults (404 for unknown paths, 405 for other
// methods on /).
func New(cfg config.Config, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		logger: logger.With("component", "server"),
		stdout: os.Stdout,
		state:  StateStarting,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.greet)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the server's request handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// ListenAndServe binds the configured port and serves until ctx is
// cancelled. A bind failure is returned immediately; there is no retry.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		s.setState(StateStopped)
		return fmt.Errorf("listening on port %d: %w", s.cfg.Port, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on an already bound listener until ctx is cancelled, then
// shuts down gracefully. It takes ownership of ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	port := s.cfg.Port
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}
	fmt.Fprintf(s.stdout, "Server listening on port %d...\n", port)
	s.logger.Debug("listening", "addr", ln.Addr().String())

	s.mu.Lock()
	s.addr = ln.Addr()
	s.state = StateListening
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.setState(StateStopped)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.server.Shutdown(shutdownCtx)
	<-errCh
	s.setState(StateStopped)
	if err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Addr returns the bound address, or nil before the server is listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// State returns the current lifecycle state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Server) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Server) greet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, Greeting)
}
