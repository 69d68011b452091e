// Package adminsrv implements the JSON admin API for editing relay server
// nodes.
package adminsrv

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/log"
	"github.com/axiomhq/hyperloglog"
)

const (
	// readTimeout is the timeout for reading a whole request.
	readTimeout = 30 * time.Second

	// writeTimeout is the timeout for writing a response.
	writeTimeout = 30 * time.Second

	// shutdownTimeout is how long Close waits for requests in flight.
	shutdownTimeout = 10 * time.Second
)

// Server is the admin API server.
type Server struct {
	store Store

	// clients estimates the number of distinct client addresses.
	clients *hyperloglog.Sketch

	// clientsMu protects clients.
	clientsMu *sync.Mutex

	handler http.Handler

	started    bool
	wg         *sync.WaitGroup
	listenAddr string
	listener   net.Listener
	httpSrv    *http.Server

	// mu protects started, listener, and httpSrv.
	mu *sync.Mutex
}

// type check
var _ io.Closer = (*Server)(nil)

// New creates a new instance of *Server.
func New(cfg *Config) (s *Server, err error) {
	if cfg.Store == nil {
		return nil, errors.Error("adminsrv: store is required")
	}

	if !cfg.ListenAddr.IsValid() {
		return nil, fmt.Errorf("adminsrv: invalid listen addr %s", cfg.ListenAddr)
	}

	s = &Server{
		store:      cfg.Store,
		clients:    hyperloglog.New(),
		clientsMu:  &sync.Mutex{},
		wg:         &sync.WaitGroup{},
		listenAddr: cfg.ListenAddr.String(),
		mu:         &sync.Mutex{},
	}

	s.handler = s.routes()

	return s, nil
}

// Handler returns the HTTP handler serving the admin API.
func (s *Server) Handler() (h http.Handler) {
	return s.handler
}

// Addr returns the address the server listens to or nil if it is not
// started.
func (s *Server) Addr() (addr net.Addr) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	return s.listener.Addr()
}

// Start starts the server.
func (s *Server) Start() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info("adminsrv: starting")

	if s.started {
		return fmt.Errorf("server is already started")
	}

	s.listener, err = net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.httpSrv = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	s.wg.Add(1)
	go s.serve(s.httpSrv, s.listener)

	s.started = true

	log.Info("adminsrv: listening on %s", s.listener.Addr())

	return nil
}

// serve runs srv on l until the server is closed.
func (s *Server) serve(srv *http.Server, l net.Listener) {
	defer s.wg.Done()
	defer log.OnPanic("adminsrv.serve")

	err := srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		log.Info("adminsrv: exiting serve loop as it has been closed")

		return
	}

	log.Error("adminsrv: serving: %s", err)
}

// Close implements the io.Closer interface for *Server.
func (s *Server) Close() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info("adminsrv: closing")

	if !s.started {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = s.httpSrv.Shutdown(ctx)

	log.Info("adminsrv: waiting until requests stop processing")

	s.wg.Wait()
	s.started = false

	log.Info("adminsrv: closed")

	return err
}
