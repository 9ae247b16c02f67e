package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/teranos/qfactor/errors"
	"github.com/teranos/qfactor/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 120 * time.Second
)

func (s *FactorServer) setState(state ServerState) {
	s.state.Store(int32(state))
	s.logger.Infow("server state changed", logger.FieldState, state.String())
}

// Listen binds addr without serving, so callers learn the real port when
// addr ends in ":0".
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "failed to listen on %s", addr),
			"choose another port with --port or server.port")
	}
	return ln, nil
}

// Serve serves HTTP on ln until Stop is called. It returns nil after a
// graceful shutdown.
func (s *FactorServer) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}
	srv := s.httpServer
	s.mu.Unlock()

	s.logger.Infow("HTTP server listening", logger.FieldAddress, ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server failed")
	}
	return nil
}

// Start listens on addr and serves until Stop
func (s *FactorServer) Start(addr string) error {
	ln, err := Listen(addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Stop drains the server: new WebSocket upgrades are refused, clients are
// closed, and in-flight HTTP requests get until ctx expires (ShutdownTimeout
// when ctx has no deadline).
func (s *FactorServer) Stop(ctx context.Context) error {
	if s.State() == ServerStateStopped {
		return ErrServerNotRunning
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ShutdownTimeout)
		defer cancel()
	}

	s.logger.Infow("initiating server shutdown")
	s.setState(ServerStateDraining)

	s.mu.Lock()
	srv := s.httpServer
	clients := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	var shutdownErr error
	if srv != nil {
		shutdownErr = srv.Shutdown(ctx)
	}

	if len(clients) > 0 {
		s.logger.Infow("closing websocket clients", logger.FieldCount, len(clients))
	}
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warnw("shutdown timed out waiting for websocket clients")
		shutdownErr = errors.CombineErrors(shutdownErr, ctx.Err())
	}

	s.setState(ServerStateStopped)
	if shutdownErr != nil {
		return errors.Wrap(shutdownErr, "server shutdown")
	}
	return nil
}
