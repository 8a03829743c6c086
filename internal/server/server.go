// internal/server/server.go
//
// HTTP server helper with robust timeouts.
//
// Production hardening recommends:
//
//   • ReadHeaderTimeout – abort slow-loris headers (5 s)
//   • ReadTimeout       – cap request body reads (10 s)
//   • WriteTimeout      – cap total response time (30 s)
//   • IdleTimeout       – close keep-alives on idle clients (60 s)
//
// Run blocks until ctx is cancelled, then drains in-flight requests for up
// to ShutdownGrace.
//

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ShutdownGrace bounds graceful shutdown.
const ShutdownGrace = 10 * time.Second

// New constructs an *http.Server with sensible defaults.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          zap.NewStdLog(zap.L()),
	}
}

// Run listens on srv.Addr and serves until ctx is done.  ready, when non-nil,
// receives the bound address once the listener is open.
func Run(ctx context.Context, srv *http.Server, ready chan<- net.Addr) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	zap.S().Infow("listening", "addr", ln.Addr().String())
	if ready != nil {
		ready <- ln.Addr()
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	zap.S().Infow("shutting down", "grace", ShutdownGrace)
	sctx, cancel := context.WithTimeout(context.Background(), ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
