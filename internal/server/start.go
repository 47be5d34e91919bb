package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Start runs the HTTP server until an interrupt or terminate signal arrives,
// then shuts down the modules and the server.
func (s *Server) Start(addr string) error {
	s.startSweeper()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "addr", addr)
		if err := s.E.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		s.logger.Info("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// startSweeper removes expired session files in the background until Shutdown.
func (s *Server) startSweeper() {
	if s.sweeper == nil || s.stopSweep != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stopSweep = cancel
	go s.sweeper.Run(ctx, sessionSweepInterval)
}

// Shutdown stops the session sweeper, the modules in reverse boot order, then
// the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stopSweep != nil {
		s.stopSweep()
	}
	var errs []error
	for i := len(s.modules) - 1; i >= 0; i-- {
		if err := s.modules[i].Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.E.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
