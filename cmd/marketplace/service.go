package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	marketplace "github.com/goliatone/go-marketplace"
	"github.com/goliatone/go-router"
)

const shutdownTimeout = 10 * time.Second

// HTTPService runs the fiber backed server as a supervised service
type HTTPService struct {
	app    router.Server[*fiber.App]
	addr   string
	logger marketplace.Logger
}

// NewHTTPService wraps app so a suture supervisor can run and restart it
func NewHTTPService(app router.Server[*fiber.App], addr string, logger marketplace.Logger) *HTTPService {
	return &HTTPService{app: app, addr: addr, logger: logger}
}

// Serve listens until ctx is done and then drains open connections
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Serve(s.addr)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown failed", "error", err)
		}
		return ctx.Err()
	case err := <-errCh:
		s.logger.Error("http server stopped", "error", err)
		return err
	}
}

func (s *HTTPService) String() string {
	return "http " + s.addr
}
