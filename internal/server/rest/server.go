// Package rest is the HTTP boundary: account endpoints and the role
// guarded routes.
package rest

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/gophgate/internal/logging"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address string
	app     *fiber.App
	logger  logging.Logger
}

func NewHTTPServer(a string, d Deps) *HTTPServer {
	return &HTTPServer{
		address: a,
		app:     NewRouter(d),
		logger:  d.Logger.With("module", "http_server"),
	}
}

// Run serves until ctx is cancelled or the listener fails.
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- s.app.Listen(s.address)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	}
}
