// Package api exposes the returns and statistics pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quantterm/backend/internal/api/handlers"
	"github.com/quantterm/backend/internal/returns"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/logger"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg        *config.Config
	log        *logger.Logger
	httpServer *http.Server
}

// New builds the server with routes wired to the given computer.
// riskFree may be nil.
func New(cfg *config.Config, computer *returns.Computer, riskFree handlers.RiskFreeSource, log *logger.Logger) *Server {
	h := handlers.New(computer, cfg, riskFree, log)
	router := newRouter(h, log)

	return &Server{
		cfg: cfg,
		log: log.WithComponent("api"),
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

// Start runs the server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("HTTP server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}
