// Package server provides the HTTP surface for the comment service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JonaN-tech/kilocode-ml-service/internal/config"
	"github.com/JonaN-tech/kilocode-ml-service/internal/engine"
	"github.com/JonaN-tech/kilocode-ml-service/internal/fetch"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Server exposes the comment-generation pipeline over HTTP.
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	log        *logrus.Logger
	service    *engine.Service
	fetcher    *fetch.Fetcher
	validate   *validator.Validate
}

// New creates a Server around an already-wired pipeline service.
func New(cfg *config.Config, log *logrus.Logger, service *engine.Service, fetcher *fetch.Fetcher) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		service:  service,
		fetcher:  fetcher,
		validate: validator.New(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /ml/generate-comment", s.handleGenerateComment)
	mux.HandleFunc("POST /ml/test-direct", s.handleTestDirect)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the underlying HTTP handler (used by tests).
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("server_listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		s.log.WithField("signal", sig.String()).Info("server_shutting_down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
