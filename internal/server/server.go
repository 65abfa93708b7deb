// Package server implements the qrsmith render HTTP API.
//
// The service exposes the pipeline over two endpoints:
//
//	POST /api/v1/render   render a symbol from JSON options
//	GET  /healthz         liveness probe
//
// Render responses default to the binary image of the first requested
// format; clients that accept application/json receive an envelope with
// base64 images, warnings, and stats instead. Every response carries an
// X-Request-ID header, and render responses add X-Cache: HIT or MISS.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/pixelglyph/qrsmith/pkg/pipeline"
)

const (
	// shutdownTimeout bounds how long in-flight renders may finish after
	// the run context is cancelled.
	shutdownTimeout = 10 * time.Second

	// maxBodyBytes caps request bodies. Logo bytes arrive base64-encoded
	// inside the JSON payload, so the cap must hold a full logo image.
	maxBodyBytes = 8 << 20
)

// Config holds the server dependencies.
type Config struct {
	Addr   string
	Logger *log.Logger
	Runner *pipeline.Runner
}

// Server is the render HTTP service.
type Server struct {
	logger *log.Logger
	runner *pipeline.Runner
	http   *http.Server
}

// New assembles the router and returns a server ready to run.
func New(cfg Config) *Server {
	s := &Server{
		logger: cfg.Logger,
		runner: cfg.Runner,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/render", s.handleRender)
	})

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Run serves until the context is cancelled, then drains in-flight
// requests before returning.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	s.logger.Info("server started", "addr", s.http.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
