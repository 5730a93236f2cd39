// Package server exposes upload sessions over a small JSON HTTP API.
//
// Routes:
//
//	GET    /healthz                   → liveness
//	POST   /api/uploads               → new session from multipart field "file"
//	PUT    /api/uploads/{id}          → replace the session's file
//	GET    /api/uploads/{id}          → state, file summary, preview rows
//	POST   /api/uploads/{id}/commit   → commit the preview (owner from X-User-ID)
//	DELETE /api/uploads/{id}          → discard the session's file
//	GET    /metrics                   → Prometheus exposition, when configured
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/datasource/file"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
)

// Config controls server startup.
type Config struct {
	Addr            string
	MaxUploadBytes  int64
	SessionTTL      time.Duration
	SessionCapacity int
	ShutdownTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = file.DefaultMaxBytes
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 30 * time.Minute
	}
	if c.SessionCapacity <= 0 {
		c.SessionCapacity = 256
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	return c
}

// SessionFactory returns a fresh idle session.
type SessionFactory func() *ingest.Session

// Option customises a Server.
type Option func(*Server)

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// Server wires the router, the session registry and the http.Server.
type Server struct {
	cfg      Config
	log      logrus.FieldLogger
	sessions *registry
	metrics  http.Handler
	router   chi.Router
}

// New builds a Server. newSession is called once per upload.
func New(cfg Config, log logrus.FieldLogger, newSession SessionFactory, opts ...Option) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cfg = cfg.withDefaults()
	s := &Server{
		cfg:      cfg,
		log:      log.WithField("component", "http"),
		sessions: newRegistry(cfg.SessionCapacity, cfg.SessionTTL, newSession),
	}
	for _, o := range opts {
		o(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/uploads", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleStatus)
			r.Put("/", s.handleReplace)
			r.Delete("/", s.handleCancel)
			r.Post("/commit", s.handleCommit)
		})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	s.router = r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.WithField("addr", s.cfg.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		if err := srv.Shutdown(shCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
