// Package server exposes the image pipelines over HTTP.
//
// Routes:
//
//	GET /api/chart           bar chart JPEG
//	GET /api/mesh            302 to a random seed
//	GET /api/mesh/{seed}     mesh avatar JPEG, rate limited
//	GET /api/og              Open Graph card JPEG
//	GET /api/og/snippet      embed markup for a web framework
//	GET /healthz             liveness
//	GET /metrics             Prometheus exposition
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/meshy-studio/meshy/pkg/config"
	"github.com/meshy-studio/meshy/pkg/errors"
	"github.com/meshy-studio/meshy/pkg/httputil"
	"github.com/meshy-studio/meshy/pkg/pipeline"
	"github.com/meshy-studio/meshy/pkg/ratelimit"
)

// shutdownTimeout bounds how long in-flight renders may finish after the
// server is asked to stop.
const shutdownTimeout = 15 * time.Second

// Options configures a Server.
type Options struct {
	Runner *pipeline.Runner

	// Limiter guards the mesh endpoint. Nil disables rate limiting.
	Limiter *ratelimit.Limiter

	// Metrics is mounted on /metrics when set.
	Metrics http.Handler

	// PublicURL is the origin used in generated snippets.
	PublicURL string

	// TrustProxy rewrites RemoteAddr from forwarding headers before
	// rate limiting. Off, the socket address is used.
	TrustProxy bool

	Logger *log.Logger
}

// Server routes requests to the pipeline runner.
type Server struct {
	runner    *pipeline.Runner
	limiter   *ratelimit.Limiter
	publicURL string
	logger    *log.Logger
	router    chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		runner:    opts.Runner,
		limiter:   opts.Limiter,
		publicURL: opts.PublicURL,
		logger:    opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(s.logRequests)
	r.Use(s.recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteText(w, http.StatusOK, "ok")
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/chart", s.handleChart)
		r.Get("/chart/", s.handleChart)
		r.Get("/mesh", s.handleRandomMesh)
		r.Group(func(r chi.Router) {
			if s.limiter != nil {
				r.Use(s.limiter.Middleware(s.fail))
			}
			r.Get("/mesh/{seed}", s.handleMesh)
		})
		r.Get("/og", s.handleOG)
		r.Get("/og/snippet", s.handleSnippet)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, errors.New(errors.ErrCodeNotFound, "no route for %s", r.URL.Path))
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != http.ErrServerClosed {
		return err
	}
	return nil
}
