// Package server exposes rule dispatch over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/metrics"
	"github.com/specialistvlad/extforge/internal/model"
)

// Dispatcher is the subset of *dispatch.Dispatcher the server needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, class string, bag map[string]any) (any, error)
	Describe(ctx context.Context, class string) ([]model.ArgumentDeclaration, error)
	Classes() []string
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer serves gatherer's metrics on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithHealthCheck adds a dependency probe to /health.
func WithHealthCheck(check func(ctx context.Context) error) Option {
	return func(s *Server) { s.healthCheck = check }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// Server routes HTTP requests to a Dispatcher.
type Server struct {
	dispatcher  Dispatcher
	gatherer    prometheus.Gatherer
	healthCheck func(ctx context.Context) error
	logger      *slog.Logger
	router      *chi.Mux
}

// New builds the router.
func New(d Dispatcher, opts ...Option) *Server {
	s := &Server{dispatcher: d, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(s.gatherer))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/classes", s.handleListClasses)
		r.Get("/classes/*", s.handleDescribeClass)
		r.Post("/dispatch/*", s.handleDispatch)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger attaches a request-scoped logger to the context and logs
// each finished request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctxlog.WithLogger(r.Context(), logger)))

		logger.Debug("HTTP request served.",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
		)
	})
}
