// Package httpapi exposes the authentication core over HTTP: typed
// request/response contracts for register, login and identity lookup,
// plus the status route, wired onto a chi router.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	baiyuspace "github.com/baiyuheniao/BaiyuSpace"
	"github.com/baiyuheniao/BaiyuSpace/middleware"
)

// Server holds the HTTP surface of the auth subsystem.
type Server struct {
	engine  *baiyuspace.Engine
	log     *zap.Logger
	dev     bool
	metrics *metrics
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithLogger sets the request logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) ServerOption {
	return func(s *Server) { s.log = log }
}

// WithDevMode includes error detail in 500 responses. Never enable it in
// production.
func WithDevMode(dev bool) ServerOption {
	return func(s *Server) { s.dev = dev }
}

// NewServer creates the HTTP surface for the given engine.
func NewServer(engine *baiyuspace.Engine, opts ...ServerOption) *Server {
	s := &Server{
		engine:  engine,
		log:     zap.NewNop(),
		metrics: newMetrics(prometheus.NewRegistry()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router assembles the route table. The /me route sits behind the strict
// gate; register and login are public.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.recoverPanics)
	r.Use(s.logRequests)
	r.Use(s.countRequests)
	r.Use(clientIP)

	r.Get("/api/status", s.handleStatus)
	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.With(middleware.Require(s.engine)).Get("/me", s.handleMe)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	return r
}
