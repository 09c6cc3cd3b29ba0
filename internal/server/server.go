// Package server assembles the simlane HTTP surface.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	apperrors "github.com/matada/simlane/internal/errors"
	"github.com/matada/simlane/internal/server/handlers"
	"github.com/matada/simlane/internal/server/middleware"
	"github.com/matada/simlane/pkg/simulation"
)

// Options configures the listener.
type Options struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// RateLimit bounds schedule requests per second; zero disables limiting.
	RateLimit float64
}

// Server wraps the HTTP listener and router.
type Server struct {
	host   string
	port   int
	router chi.Router
	http   *http.Server
}

// New builds a server exposing the facade.
func New(opts Options, facade *simulation.Facade) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.WriteError(w, http.StatusNotFound, apperrors.CodeNotFound,
			"route not found", req.Header.Get("X-Request-ID"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.WriteError(w, http.StatusMethodNotAllowed, apperrors.CodeMethodNotAllowed,
			"method not allowed", req.Header.Get("X-Request-ID"))
	})

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	sim := handlers.NewSimulationHandler(facade)
	r.Route("/v1/simulations", func(r chi.Router) {
		r.With(middleware.RateLimit(limiter)).Post("/", sim.Schedule)
		r.Get("/{jobID}", sim.Status)
		r.Get("/{jobID}/result", sim.Collect)
	})
	r.Get("/health", handlers.Health)

	return &Server{
		host:   opts.Host,
		port:   opts.Port,
		router: r,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			Handler:      r,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// ListenAndServe blocks serving HTTP until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
