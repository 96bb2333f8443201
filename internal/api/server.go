// Package api serves the claim routing HTTP endpoints.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/claim-router/internal/monitoring"
	"github.com/sells-group/claim-router/internal/pipeline"
	"github.com/sells-group/claim-router/internal/store"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to the Smart Insurance Claim Routing Assistant API"

// maxBodyBytes caps a submitted claim.
const maxBodyBytes = 1 << 20

// Options configures the HTTP surface.
type Options struct {
	// CORSOrigins lists allowed origins; empty allows all.
	CORSOrigins []string
	// RateLimitRPS enables per-client rate limiting when > 0.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server exposes a Pipeline over HTTP.
type Server struct {
	pipeline *pipeline.Pipeline
	store    store.Store
	stats    *monitoring.Collector
	opts     Options
}

// NewServer creates a Server. The pipeline's store backs the dashboard,
// claim lookup and stats endpoints; a pipeline without a store gets an
// in-memory one.
func NewServer(p *pipeline.Pipeline, opts Options) *Server {
	st := p.Store()
	if st == nil {
		st = store.NewMemory()
		p = p.WithStore(st)
	}
	return &Server{
		pipeline: p,
		store:    st,
		stats:    monitoring.NewCollector(st),
		opts:     opts,
	}
}

// Handler builds the chi router with middleware and routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.opts.RateLimitRPS > 0 {
		r.Use(newClientLimiter(s.opts.RateLimitRPS, s.opts.RateLimitBurst, limiterIdleTTL).middleware)
	}

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Post("/submit-claim", s.handleSubmitClaim)
	r.Get("/adjuster-dashboard", s.handleDashboard)
	r.Get("/claim/{claimID}", s.handleGetClaim)
	r.Get("/stats", s.handleStats)

	return r
}
