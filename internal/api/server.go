package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/archsim/internal/catalog"
	"github.com/terra-clan/archsim/internal/config"
	"github.com/terra-clan/archsim/internal/conversation"
	"github.com/terra-clan/archsim/internal/evaluation"
	"github.com/terra-clan/archsim/internal/health"
	"github.com/terra-clan/archsim/internal/metrics"
	"github.com/terra-clan/archsim/internal/storage"
)

// Dependencies are the components the handlers call into
type Dependencies struct {
	Catalog      *catalog.Catalog
	Components   *catalog.Components
	Orchestrator *conversation.Orchestrator
	Evaluator    *evaluation.Evaluator
	Store        storage.ProjectStore
	Health       *health.Registry
	Metrics      *metrics.Metrics
}

// Server represents the HTTP API server
type Server struct {
	config config.ServerConfig
	router *chi.Mux
	deps   Dependencies
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	if deps.Store == nil {
		deps.Store = storage.NopStore{}
	}
	if deps.Health == nil {
		deps.Health = health.NewRegistry()
	}

	s := &Server{
		config: cfg,
		deps:   deps,
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack. No request timeout: upstream calls run to completion.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.config.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/evaluate", s.handleEvaluate)

		r.Post("/chat", s.handleChat)
		r.Get("/chat/ws", s.handleChatWS)

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", s.handleSaveProject)
			r.Get("/{id}", s.handleGetProject)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", s.handleListScenarios)
			r.Get("/{id}", s.handleGetScenario)
		})

		r.Get("/components", s.handleListComponents)
	})

	s.router = r
}
