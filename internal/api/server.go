// Package api provides the HTTP API server and handlers for PauseMemo.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pausememo/pausememo/internal/http/response"
	"github.com/pausememo/pausememo/internal/sse"
	"github.com/pausememo/pausememo/internal/store"
)

// Options tune the HTTP surface.
type Options struct {
	Version     string
	CORSOrigins []string
	// RateLimit is requests per minute per client IP. Zero disables limiting.
	RateLimit int
	RateBurst int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	backend     store.Backend
	services    *Services
	sseManager  *sse.Manager
	sseHandler  *sse.Handler
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
	rateLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(backend store.Backend, services *Services, sseManager *sse.Manager, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		backend:    backend,
		services:   services,
		sseManager: sseManager,
		router:     chi.NewRouter(),
		logger:     logger,
	}
	if sseManager != nil {
		s.sseHandler = sse.NewHandler(sseManager, logger)
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = opts.RateLimit
		}
		s.rateLimiter = NewRateLimiter(opts.RateLimit, time.Minute, burst)
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("PauseMemo API", opts.Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	if len(opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if s.rateLimiter != nil {
		s.router.Use(RateLimitMiddleware(s.rateLimiter, s.logger))
	}

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerInterruptionRoutes()
	s.registerResumeRoutes()
	s.registerSummaryRoutes()
	s.registerTagRoutes()
	s.registerSettingsRoutes()
	s.registerDataRoutes()
	s.registerReminderRoutes()

	// Event stream stays outside huma; it writes its own framing.
	if s.sseHandler != nil {
		s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}
}
