// Package api provides the HTTP API server and handlers for the Cardboard
// coordination service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cardinalitypuzzles/cardboard-server/internal/auth"
	"github.com/cardinalitypuzzles/cardboard-server/internal/service"
	"github.com/cardinalitypuzzles/cardboard-server/internal/validation"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Hunt   *service.HuntService
	Puzzle *service.PuzzleService
	Answer *service.AnswerService
	Search *service.SearchService
}

// Options configures the API server.
type Options struct {
	CORSOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services   Services
	authorizer auth.Authorizer
	validator  *validation.Validator
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services Services, authorizer auth.Authorizer, validator *validation.Validator, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	humaConfig := huma.DefaultConfig("Cardboard API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:   "http",
			Scheme: "bearer",
		},
	}

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		services:   services,
		authorizer: authorizer,
		validator:  validator,
		router:     router,
		api:        api,
		logger:     logger,
	}

	s.router.Get("/health", s.handleHealthCheck)

	s.registerHuntRoutes()
	s.registerPuzzleRoutes()
	s.registerTagRoutes()
	s.registerGuessRoutes()
	s.registerSearchRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
