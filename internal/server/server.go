// Package server wires the HTTP surface: JSON API routes per module, the
// rendered dashboard pages and the health and system endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/modules/alerts"
	"github.com/trendlotto/invest/internal/modules/auth"
	"github.com/trendlotto/invest/internal/modules/billing"
	"github.com/trendlotto/invest/internal/modules/community"
	"github.com/trendlotto/invest/internal/modules/leaderboard"
	"github.com/trendlotto/invest/internal/modules/market"
	"github.com/trendlotto/invest/internal/modules/portfolio"
	"github.com/trendlotto/invest/internal/modules/review"
	"github.com/trendlotto/invest/internal/modules/seo"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	DevMode bool

	Auth        *auth.Handler
	AuthService *auth.Service
	Portfolio   *portfolio.Handler
	Alerts      *alerts.Handler
	Community   *community.Handler
	Billing     *billing.Handler
	Leaderboard *leaderboard.Handler
	Market      *market.Handler
	Review      *review.Handler
	SEO         *seo.Handler
	System      *SystemHandlers
	Pages       *PageHandlers
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    Config
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	// Crawler and social-preview endpoints live at the root.
	s.cfg.SEO.RegisterRoutes(s.router)

	// Rendered pages
	s.cfg.Pages.RegisterRoutes(s.router)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.cfg.System.HandleStatus)
		})

		// Public routes: anyone can read market data, reviews, rankings
		// and discussions, and register or log in.
		s.cfg.Auth.RegisterRoutes(r)
		s.cfg.Market.RegisterRoutes(r)
		s.cfg.Review.RegisterRoutes(r)
		s.cfg.Leaderboard.RegisterRoutes(r)
		s.cfg.Community.RegisterPublicRoutes(r)
		s.cfg.SEO.RegisterAPIRoutes(r)

		// Everything below requires a valid Bearer token.
		r.Group(func(r chi.Router) {
			r.Use(s.cfg.AuthService.RequireUser)
			s.cfg.Portfolio.RegisterRoutes(r)
			s.cfg.Alerts.RegisterRoutes(r)
			s.cfg.Billing.RegisterRoutes(r)
			s.cfg.Community.RegisterProtectedRoutes(r)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the assembled router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
