// Package server provides the HTTP server and routing for Stagehand.
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

	"github.com/aristath/stagehand/internal/config"
	"github.com/aristath/stagehand/internal/currency"
	"github.com/aristath/stagehand/internal/database"
	"github.com/aristath/stagehand/internal/events"
	"github.com/aristath/stagehand/internal/modules/finance"
	"github.com/aristath/stagehand/internal/modules/prefs"
	"github.com/aristath/stagehand/internal/modules/shows"
	"github.com/aristath/stagehand/internal/modules/travel"
	"github.com/aristath/stagehand/internal/scheduler"
	"github.com/aristath/stagehand/internal/services"
)

// Config holds server configuration
type Config struct {
	Log          zerolog.Logger
	Config       *config.Config
	TourDB       *database.DB
	CacheDB      *database.DB
	Scheduler    *scheduler.Scheduler
	RateProvider *currency.Provider
	EventBus     *events.Bus
	ShowRepo     *shows.Repository
	TravelRepo   *travel.Repository
	PrefsRepo    *prefs.Repository
	Finance      *finance.Service
	RateSync     *services.RateSyncService
}

// Server represents the HTTP server
type Server struct {
	router       *chi.Mux
	server       *http.Server
	log          zerolog.Logger
	cfg          *config.Config
	tourDB       *database.DB
	cacheDB      *database.DB
	scheduler    *scheduler.Scheduler
	rateProvider *currency.Provider
	eventBus     *events.Bus
	showRepo     *shows.Repository
	travelRepo   *travel.Repository
	prefsRepo    *prefs.Repository
	finance      *finance.Service
	rateSync     *services.RateSyncService
	startedAt    time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		log:          cfg.Log.With().Str("component", "server").Logger(),
		cfg:          cfg.Config,
		tourDB:       cfg.TourDB,
		cacheDB:      cfg.CacheDB,
		scheduler:    cfg.Scheduler,
		rateProvider: cfg.RateProvider,
		eventBus:     cfg.EventBus,
		showRepo:     cfg.ShowRepo,
		travelRepo:   cfg.TravelRepo,
		prefsRepo:    cfg.PrefsRepo,
		finance:      cfg.Finance,
		rateSync:     cfg.RateSync,
		startedAt:    time.Now().UTC(),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Event streaming - registered first so SSE/WS are never shadowed
		eventsStream := NewEventsStreamHandler(s.eventBus, s.log)
		r.Get("/events/stream", eventsStream.ServeHTTP)
		eventsWS := NewEventsWSHandler(s.eventBus, s.cfg.CORSOrigins, s.log)
		r.Get("/events/ws", eventsWS.ServeHTTP)

		// Ranked actions
		r.Get("/actions", s.handleGetActions)
		r.Post("/actions/recompute", s.handleRecomputeActions)
		r.Post("/actions/{key}/dismiss", s.handleDismissAction)
		r.Post("/actions/{key}/snooze", s.handleSnoozeAction)

		// Action preferences
		r.Get("/prefs", s.handleListPrefs)
		r.Delete("/prefs/{key}", s.handleClearPref)

		// Shows
		r.Get("/shows", s.handleListShows)
		r.Get("/shows/{id}", s.handleGetShow)
		r.Put("/shows/{id}", s.handlePutShow)
		r.Delete("/shows/{id}", s.handleDeleteShow)

		// Travel
		r.Get("/travel", s.handleListTravel)
		r.Put("/travel/{id}", s.handlePutTravel)
		r.Delete("/travel/{id}", s.handleDeleteTravel)

		// Finance
		r.Get("/finance/summary", s.handleFinanceSummary)
		r.Get("/rates", s.handleGetRates)
		r.Post("/rates/sync", s.handleSyncRates)

		// System
		r.Get("/system/status", s.handleSystemStatus)
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

// Router exposes the chi router, mainly for tests.
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
