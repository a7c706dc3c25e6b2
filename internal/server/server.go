package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/stockscore/internal/database"
	"github.com/aristath/stockscore/internal/di"
	historyhandlers "github.com/aristath/stockscore/internal/modules/history/handlers"
	scoringhandlers "github.com/aristath/stockscore/internal/modules/scoring/api/handlers"
	watchlisthandlers "github.com/aristath/stockscore/internal/modules/watchlist/handlers"
	"github.com/aristath/stockscore/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Version is reported by /health; set at build time with -ldflags
var Version = "dev"

// requestTimeout bounds plain HTTP requests. A full batch at the default
// rate limit needs about 30s.
const requestTimeout = 90 * time.Second

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	DataDir   string
	Container *di.Container    // DI container with all services
	Jobs      *di.JobInstances // optional, enables manual triggers
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	databases      []*database.DB
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	container := cfg.Container

	var databases []*database.DB
	for _, db := range []*database.DB{container.HistoryDB, container.CacheDB} {
		if db != nil {
			databases = append(databases, db)
		}
	}

	var backups BackupLister
	if container.BackupService != nil {
		backups = container.BackupService
	}

	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		port:      cfg.Port,
		databases: databases,
		container: container,
	}
	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.DataDir, databases, triggerableJobs(cfg.Jobs), backups)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func triggerableJobs(jobs *di.JobInstances) []scheduler.Job {
	if jobs == nil {
		return nil
	}
	return []scheduler.Job{
		jobs.WatchlistAnalysis,
		jobs.CacheCleanup,
		jobs.HistoryCleanup,
		jobs.CheckDatabases,
		jobs.Backup,
	}
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

	// Timeout (WebSocket streams manage their own lifetime)
	s.router.Use(timeoutUnlessUpgrade(requestTimeout))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		s.systemHandlers.RegisterRoutes(r)

		// Scoring: analyze, batch, batch stream, search, presets, weights
		scoringHandler := scoringhandlers.NewHandlers(s.container.AnalysisService, s.container.NaverClient, s.log)
		scoringHandler.RegisterRoutes(r)

		historyHandler := historyhandlers.NewHandler(s.container.HistoryRepo, s.log)
		historyHandler.RegisterRoutes(r)

		watchlistHandler := watchlisthandlers.NewHandler(s.container.WatchlistRepo, s.container.NaverClient, s.log)
		watchlistHandler.RegisterRoutes(r)
	})
}

// Handler returns the root handler (for tests and embedding)
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server. Blocks until Shutdown.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// timeoutUnlessUpgrade applies middleware.Timeout to everything except
// WebSocket upgrade requests
func timeoutUnlessUpgrade(d time.Duration) func(http.Handler) http.Handler {
	timeout := middleware.Timeout(d)
	return func(next http.Handler) http.Handler {
		withTimeout := timeout(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}
			withTimeout.ServeHTTP(w, r)
		})
	}
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
