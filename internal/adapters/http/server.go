// Package http provides the HTTP server and handlers.
package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/jobrunner/meridian/internal/application"
	"github.com/jobrunner/meridian/internal/config"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 16 << 20

// Instrumentation records request metrics and exposes them.
type Instrumentation interface {
	Middleware(next http.Handler) http.Handler
	Handler() http.Handler
}

// Server wraps the HTTP server with application handlers.
type Server struct {
	server      *http.Server
	router      *mux.Router
	transform   *application.TransformService
	registry    *application.CatalogRegistry
	health      *application.HealthService
	syncService *application.SyncService
	limiter     *rate.Limiter
	logger      *slog.Logger
	config      config.ServerConfig
}

// NewServer creates a new HTTP server. syncService may be nil, in which
// case the sync endpoint is not registered.
func NewServer(
	cfg config.ServerConfig,
	transform *application.TransformService,
	registry *application.CatalogRegistry,
	health *application.HealthService,
	syncService *application.SyncService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		transform:   transform,
		registry:    registry,
		health:      health,
		syncService: syncService,
		logger:      logger,
		config:      cfg,
	}

	if cfg.RateLimit.Enabled {
		burst := cfg.RateLimit.Burst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.Rate), burst)
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	if s.config.CORS.Enabled() {
		r.Use(newCORSPolicy(s.config.CORS.AllowedOrigins).middleware)
	}

	// Health endpoints
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/live", s.handleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.handleReadiness).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	if s.limiter != nil {
		api.Use(s.rateLimitMiddleware)
	}

	// CRS definitions
	api.HandleFunc("/crs", s.handleListCRS).Methods(http.MethodGet)
	api.HandleFunc("/crs/{key:.+}", s.handleGetCRS).Methods(http.MethodGet)

	// Transformations
	api.HandleFunc("/transform", s.handleTransform).Methods(http.MethodPost)
	api.HandleFunc("/transform/geojson", s.handleTransformGeoJSON).Methods(http.MethodPost)
	api.HandleFunc("/wkt/parse", s.handleParseWKT).Methods(http.MethodPost)

	// Catalog management
	api.HandleFunc("/catalogs", s.handleListCatalogs).Methods(http.MethodGet)
	api.HandleFunc("/catalogs/{catalogId}", s.handleGetCatalog).Methods(http.MethodGet)

	if s.syncService != nil {
		api.HandleFunc("/sync", s.handleSync).Methods(http.MethodPost)
	}

	// OpenAPI spec and Swagger UI
	r.HandleFunc("/openapi.json", s.handleOpenAPI).Methods(http.MethodGet)
	r.HandleFunc("/docs", s.handleSwaggerUI).Methods(http.MethodGet)

	// Preflight requests for any path; the CORS middleware answers them.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

// EnableMetrics mounts the metrics endpoint at path and instruments every
// routed request.
func (s *Server) EnableMetrics(path string, m Instrumentation) {
	s.router.Use(m.Middleware)
	s.router.Handle(path, m.Handler()).Methods(http.MethodGet)
}

// Router returns the mux router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "address", s.config.Address())
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs incoming requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// recoveryMiddleware recovers from panics.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				s.writeError(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware rejects API requests beyond the configured rate.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			s.writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
