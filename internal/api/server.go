// Package api serves the latest analysis report over a read-only JSON API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/phuslu/log"

	"Prisme/internal/analysis"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Recommend       int // default number of picks per profile
}

// DefaultServerConfig listens on :8080 with conservative timeouts.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Recommend:       3,
	}
}

// Server represents the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	latest     *analysis.Latest
	config     ServerConfig
	now        func() time.Time
}

// NewServer creates a server reading results from latest.
func NewServer(config ServerConfig, latest *analysis.Latest) *Server {
	if config.Recommend < 1 {
		config.Recommend = 3
	}
	s := &Server{
		router: mux.NewRouter(),
		latest: latest,
		config: config,
		now:    time.Now,
	}
	s.setupRouter()
	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	get := []string{http.MethodGet, http.MethodOptions}

	api.HandleFunc("/health", s.handleHealth).Methods(get...)
	api.HandleFunc("/report", s.handleReport).Methods(get...)
	api.HandleFunc("/etfs", s.handleListETFs).Methods(get...)
	api.HandleFunc("/etfs/{id}", s.handleGetETF).Methods(get...)
	api.HandleFunc("/etfs/{id}/normalized", s.handleNormalized).Methods(get...)
	api.HandleFunc("/ranking", s.handleRanking).Methods(get...)
	api.HandleFunc("/correlation", s.handleCorrelation).Methods(get...)
	api.HandleFunc("/profiles/{profile}", s.handleProfile).Methods(get...)
	api.HandleFunc("/families", s.handleFamilies).Methods(get...)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.config.Addr).Msg("api server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
