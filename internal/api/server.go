// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	handler "github.com/minjia/goldgap/internal/api/handler/api"
	"github.com/minjia/goldgap/internal/api/middleware"
	"github.com/minjia/goldgap/internal/api/response"
	"github.com/minjia/goldgap/internal/metrics"
	"github.com/minjia/goldgap/internal/storage/run"
)

// Server is the HTTP server exposing run results and metrics.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, store run.Store, reg *metrics.Registry, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}

	s.setupRoutes(cfg, store, reg)
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, store run.Store, reg *metrics.Registry) {
	runsHandler := handler.NewRunsHandler(store)
	fundsHandler := handler.NewFundsHandler(store)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/health", s.handleHealth)
	apiMux.HandleFunc("/api/runs/latest", runsHandler.Latest)
	apiMux.HandleFunc("/api/runs", runsHandler.List)
	apiMux.HandleFunc("/api/runs/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
		runsHandler.GetByID(w, r, id)
	})
	apiMux.HandleFunc("/api/funds/", func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimPrefix(r.URL.Path, "/api/funds/")
		fundsHandler.GetByCode(w, r, code)
	})

	var apiHandler http.Handler = apiMux
	apiHandler = middleware.APIKeyAuth(cfg.APIKey)(apiHandler)
	if reg != nil {
		apiHandler = metrics.HTTPMiddleware(reg)(apiHandler)
	}
	s.mux.Handle("/api/", apiHandler)

	if reg != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the root mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
