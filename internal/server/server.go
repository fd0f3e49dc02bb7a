// Package server exposes a workspace over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	brandmanual "github.com/goliatone/go-brandmanual"
	"github.com/goliatone/go-brandmanual/internal/logger"
	"github.com/goliatone/go-brandmanual/internal/metrics"
	"github.com/goliatone/go-brandmanual/pkg/workspace"
)

// Config holds server configuration.
type Config struct {
	Addr     string
	AllowAll bool          // allow all CORS origins
	Timeout  time.Duration // per-request timeout
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics mounts /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// Server serves one workspace.
type Server struct {
	cfg        Config
	ws         *workspace.Workspace
	contract   *Contract
	metrics    *metrics.Metrics
	logger     logger.Logger
	router     chi.Router
	httpServer *http.Server
}

// New builds the router for ws.
func New(ctx context.Context, cfg Config, ws *workspace.Workspace, opts ...Option) (*Server, error) {
	if ws == nil {
		return nil, errors.New("server: workspace is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	contract, err := LoadContract(ctx)
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		ws:       ws,
		contract: contract,
		logger:   logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Timeout))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(s.contract.JSON())
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	validated := r.With(s.contract.validateBody)

	r.Get("/api/formdata", s.handleGetFormData)
	validated.Put("/api/formdata", s.handlePutFormData)
	r.Get("/api/customization", s.handleGetCustomization)
	validated.Put("/api/customization", s.handlePutCustomization)
	r.Post("/api/customization/presets/{name}", s.handleApplyPreset)
	validated.Patch("/api/customization/sections/{id}", s.handlePatchSection)
	r.Get("/api/templates", s.handleListTemplates)
	validated.Put("/api/templates/selected", s.handleSelectTemplate)
	r.Post("/api/import", s.handleImport)
	r.Get("/api/export/{format}", s.handleExport)
	r.Get("/api/share", s.handleShareLink)
	validated.Post("/api/share/apply", s.handleApplyShare)
	r.Get("/api/validate", s.handleValidate)
	r.Get("/preview", s.handlePreview)
	r.Get("/download", s.handleDownload)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(brandmanual.StylesheetsFS())))

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		})
	})
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Timeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info("brandmanual server listening", map[string]any{"addr": s.cfg.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
