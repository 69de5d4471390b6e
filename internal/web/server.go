// Package web provides the HTTP server and handlers for the CSV parsing API.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/arturomorarioja/csv-parser-api/internal/audit"
	"github.com/arturomorarioja/csv-parser-api/internal/config"
	"github.com/arturomorarioja/csv-parser-api/internal/core"
	"github.com/arturomorarioja/csv-parser-api/internal/reporting"
	mw "github.com/arturomorarioja/csv-parser-api/internal/web/middleware"
)

// Server is the HTTP server for the CSV parsing API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	audit   *audit.Recorder
	limiter *rateLimiter
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a Server. recorder may be nil when auditing is disabled.
func NewServer(service *core.Service, cfg *config.Config, recorder *audit.Recorder) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		audit:   recorder,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(mw.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(reporting.Middleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", mw.RequestIDHeader},
		ExposedHeaders: []string{mw.RequestIDHeader},
		MaxAge:         300,
	}))
	s.router.Use(middleware.Compress(5))
	s.router.Use(requestDeadline(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
	s.router.Use(clientMetadata)

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute)
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Get("/parse", s.handleParseQuery)
	s.router.Get("/parse/*", s.handleParsePath)

	s.router.Get("/preview", s.handlePreview)
}

// Start begins listening for HTTP requests. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening",
		"addr", s.server.Addr,
		"base_dir", s.service.BaseDir(),
	)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// requestDeadline bounds each request's context. Unlike chi's Timeout it
// never writes a response itself: handlers see the expired context and
// answer with the error envelope exactly once.
func requestDeadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		// The preview page carries one inline <style> block and no scripts.
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}
