// SPDX-License-Identifier: MIT

// Package server assembles the HTTP front end: chi router, middleware
// stack, and the route handlers spec.md §6 documents. It is the
// collaborator the core's operations are served through, not the core
// itself — every handler here only translates HTTP into calls against
// internal/executor, internal/registry, and internal/plugins.
//
// Grounded on src/server/server.go's Server/setupMiddleware/setupRoutes,
// narrowed from vidveil's admin-panel/auth/GraphQL/OpenAPI surface to the
// routes spec.md §6 actually names, plus the autocomplete proxy and
// locale list SPEC_FULL.md §6 supplements.
package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/apimgr/metaseek/internal/cache"
	"github.com/apimgr/metaseek/internal/config"
	"github.com/apimgr/metaseek/internal/executor"
	"github.com/apimgr/metaseek/internal/geoip"
	"github.com/apimgr/metaseek/internal/logging"
	"github.com/apimgr/metaseek/internal/metrics"
	"github.com/apimgr/metaseek/internal/plugins"
	"github.com/apimgr/metaseek/internal/registry"
	"github.com/apimgr/metaseek/internal/retry"
	"github.com/apimgr/metaseek/internal/store"
)

// Server wires the core's collaborators behind an http.Handler.
type Server struct {
	cfg      *config.Config
	registry *registry.Registry
	executor *executor.Executor
	pipeline *plugins.Pipeline
	cache    cache.Cache
	metrics  *metrics.Manager
	geoip    *geoip.Service
	bans     *store.BanStore
	breakers *retry.Registry
	logger   *logging.Logger

	router *chi.Mux
	srv    *http.Server
}

// Deps bundles every collaborator NewServer wires into the router. All
// fields are required except Bans, GeoIP, Breakers, Metrics, and Logger,
// which may be nil; the matching feature is then skipped.
type Deps struct {
	Config   *config.Config
	Registry *registry.Registry
	Executor *executor.Executor
	Pipeline *plugins.Pipeline
	Cache    cache.Cache
	Metrics  *metrics.Manager
	GeoIP    *geoip.Service
	Bans     *store.BanStore
	Breakers *retry.Registry
	Logger   *logging.Logger
}

// New builds a Server and wires its routes.
func New(d Deps) *Server {
	s := &Server{
		cfg:      d.Config,
		registry: d.Registry,
		executor: d.Executor,
		pipeline: d.Pipeline,
		cache:    d.Cache,
		metrics:  d.Metrics,
		geoip:    d.GeoIP,
		bans:     d.Bans,
		breakers: d.Breakers,
		logger:   d.Logger,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the assembled http.Handler, for tests and for the
// daemon entrypoint's http.Server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(urlNormalizeMiddleware)

	if s.logger != nil {
		s.router.Use(s.logger.Middleware)
	}
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Use(securityHeadersMiddleware)

	if s.metrics != nil {
		s.router.Use(s.metricsMiddleware)
	}
}

// securityHeadersMiddleware sets the response headers spec.md's privacy
// stance implies even without a documented requirement: no caching of
// search results by intermediate proxies, no indexing, no framing.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "SAMEORIGIN")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Robots-Tag", "noindex, nofollow")
		if strings.HasPrefix(r.URL.Path, "/static/") {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.StartRequest()
		defer s.metrics.EndRequest()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		class := "2xx"
		switch {
		case rec.status >= 500:
			class = "5xx"
		case rec.status >= 400:
			class = "4xx"
		case rec.status >= 300:
			class = "3xx"
		}
		s.metrics.RecordRequest(r.URL.Path, class)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// urlNormalizeMiddleware redirects a trailing-slash path to its
// canonical form, except the root itself.
func urlNormalizeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path != "/" && strings.HasSuffix(path, "/") {
			canonical := strings.TrimSuffix(path, "/")
			if r.URL.RawQuery != "" {
				canonical += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, canonical, http.StatusMovedPermanently)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/search", s.handleSearch)
	s.router.Post("/search", s.handleSearch)
	s.router.Get("/autocomplete", s.handleAutocomplete)
	s.router.Post("/autocomplete", s.handleAutocomplete)
	s.router.Get("/about", s.handleAbout)
	s.router.Get("/preferences", s.handlePreferences)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/robots.txt", s.handleRobotsTxt)
	s.router.Get("/favicon.ico", s.handleFavicon)

	if s.metrics != nil && s.cfg.General.Metrics.Enabled {
		endpoint := s.cfg.General.Metrics.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		s.router.Handle(endpoint, s.metrics.Handler())
	}

	s.router.NotFound(s.handleNotFound)
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
