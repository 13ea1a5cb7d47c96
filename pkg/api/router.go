package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/marmos91/filebank/pkg/api/handlers"
	"github.com/marmos91/filebank/pkg/api/middleware"
	"github.com/marmos91/filebank/pkg/vfs"
)

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Request span, log context and completion logging
//   - Panic recovery to prevent server crashes
//   - Prometheus request metrics when cfg.Metrics is set
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe
//   - GET|POST|PUT|DELETE /api/v1/fs/* - Virtual tree items
//   - PUT /api/v1/meta/{id} - Replace item metadata
func NewRouter(svc *vfs.Service, cfg Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(chimiddleware.Recoverer)
	r.Use(cfg.Metrics.Middleware)

	healthHandler := handlers.NewHealthHandler(svc.Store(), svc.Backend())
	fsHandler := handlers.NewFSHandler(svc, cfg.MaxUploadSize)
	metaHandler := handlers.NewMetaHandler(svc)

	// Health routes - unauthenticated
	r.Route("/health", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(10 * time.Second))
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(middleware.JWTAuth(cfg.Auth.JWT))
		}
		read := requireScope(cfg.Auth, func(a *AuthConfig) []string { return a.ReadScopes })
		write := requireScope(cfg.Auth, func(a *AuthConfig) []string { return a.WriteScopes })
		del := requireScope(cfg.Auth, func(a *AuthConfig) []string { return a.DeleteScopes })

		r.Route("/fs", func(r chi.Router) {
			for _, pattern := range []string{"/", "/*"} {
				r.With(read).Get(pattern, fsHandler.Get)
				r.With(write).Post(pattern, fsHandler.Create)
				r.With(write).Put(pattern, fsHandler.Move)
				r.With(del).Delete(pattern, fsHandler.Delete)
			}
		})

		r.With(write).Put("/meta/{id}", metaHandler.Update)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.NotFound(w, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteProblem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	return r
}

// requireScope returns the scope check of one route group, or a no-op when
// auth is disabled.
func requireScope(a *AuthConfig, set func(*AuthConfig) []string) func(http.Handler) http.Handler {
	if a == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RequireScope(set(a))
}
