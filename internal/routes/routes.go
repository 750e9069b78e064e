package routes

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mantavyam/jacob-web/internal/auth"
	"github.com/mantavyam/jacob-web/internal/config"
	"github.com/mantavyam/jacob-web/internal/handlers"
	"github.com/mantavyam/jacob-web/internal/middleware"
	pkghttp "github.com/mantavyam/jacob-web/pkg/http"
)

// RequestTimeout bounds every request handled by the router.
const RequestTimeout = 60 * time.Second

// Dependencies are the handlers and guards the API routes are built from.
type Dependencies struct {
	Complaints *handlers.ComplaintHandler
	Admin      *handlers.AdminHandler
	Health     *handlers.HealthHandler
	Guard      auth.AdminGuard
	Limits     config.LimitsConfig
	IPConfig   *pkghttp.IPConfig
}

// NewRouter builds the full HTTP handler: shared middleware, JSON fallbacks
// for unmatched routes and the /api tree.
func NewRouter(server config.ServerConfig, logger *slog.Logger, deps Dependencies) *chi.Mux {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.SecureLogger(logger, deps.IPConfig))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{Env: server.Env}))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(server.AllowedOrigins)))
	router.Use(chimiddleware.Timeout(RequestTimeout))

	// set before Route so the /api subrouter inherits them
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.NotFound)

	router.Route("/api", func(r chi.Router) {
		RegisterRoutes(r, deps)
	})

	return router
}

// RegisterRoutes registers the API routes on a router mounted at /api.
func RegisterRoutes(router chi.Router, deps Dependencies) {
	submitLimit := middleware.RateLimitByIP(middleware.RateLimitConfig{
		RequestsPerMinute: deps.Limits.SubmitPerMinute,
		IPConfig:          deps.IPConfig,
	})
	checkLimit := middleware.RateLimitByIP(middleware.RateLimitConfig{
		RequestsPerMinute: deps.Limits.CheckPerMinute,
		IPConfig:          deps.IPConfig,
	})

	// Public routes
	router.Get("/health", deps.Health.Health)
	router.With(submitLimit).Post("/complaints", deps.Complaints.Submit)
	router.With(checkLimit).Get("/complaints/check", deps.Complaints.Check)

	// Admin routes
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAdminSecret(deps.Guard))

		r.Get("/complaints/recent", deps.Admin.Recent)
		r.Get("/complaints/stats", deps.Admin.Stats)
		r.Patch("/complaints/{id}/status", deps.Admin.UpdateStatus)
		r.Get("/complaints/{id}/history", deps.Admin.History)
	})
}
