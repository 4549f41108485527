package routes

import (
	"fmt"
	"net/http"

	"github.com/edustack/trainer-portal/internal/auth"
	"github.com/edustack/trainer-portal/internal/handlers"
	"github.com/edustack/trainer-portal/internal/models"
	pkghttp "github.com/edustack/trainer-portal/pkg/http"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *auth.TokenManager,
) {
	// Health probes - no authentication
	router.Get("/health", healthHandler.Health)
	router.Get("/health/live", healthHandler.Live)
	router.Get("/health/ready", healthHandler.Ready)

	router.Route("/api/trainer-auth", func(r chi.Router) {
		// Public - no authentication required
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)

		// Bearer token required
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(tokenManager))

			// Either scope may settle a password; a set_password token
			// is good for nothing else.
			r.With(auth.RequireScope(models.ScopeSetPassword, models.ScopeFull)).
				Post("/set-password", authHandler.SetPassword)

			r.With(auth.RequireScope(models.ScopeFull)).
				Get("/me", authHandler.Me)
		})
	})

	// Catch-all 404 in the standard envelope
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		pkghttp.WriteNotFound(w, fmt.Sprintf("Route %s not found", r.URL.Path))
	})
}
