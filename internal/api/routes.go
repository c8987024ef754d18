package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nartaq/forms-service/internal/auth"
	"github.com/nartaq/forms-service/internal/ratelimit"
)

// SetupRoutes configures the HTTP surface: public form submission routes
// (rate limited) and admin routes (session auth).
func SetupRoutes(h *Handlers, authManager *auth.Manager, limiter *ratelimit.Limiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// Credentials must be allowed for the admin session cookie, which rules
	// out a wildcard origin.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://nartaq.com", "https://www.nartaq.com", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)

	if authManager != nil {
		r.Get("/auth/login", authManager.HandleLogin)
		r.Get("/auth/callback", authManager.HandleCallback)
		r.Get("/auth/logout", authManager.HandleLogout)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/forms", func(r chi.Router) {
			if limiter != nil {
				r.Use(limiter.Middleware)
			}
			r.Post("/newsletter", h.SubscribeNewsletter)
			r.Post("/investor", h.SubmitInvestorApplication)
			r.Post("/career", h.SubmitCareerApplication)
		})

		r.Route("/admin", func(r chi.Router) {
			if authManager != nil {
				r.Use(authManager.RequireAdmin)
			}
			r.Get("/subscribers", h.GetSubscribers)
			r.Get("/stats", h.GetStats)
			r.Post("/test-email", h.SendTestEmail)
		})
	})

	return r
}
