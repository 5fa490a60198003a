package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/facegate/facegate/internal/web/handlers"
	"github.com/facegate/facegate/internal/web/middleware"
)

func (s *Server) setupRoutes() {
	// Create handlers
	accessHandler := handlers.NewAccessHandler(s.store, s.encoder, s.index, s.audit,
		s.config.Match.Threshold, s.config.Match.TopK)
	peopleHandler := handlers.NewPeopleHandler(s.store, s.encoder, s.index)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck(s.store, s.config.Database.Backend))

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireToken(s.config.Web.APIToken))

			// Access decisions
			r.Post("/recognize", accessHandler.Recognize)
			r.Post("/verify", accessHandler.Verify)
			r.Post("/match", accessHandler.Match)

			// Roster management
			r.Get("/people", peopleHandler.List)
			r.Post("/people", peopleHandler.Enroll)
			r.Get("/people/{name}", peopleHandler.Get)
			r.Delete("/people/{name}", peopleHandler.Delete)
		})
	})
}
