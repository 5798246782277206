package web

import (
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/makeup-coach/internal/web/handlers"
)

// requestTimeout bounds every request except the event stream.
const requestTimeout = 2 * time.Minute

func (s *Server) setupRoutes() {
	svc := s.services
	configHandler := handlers.NewConfigHandler(s.config, svc.Analyzer, svc.Catalog, svc.Analyses != nil, svc.Logger)
	productsHandler := handlers.NewProductsHandler(svc.Catalog, svc.Analyzer.Options().TopN, svc.Logger)
	analysesHandler := handlers.NewAnalysesHandler(svc.Analyzer, svc.Analyses, s.config.Analysis.MaxImageSize, svc.Logger)
	progressHandler := handlers.NewProgressHandler(svc.Tracker, svc.Logger)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Server-sent events must not be cut off by the request timeout
		r.Get("/users/{userId}/progress/events", progressHandler.Events)

		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.Timeout(requestTimeout))

			r.Get("/health", handlers.HealthCheck)

			// Config
			r.Get("/config", configHandler.Get)
			r.Get("/regions", configHandler.Regions)

			// Catalog
			r.Get("/products", productsHandler.List)

			// Analyses
			r.Post("/analyses", analysesHandler.Create)
			r.Get("/analyses/{id}", analysesHandler.Get)
			r.Get("/users/{userId}/analyses", analysesHandler.ListByUser)

			// Progress
			r.Get("/users/{userId}/progress", progressHandler.Get)
			r.Post("/users/{userId}/progress/experience", progressHandler.AddExperience)
			r.Post("/users/{userId}/progress/skills/{skill}", progressHandler.UpdateSkill)
			r.Post("/users/{userId}/progress/streak", progressHandler.RecordActivity)
			r.Post("/users/{userId}/progress/achievements/{id}", progressHandler.UnlockAchievement)
			r.Put("/users/{userId}/progress/challenge", progressHandler.AssignChallenge)
			r.Post("/users/{userId}/progress/challenge/complete", progressHandler.CompleteChallenge)
			r.Post("/users/{userId}/progress/looks", progressHandler.CompleteLook)
		})
	})
}
