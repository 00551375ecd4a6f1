package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/keepsake-app/keepsake-api/internal/api"
	"github.com/keepsake-app/keepsake-api/internal/api/middleware"
	"github.com/keepsake-app/keepsake-api/internal/api/shared"
)

// setupRouter builds the HTTP routing tree with all handlers and middleware.
func (app *application) setupRouter() *chi.Mux {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.config.Auth, app.logger)
	memoryHandler := api.NewMemoryHandler(app.memoryService, app.logger)
	reviewHandler := api.NewReviewHandler(app.reviewService, app.logger)
	authMiddleware := middleware.NewAuthMiddleware(app.jwtService)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/memories", func(r chi.Router) {
				r.Post("/", memoryHandler.CreateMemory)
				r.Get("/", memoryHandler.ListMemories)
				r.Get("/{id}", memoryHandler.GetMemory)
				r.Put("/{id}", memoryHandler.UpdateMemory)
				r.Delete("/{id}", memoryHandler.DeleteMemory)
				r.Get("/{id}/insights", memoryHandler.ListInsights)
				r.Post("/{id}/review", reviewHandler.SubmitReview)
				r.Post("/{id}/postpone", reviewHandler.PostponeReview)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/next", reviewHandler.GetNextMemory)
				r.Get("/due-count", reviewHandler.DueCount)
			})
		})
	})

	return router
}
