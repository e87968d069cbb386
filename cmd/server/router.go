package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/phrazzld/scry-decks/internal/api"
	apiMiddleware "github.com/phrazzld/scry-decks/internal/api/middleware"
	"github.com/phrazzld/scry-decks/internal/api/shared"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(apiMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)
	if origins := app.config.Server.CORSAllowedOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", apiMiddleware.TraceHeader},
			ExposedHeaders: []string{apiMiddleware.TraceHeader},
			MaxAge:         300,
		}))
	}

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenValidator)
	reviewLimiter := apiMiddleware.NewRateLimiter(app.config.Server.ReviewRateLimit, app.config.Server.ReviewRateBurst)

	reviewHandler := api.NewReviewHandler(app.cardReviewService, app.logger)
	cardHandler := api.NewCardHandler(app.cardService, app.logger)
	collectionHandler := api.NewCollectionHandler(app.collectionService, app.cardService, app.logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/collections", collectionHandler.ListCollections)
		r.Post("/collections", collectionHandler.CreateCollection)
		r.Get("/collections/{id}", collectionHandler.GetCollection)
		r.Delete("/collections/{id}", collectionHandler.DeleteCollection)
		r.Get("/collections/{id}/cards", collectionHandler.ListCards)
		r.Get("/collections/{id}/review", reviewHandler.GetDueCards)

		r.Post("/cards", cardHandler.CreateCard)
		r.Get("/cards/{id}", cardHandler.GetCard)
		r.Put("/cards/{id}", cardHandler.UpdateCard)
		r.Delete("/cards/{id}", cardHandler.DeleteCard)
		r.With(reviewLimiter.Limit).Post("/cards/{id}/review", reviewHandler.SubmitReview)
		r.Post("/cards/{id}/postpone", reviewHandler.PostponeCard)
	})

	r.Get("/health", app.handleHealth)

	return r
}

// handleHealth reports 200 when the database answers a ping.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
