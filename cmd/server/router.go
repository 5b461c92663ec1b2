package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/scry-review/internal/api"
	apiMiddleware "github.com/phrazzld/scry-review/internal/api/middleware"
)

// setupRouter builds the chi router with every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(middleware.Recoverer)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	cardHandler := api.NewCardHandler(app.cardService, app.config.Review.Count, app.logger)
	sessionHandler := api.NewSessionHandler(
		app.cardService,
		app.sessions,
		app.config.Review,
		app.srsService.Params().Threshold,
		app.logger,
		api.WithSessionEmitter(app.eventEmitter),
	)
	healthHandler := api.NewHealthHandler(app.db, app.sessions, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Delete("/", sessionHandler.DeleteSession)
				r.Post("/flip", sessionHandler.Flip)
				r.Post("/next", sessionHandler.Next)
				r.Post("/pause", sessionHandler.Pause)
				r.Post("/resume", sessionHandler.Resume)
			})
		})

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.ListCards)
			r.Post("/", cardHandler.CreateCard)
			r.Get("/due", cardHandler.ListDueCards)
			r.Post("/import", cardHandler.ImportCards)
			r.Get("/{code}", cardHandler.GetCard)
			r.Delete("/{code}", cardHandler.DeleteCard)
		})
	})

	r.Get("/health", healthHandler.Health)

	return r
}
