package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/ankigen/internal/api"
	apiMiddleware "github.com/phrazzld/ankigen/internal/api/middleware"
)

// setupRouter creates the router with middleware and all routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace(app.logger))

	sessionHandler := api.NewSessionHandler(
		app.sessionService,
		app.config.Server.MaxUploadBytes(),
		app.logger,
	)

	r.Route("/api", func(r chi.Router) {
		sessionHandler.RegisterRoutes(r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
