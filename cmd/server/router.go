package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"studyhall/internal/api"
	apimiddleware "studyhall/internal/api/middleware"
)

// setupRouter creates the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	sessionHandler := api.NewSessionHandler(app.registry, app.logger)
	contentHandler := api.NewContentHandler(app.content, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/sessions", sessionHandler.Routes())
		r.Mount("/subjects", contentHandler.Routes())
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
