package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pawprint-labs/pawprint/internal/http/ingestcsv"
	"github.com/pawprint-labs/pawprint/internal/http/report"
)

func New(
	reportsV1 *report.Handler,
	ingestV1 *ingestcsv.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/reports", reportsV1.Routes)

		r.Route("/ingest", ingestV1.Routes)
	})

	return router
}
