// Package api wires the estflow HTTP handlers into a chi router.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aria-lang/estflow-go/api/handlers"
	"github.com/aria-lang/estflow-go/api/middleware"
)

// NewRouter returns the API router. Requests are cancelled after timeout.
func NewRouter(timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/assemble", handlers.AssembleHandler)
		r.Post("/overlap", handlers.OverlapHandler)
		r.Post("/stats", handlers.FragmentStatsHandler)

		r.Route("/alignment", func(r chi.Router) {
			r.Post("/local", handlers.LocalAlignHandler)
			r.Post("/global", handlers.GlobalAlignHandler)
			r.Post("/smith-waterman", handlers.SmithWatermanHandler)
			r.Post("/needleman-wunsch", handlers.NeedlemanWunschHandler)
		})

		r.Route("/quality", func(r chi.Router) {
			r.Post("/clip", handlers.ClipHandler)
		})
	})

	return r
}
