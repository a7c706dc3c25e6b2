package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all scoring routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/analyze", func(r chi.Router) {
		r.Post("/", h.HandleAnalyze)
		r.Post("/batch", h.HandleAnalyzeBatch)
		r.Get("/batch/stream", h.HandleBatchStream) // WebSocket
	})

	r.Get("/search", h.HandleSearch)
	r.Get("/presets", h.HandleGetPresets)

	r.Route("/scoring", func(r chi.Router) {
		r.Get("/weights", h.HandleGetWeights) // Effective weight tables per stock type
	})
}
