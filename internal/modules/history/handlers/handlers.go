// Package handlers provides HTTP handlers for analysis history.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/history"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles analysis history HTTP requests
type Handler struct {
	repo *history.Repository
	log  zerolog.Logger
}

// NewHandler creates a new history handler
func NewHandler(repo *history.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "history").Logger(),
	}
}

// HandleList handles GET /api/history?code=&limit=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := history.ListFilter{Code: strings.TrimSpace(r.URL.Query().Get("code"))}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = limit
	}

	entries, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list history")
		h.writeError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// HandleGet handles GET /api/history/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	entry, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	h.writeEntry(w, entry, err)
}

// HandleLatest handles GET /api/history/latest/{code}
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	entry, err := h.repo.Latest(r.Context(), chi.URLParam(r, "code"))
	h.writeEntry(w, entry, err)
}

func (h *Handler) writeEntry(w http.ResponseWriter, entry *history.Entry, err error) {
	switch {
	case errors.Is(err, market.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to load history entry")
		h.writeError(w, http.StatusInternalServerError, "Failed to load history entry")
	default:
		h.writeJSON(w, http.StatusOK, entry)
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
