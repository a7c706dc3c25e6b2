// Package handlers provides HTTP handlers for the watchlist.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/watchlist"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles watchlist HTTP requests
type Handler struct {
	repo     *watchlist.Repository
	resolver market.CodeResolver
	log      zerolog.Logger
}

// NewHandler creates a new watchlist handler. resolver may be nil, in which
// case only stock codes are accepted.
func NewHandler(repo *watchlist.Repository, resolver market.CodeResolver, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		resolver: resolver,
		log:      log.With().Str("handler", "watchlist").Logger(),
	}
}

// AddRequest is the body of POST /api/watchlist. Stock is a code or a company name.
type AddRequest struct {
	Stock string `json:"stock"`
	Name  string `json:"name"`
	Memo  string `json:"memo"`
}

// HandleList handles GET /api/watchlist
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list watchlist")
		h.writeError(w, http.StatusInternalServerError, "Failed to list watchlist")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// HandleAdd handles POST /api/watchlist
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stock := strings.TrimSpace(req.Stock)
	if stock == "" {
		h.writeError(w, http.StatusBadRequest, "stock is required")
		return
	}

	code := stock
	if h.resolver != nil {
		resolved, err := h.resolver.ResolveCode(r.Context(), stock)
		switch {
		case errors.Is(err, market.ErrNotFound):
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		case err != nil:
			h.log.Warn().Err(err).Str("stock", stock).Msg("Failed to resolve stock")
			h.writeError(w, http.StatusBadGateway, "Failed to resolve stock")
			return
		}
		code = resolved
	}

	name := strings.TrimSpace(req.Name)
	if name == "" && code != stock {
		name = stock
	}

	item, err := h.repo.Add(r.Context(), watchlist.Item{Code: code, Name: name, Memo: req.Memo})
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("Failed to add to watchlist")
		h.writeError(w, http.StatusInternalServerError, "Failed to add to watchlist")
		return
	}

	h.writeJSON(w, http.StatusCreated, item)
}

// HandleRemove handles DELETE /api/watchlist/{code}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	err := h.repo.Remove(r.Context(), code)
	switch {
	case errors.Is(err, market.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		h.log.Error().Err(err).Str("code", code).Msg("Failed to remove from watchlist")
		h.writeError(w, http.StatusInternalServerError, "Failed to remove from watchlist")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleContains handles GET /api/watchlist/{code}
func (h *Handler) HandleContains(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	ok, err := h.repo.Contains(r.Context(), code)
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("Failed to check watchlist")
		h.writeError(w, http.StatusInternalServerError, "Failed to check watchlist")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"code":    code,
		"watched": ok,
	})
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
