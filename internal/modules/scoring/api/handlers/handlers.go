// Package handlers provides HTTP handlers for scoring API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/analysis"
	"github.com/aristath/stockscore/internal/modules/scoring"
	"github.com/rs/zerolog"
)

// Handlers provides HTTP handlers for scoring module
type Handlers struct {
	service  *analysis.Service
	searcher market.StockSearcher
	log      zerolog.Logger
}

// NewHandlers creates a new scoring handlers instance. searcher may be nil,
// which disables /search.
func NewHandlers(service *analysis.Service, searcher market.StockSearcher, log zerolog.Logger) *Handlers {
	return &Handlers{
		service:  service,
		searcher: searcher,
		log:      log.With().Str("module", "scoring_handlers").Logger(),
	}
}

// AnalyzeRequest represents a request to analyze one stock.
// Missing weights default to 40/60.
type AnalyzeRequest struct {
	Stock      string   `json:"stock"`
	TechWeight *float64 `json:"tech_weight,omitempty"`
	FundWeight *float64 `json:"fund_weight,omitempty"`
}

// BatchRequest represents a request to analyze several stocks
type BatchRequest struct {
	Stocks     []string `json:"stocks"`
	TechWeight *float64 `json:"tech_weight,omitempty"`
	FundWeight *float64 `json:"fund_weight,omitempty"`
}

// BatchResponse lists results ranked by total score, failures last
type BatchResponse struct {
	Results []analysis.BatchItem  `json:"results"`
	Summary analysis.BatchSummary `json:"summary"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func weightsOrDefault(tech, fund *float64) (float64, float64) {
	t, f := scoring.DefaultTechWeight, scoring.DefaultFundWeight
	if tech != nil {
		t = *tech
	}
	if fund != nil {
		f = *fund
	}
	return t, f
}

// HandleAnalyze handles POST /api/analyze
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Stock) == "" {
		h.writeError(w, http.StatusBadRequest, "stock is required")
		return
	}

	tech, fund := weightsOrDefault(req.TechWeight, req.FundWeight)
	result, err := h.service.Analyze(r.Context(), req.Stock, tech, fund)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleAnalyzeBatch handles POST /api/analyze/batch
func (h *Handlers) HandleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tech, fund := weightsOrDefault(req.TechWeight, req.FundWeight)
	result, err := h.service.AnalyzeBatch(r.Context(), req.Stocks, tech, fund)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, BatchResponse{
		Results: result.Ranked(),
		Summary: result.Summary,
	})
}

// HandleSearch handles GET /api/search?query=
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if h.searcher == nil {
		h.writeError(w, http.StatusNotImplemented, "search is not configured")
		return
	}

	matches, err := h.searcher.Search(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if matches == nil {
		matches = []market.StockMatch{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": matches,
	})
}

// HandleGetPresets handles GET /api/presets
func (h *Handlers) HandleGetPresets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"presets": scoring.Presets,
	})
}

// HandleGetWeights handles GET /api/scoring/weights
// Returns the per-stock-type indicator weight tables in effect
func (h *Handlers) HandleGetWeights(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"default_indicator_weight": scoring.DefaultIndicatorWeight,
		"profiles":                 h.service.Engine().Profiles().All(),
	})
}

// StatusFor maps an error onto an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, market.ErrInvalidWeights),
		errors.Is(err, market.ErrBatchTooLarge),
		errors.Is(err, market.ErrEmptyBatch):
		return http.StatusBadRequest
	case errors.Is(err, market.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, market.ErrInsufficientHistory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, market.ErrSourceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Scoring request failed")
	} else {
		h.log.Debug().Err(err).Int("status", status).Msg("Scoring request rejected")
	}

	h.writeJSON(w, status, ErrorResponse{
		Error: err.Error(),
		Kind:  market.KindName(err),
	})
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, ErrorResponse{Error: message})
}
