package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/stockscore/internal/database"
	"github.com/aristath/stockscore/internal/modules/analysis"
	"github.com/aristath/stockscore/internal/modules/history"
	"github.com/aristath/stockscore/internal/modules/scoring/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (chi.Router, *history.Repository) {
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "history.db"),
		Name: database.NameHistory,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	repo := history.NewRepository(db.Conn(), zerolog.Nop())
	router := chi.NewRouter()
	NewHandler(repo, zerolog.Nop()).RegisterRoutes(router)
	return router, repo
}

func record(t *testing.T, repo *history.Repository, code string, total float64, at time.Time) {
	a := &analysis.Analysis{
		ScoreResult: domain.ScoreResult{
			StockType:      domain.Balanced,
			TotalScore:     total,
			Recommendation: domain.Hold,
		},
		AnalyzedAt: at,
		Code:       code,
	}
	require.NoError(t, repo.Record(context.Background(), a))
}

func get(router chi.Router, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHandleList(t *testing.T) {
	router, repo := setupRouter(t)
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	record(t, repo, "005930", 55, base)
	record(t, repo, "000660", 45, base.Add(time.Minute))
	record(t, repo, "005930", 65, base.Add(2*time.Minute))

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedCount  int
	}{
		{"all", "/history/", http.StatusOK, 3},
		{"by code", "/history/?code=005930", http.StatusOK, 2},
		{"limit", "/history/?limit=1", http.StatusOK, 1},
		{"bad limit", "/history/?limit=abc", http.StatusBadRequest, 0},
		{"zero limit", "/history/?limit=0", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(router, tt.path)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var response struct {
				Entries []history.Entry `json:"entries"`
				Count   int             `json:"count"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedCount, response.Count)
			assert.Len(t, response.Entries, tt.expectedCount)
		})
	}
}

func TestHandleLatestAndGet(t *testing.T) {
	router, repo := setupRouter(t)
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	record(t, repo, "005930", 55, base)
	record(t, repo, "005930", 65, base.Add(time.Minute))

	w := get(router, "/history/latest/005930")
	require.Equal(t, http.StatusOK, w.Code)

	var latest history.Entry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &latest))
	assert.Equal(t, 65.0, latest.TotalScore)
	require.NotNil(t, latest.Analysis)
	assert.Equal(t, "005930", latest.Analysis.Code)

	w = get(router, "/history/"+latest.ID)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, get(router, "/history/latest/999999").Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/history/no-such-id").Code)
}
