package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/stockscore/internal/modules/analysis"
	"github.com/aristath/stockscore/internal/modules/scoring"
	"github.com/rs/zerolog"
)

// DefaultWatchlistTimeout bounds one full watchlist run
const DefaultWatchlistTimeout = 15 * time.Minute

// WatchlistSource lists the codes to analyze
type WatchlistSource interface {
	Codes(ctx context.Context) ([]string, error)
}

// BatchAnalyzer scores a batch of stocks
type BatchAnalyzer interface {
	AnalyzeBatch(ctx context.Context, queries []string, techWeight, fundWeight float64) (*analysis.BatchResult, error)
}

// WatchlistAnalysisJob re-scores every watched stock with the default weights.
// Successful analyses land in history through the service's recorder.
type WatchlistAnalysisJob struct {
	watchlist WatchlistSource
	analyzer  BatchAnalyzer
	timeout   time.Duration
	log       zerolog.Logger
}

// NewWatchlistAnalysisJob creates a new WatchlistAnalysisJob
func NewWatchlistAnalysisJob(watchlist WatchlistSource, analyzer BatchAnalyzer, log zerolog.Logger) *WatchlistAnalysisJob {
	return &WatchlistAnalysisJob{
		watchlist: watchlist,
		analyzer:  analyzer,
		timeout:   DefaultWatchlistTimeout,
		log:       log.With().Str("job", "watchlist_analysis").Logger(),
	}
}

// Name returns the job name
func (j *WatchlistAnalysisJob) Name() string {
	return "watchlist_analysis"
}

// Run executes the watchlist analysis job
func (j *WatchlistAnalysisJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	codes, err := j.watchlist.Codes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load watchlist: %w", err)
	}
	if len(codes) == 0 {
		j.log.Debug().Msg("Watchlist is empty, nothing to analyze")
		return nil
	}

	var analyzed, failed int
	for _, chunk := range chunk(codes, scoring.MaxBatchSize) {
		result, err := j.analyzer.AnalyzeBatch(ctx, chunk, scoring.DefaultTechWeight, scoring.DefaultFundWeight)
		if err != nil {
			return fmt.Errorf("batch analysis failed: %w", err)
		}
		analyzed += result.Summary.TotalAnalyzed
		failed += result.Summary.Failed

		for _, e := range result.Summary.Errors {
			j.log.Warn().Str("code", e.Query).Str("kind", e.Kind).Msg(e.Message)
		}
		if ctx.Err() != nil {
			break
		}
	}

	j.log.Info().
		Int("watched", len(codes)).
		Int("analyzed", analyzed).
		Int("failed", failed).
		Msg("Watchlist analysis completed")

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("watchlist analysis interrupted: %w", err)
	}
	return nil
}

// chunk splits codes into slices of at most size elements
func chunk(codes []string, size int) [][]string {
	var chunks [][]string
	for len(codes) > size {
		chunks = append(chunks, codes[:size])
		codes = codes[size:]
	}
	if len(codes) > 0 {
		chunks = append(chunks, codes)
	}
	return chunks
}
