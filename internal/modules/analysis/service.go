package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/scoring"
	"github.com/aristath/stockscore/internal/modules/scoring/scorers"
	"github.com/aristath/stockscore/pkg/formulas"
	"github.com/rs/zerolog"
)

// DefaultConcurrency bounds parallel fetches in a batch
const DefaultConcurrency = 4

// Recorder persists finished analyses
type Recorder interface {
	Record(ctx context.Context, a *Analysis) error
}

// Service fetches market data and scores it with the recommendation engine
type Service struct {
	source      market.MarketDataSource
	engine      *scorers.RecommendationEngine
	resolver    market.CodeResolver
	recorder    Recorder
	concurrency int
	now         func() time.Time
	log         zerolog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithResolver resolves company names to stock codes before fetching
func WithResolver(r market.CodeResolver) Option {
	return func(s *Service) { s.resolver = r }
}

// WithRecorder stores every successful analysis
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithConcurrency sets the batch worker count
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates a new analysis service
func NewService(source market.MarketDataSource, engine *scorers.RecommendationEngine, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		source:      source,
		engine:      engine,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		log:         log.With().Str("service", "analysis").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the recommendation engine
func (s *Service) Engine() *scorers.RecommendationEngine {
	return s.engine
}

// Analyze scores one stock. query is a six-digit code or, with a resolver, a company name.
func (s *Service) Analyze(ctx context.Context, query string, techWeight, fundWeight float64) (*Analysis, error) {
	if _, err := scorers.NormalizeWeights(techWeight, fundWeight); err != nil {
		return nil, err
	}

	a, err := s.analyze(ctx, query, techWeight, fundWeight)
	if err != nil {
		return nil, err
	}

	s.record(ctx, a)
	return a, nil
}

func (s *Service) analyze(ctx context.Context, query string, techWeight, fundWeight float64) (*Analysis, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, market.NewStockError("", market.ErrNotFound, "empty stock query")
	}

	code, err := s.resolve(ctx, query)
	if err != nil {
		return nil, market.WithCode(query, err)
	}

	prices, snapshot, err := s.fetch(ctx, code)
	if err != nil {
		return nil, market.WithCode(code, err)
	}
	if snapshot.Code == "" {
		snapshot.Code = code
	}
	// Fill price fields the fundamentals source left blank from the history
	if len(prices) > 0 {
		last := prices[len(prices)-1]
		if snapshot.CurrentPrice <= 0 {
			snapshot.CurrentPrice = last.Close
		}
		if snapshot.PrevClose <= 0 && len(prices) > 1 {
			snapshot.PrevClose = prices[len(prices)-2].Close
		}
		if snapshot.Volume <= 0 {
			snapshot.Volume = last.Volume
		}
	}

	result, err := s.engine.Evaluate(prices, snapshot, techWeight, fundWeight)
	if err != nil {
		return nil, market.WithCode(code, err)
	}

	a := &Analysis{
		ScoreResult:   *result,
		Code:          code,
		Name:          snapshot.Name,
		Market:        snapshot.Market,
		CurrentPrice:  snapshot.CurrentPrice,
		PrevClose:     snapshot.PrevClose,
		ChangePercent: formulas.Round(snapshot.ChangePercent(), 2),
		AnalyzedAt:    s.now().UTC(),
		StockInfo:     snapshot,
	}
	if len(prices) > 0 {
		a.Date = prices[len(prices)-1].Date.Format("2006-01-02")
	}

	s.log.Debug().
		Str("code", code).
		Str("type", string(result.StockType)).
		Float64("total", result.TotalScore).
		Str("recommendation", string(result.Recommendation)).
		Msg("Stock analyzed")

	return a, nil
}

// fetch loads price history and fundamentals in parallel. The first
// failure cancels the other request; a price history failure wins.
func (s *Service) fetch(ctx context.Context, code string) ([]market.PricePoint, market.FundamentalSnapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg                     sync.WaitGroup
		prices                 []market.PricePoint
		snapshot               market.FundamentalSnapshot
		pricesErr, snapshotErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		if prices, pricesErr = s.source.FetchPriceHistory(ctx, code); pricesErr != nil {
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		if snapshot, snapshotErr = s.source.FetchFundamentals(ctx, code); snapshotErr != nil {
			cancel()
		}
	}()
	wg.Wait()

	if pricesErr != nil {
		return nil, market.FundamentalSnapshot{}, fmt.Errorf("failed to fetch price history: %w", pricesErr)
	}
	if snapshotErr != nil {
		return nil, market.FundamentalSnapshot{}, fmt.Errorf("failed to fetch fundamentals: %w", snapshotErr)
	}
	return prices, snapshot, nil
}

func (s *Service) resolve(ctx context.Context, query string) (string, error) {
	if s.resolver == nil {
		return query, nil
	}
	return s.resolver.ResolveCode(ctx, query)
}

func (s *Service) record(ctx context.Context, a *Analysis) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, a); err != nil {
		s.log.Warn().Err(err).Str("code", a.Code).Msg("Failed to record analysis")
	}
}

// AnalyzeBatch scores up to MaxBatchSize stocks. Per-stock failures are
// reported per item and never abort the batch. Results keep request order.
func (s *Service) AnalyzeBatch(ctx context.Context, queries []string, techWeight, fundWeight float64) (*BatchResult, error) {
	return s.AnalyzeBatchStream(ctx, queries, techWeight, fundWeight, nil)
}

// AnalyzeBatchStream is AnalyzeBatch with a callback invoked as each item
// finishes. Callbacks are serialized. Once ctx is cancelled no new stock is
// started; those items fail with the context error.
func (s *Service) AnalyzeBatchStream(ctx context.Context, queries []string, techWeight, fundWeight float64, onItem func(BatchItem)) (*BatchResult, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("%w: at least one stock is required", market.ErrEmptyBatch)
	}
	if len(queries) > scoring.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d stocks requested, maximum is %d",
			market.ErrBatchTooLarge, len(queries), scoring.MaxBatchSize)
	}
	if _, err := scorers.NormalizeWeights(techWeight, fundWeight); err != nil {
		return nil, err
	}

	start := time.Now()
	items := make([]BatchItem, len(queries))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	emit := func(idx int, item BatchItem) {
		mu.Lock()
		defer mu.Unlock()
		items[idx] = item
		if onItem != nil {
			onItem(item)
		}
	}

	// Semaphore for concurrency control
	sem := make(chan struct{}, s.concurrency)

	for i, query := range queries {
		if ctx.Err() == nil {
			select {
			case <-ctx.Done():
			case sem <- struct{}{}:
			}
		}
		if err := ctx.Err(); err != nil {
			for j := i; j < len(queries); j++ {
				emit(j, failedItem(queries[j], err))
			}
			break
		}

		wg.Add(1)
		go func(idx int, q string) {
			defer wg.Done()
			defer func() { <-sem }()

			a, err := s.analyze(ctx, q, techWeight, fundWeight)
			if err != nil {
				s.log.Warn().Err(err).Str("query", q).Msg("Batch item failed")
				emit(idx, failedItem(q, err))
				return
			}
			s.record(ctx, a)
			emit(idx, BatchItem{Query: q, Analysis: a})
		}(i, query)
	}

	wg.Wait()

	result := &BatchResult{
		Results: items,
		Summary: Summarize(items),
	}

	s.log.Info().
		Int("requested", len(queries)).
		Int("analyzed", result.Summary.TotalAnalyzed).
		Int("failed", result.Summary.Failed).
		Dur("duration", time.Since(start)).
		Msg("Batch analysis complete")

	return result, nil
}
