package clientdata

import (
	"context"
	"errors"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/rs/zerolog"
)

// CachedSource decorates a MarketDataSource with the SQLite response cache.
// Fresh entries are served without a fetch. When the upstream fails, a stale
// entry is served instead, unless the stock does not exist or the caller gave up.
type CachedSource struct {
	source market.MarketDataSource
	repo   *Repository
	log    zerolog.Logger
}

// NewCachedSource creates a cache-first market data source
func NewCachedSource(source market.MarketDataSource, repo *Repository, log zerolog.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		repo:   repo,
		log:    log.With().Str("component", "cached_source").Logger(),
	}
}

// FetchPriceHistory returns cached bars while fresh, otherwise fetches and stores them
func (c *CachedSource) FetchPriceHistory(ctx context.Context, code string) ([]market.PricePoint, error) {
	var cached []market.PricePoint
	if c.lookup(TablePriceHistory, code, &cached, true) {
		return cached, nil
	}

	prices, err := c.source.FetchPriceHistory(ctx, code)
	if err != nil {
		var stale []market.PricePoint
		if c.fallback(ctx, err) && c.lookup(TablePriceHistory, code, &stale, false) {
			c.log.Warn().Err(err).Str("code", code).Msg("Serving stale price history")
			return stale, nil
		}
		return nil, err
	}

	if err := c.repo.Store(TablePriceHistory, code, prices, TTLPriceHistory); err != nil {
		c.log.Warn().Err(err).Str("code", code).Msg("Failed to cache price history")
	}
	return prices, nil
}

// FetchFundamentals returns a cached snapshot while fresh, otherwise fetches and stores it
func (c *CachedSource) FetchFundamentals(ctx context.Context, code string) (market.FundamentalSnapshot, error) {
	var cached market.FundamentalSnapshot
	if c.lookup(TableFundamentals, code, &cached, true) {
		return cached, nil
	}

	snapshot, err := c.source.FetchFundamentals(ctx, code)
	if err != nil {
		var stale market.FundamentalSnapshot
		if c.fallback(ctx, err) && c.lookup(TableFundamentals, code, &stale, false) {
			c.log.Warn().Err(err).Str("code", code).Msg("Serving stale fundamentals")
			return stale, nil
		}
		return market.FundamentalSnapshot{}, err
	}

	if err := c.repo.Store(TableFundamentals, code, snapshot, TTLFundamentals); err != nil {
		c.log.Warn().Err(err).Str("code", code).Msg("Failed to cache fundamentals")
	}
	return snapshot, nil
}

// lookup treats cache errors as misses
func (c *CachedSource) lookup(table, code string, dest interface{}, freshOnly bool) bool {
	var (
		found bool
		err   error
	)
	if freshOnly {
		found, err = c.repo.GetIfFresh(table, code, dest)
	} else {
		found, err = c.repo.Get(table, code, dest)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("table", table).Str("code", code).Msg("Cache read failed")
		return false
	}
	return found
}

func (c *CachedSource) fallback(ctx context.Context, err error) bool {
	return ctx.Err() == nil && !errors.Is(err, market.ErrNotFound)
}
