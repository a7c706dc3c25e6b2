package domain

import "context"

// MarketDataSource fetches raw market data for a stock code.
// Implementations fail with ErrNotFound or ErrSourceUnavailable (possibly wrapped).
type MarketDataSource interface {
	// FetchPriceHistory returns daily bars, oldest first
	FetchPriceHistory(ctx context.Context, code string) ([]PricePoint, error)

	// FetchFundamentals returns the latest company metrics
	FetchFundamentals(ctx context.Context, code string) (FundamentalSnapshot, error)
}

// StockSearcher looks up stocks by (partial) name.
type StockSearcher interface {
	Search(ctx context.Context, query string) ([]StockMatch, error)
}

// CodeResolver turns user input (a six-digit code or a company name) into a stock code.
type CodeResolver interface {
	ResolveCode(ctx context.Context, query string) (string, error)
}
