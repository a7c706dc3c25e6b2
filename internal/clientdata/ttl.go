package clientdata

import "time"

// TTL constants for cached market data.
// These are added to time.Now() when storing to calculate expires_at.
const (
	TTLPriceHistory = time.Hour     // daily bars; refreshed a few times per session
	TTLFundamentals = 6 * time.Hour // valuation metrics move slowly intraday
)
