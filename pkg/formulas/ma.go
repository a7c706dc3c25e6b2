package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateSMA calculates the Simple Moving Average of the trailing length closes.
//
// Returns nil when fewer than length closes are available.
func CalculateSMA(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length {
		return nil
	}

	sma := talib.Sma(closes, length)
	return lastValid(sma)
}

// CalculateEMA calculates the Exponential Moving Average
//
// EMA Formula:
//
//	EMA_today = (Price_today × multiplier) + (EMA_yesterday × (1 - multiplier))
//	where multiplier = 2 / (period + 1)
//
// The EMA is seeded with the SMA of the first length closes. Returns nil when
// fewer than length closes are available; there is no SMA fallback.
func CalculateEMA(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length {
		return nil
	}

	ema := talib.Ema(closes, length)
	return lastValid(ema)
}

// CalculateDistanceFromMA returns (price - ma) / ma as a percentage.
// Returns nil when ma is not positive.
func CalculateDistanceFromMA(price, ma float64) *float64 {
	if ma <= 0 {
		return nil
	}
	distance := (price/ma - 1) * 100
	return &distance
}

// lastValid returns a pointer to the last element of a talib output series,
// or nil when the series is empty or ends in NaN.
func lastValid(series []float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	v := series[len(series)-1]
	if isNaN(v) {
		return nil
	}
	return &v
}
