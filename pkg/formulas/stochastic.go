package formulas

import (
	"github.com/markcheno/go-talib"
)

// Stochastic holds the latest fast %K and its %D moving average
type Stochastic struct {
	K float64 `json:"k"`
	D float64 `json:"d"`
}

// CalculateStochastic calculates the fast stochastic oscillator
//
//	%K = (Close - LowestLow(k)) / (HighestHigh(k) - LowestLow(k)) × 100
//	%D = SMA(%K, d)
//
// A flat window (highest high == lowest low) reads 50, including the
// earlier windows averaged into %D.
// Returns nil when the series lengths differ or are shorter than k+d-1.
func CalculateStochastic(highs, lows, closes []float64, kLength, dLength int) *Stochastic {
	n := len(closes)
	if kLength <= 0 || dLength <= 0 || len(highs) != n || len(lows) != n {
		return nil
	}
	if n < kLength+dLength-1 {
		return nil
	}

	fastK, _ := talib.StochF(highs, lows, closes, kLength, dLength, talib.SMA)

	k := make([]float64, 0, dLength)
	for i := n - dLength; i < n; i++ {
		start := i - kLength + 1
		if Highest(highs[start:i+1]) == Lowest(lows[start:i+1]) {
			k = append(k, 50)
			continue
		}
		if isNaN(fastK[i]) {
			return nil
		}
		k = append(k, fastK[i])
	}

	return &Stochastic{K: k[dLength-1], D: Mean(k)}
}
