package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateRSI calculates the Relative Strength Index with Wilder smoothing
//
// RSI Formula:
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = smoothed average gain / smoothed average loss over N periods
//
// A series with no price change at all has no defined RS; it reads 50.
// Returns nil when fewer than length+1 closes are available.
func CalculateRSI(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length+1 {
		return nil
	}

	if isFlat(closes) {
		neutral := 50.0
		return &neutral
	}

	rsi := talib.Rsi(closes, length)
	return lastValid(rsi)
}

func isFlat(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] != values[0] {
			return false
		}
	}
	return true
}
