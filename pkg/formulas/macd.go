package formulas

import (
	"github.com/markcheno/go-talib"
)

// MACD holds the latest MACD line, signal line and histogram values
type MACD struct {
	Line      float64 `json:"line"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// CalculateMACD calculates MACD = EMA(fast) - EMA(slow) and its EMA(signal) line.
//
// The signal line needs slow+signal-1 closes before its first value exists;
// returns nil below that.
func CalculateMACD(closes []float64, fast, slow, signal int) *MACD {
	if fast <= 0 || slow <= fast || signal <= 0 {
		return nil
	}
	if len(closes) < MACDMinLength(slow, signal) {
		return nil
	}

	line, sig, hist := talib.Macd(closes, fast, slow, signal)
	last := len(closes) - 1
	if isNaN(line[last]) || isNaN(sig[last]) {
		return nil
	}

	return &MACD{
		Line:      line[last],
		Signal:    sig[last],
		Histogram: hist[last],
	}
}

// MACDMinLength is the number of closes needed for a MACD signal value.
func MACDMinLength(slow, signal int) int {
	return slow + signal - 1
}
