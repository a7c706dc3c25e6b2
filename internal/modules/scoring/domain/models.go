// Package domain provides scoring domain models.
package domain

import (
	"fmt"

	"github.com/aristath/stockscore/internal/modules/scoring"
)

// Sentiment is the three-way reading of a signal
type Sentiment string

const (
	Bullish Sentiment = "bullish"
	Neutral Sentiment = "neutral"
	Bearish Sentiment = "bearish"
)

// Score maps a sentiment to its numeric value: bullish 100, neutral 50, bearish 0
func (s Sentiment) Score() float64 {
	switch s {
	case Bullish:
		return scoring.BullishScore
	case Bearish:
		return scoring.BearishScore
	case Neutral:
		return scoring.NeutralScore
	}
	panic(fmt.Sprintf("unknown sentiment %q", string(s)))
}

// Valid reports whether s is one of the three sentiments
func (s Sentiment) Valid() bool {
	switch s {
	case Bullish, Neutral, Bearish:
		return true
	}
	return false
}

// Signal is a named indicator reading. Signals are values; never mutate one after creation.
type Signal struct {
	Indicator string    `json:"indicator"`
	Value     string    `json:"value"`
	Sentiment Sentiment `json:"sentiment"`
}

// StockType is the investment style a stock is classified into
type StockType string

const (
	Growth   StockType = "growth"
	Value    StockType = "value"
	Dividend StockType = "dividend"
	Balanced StockType = "balanced"
)

// StockTypes lists every stock type
var StockTypes = []StockType{Growth, Value, Dividend, Balanced}

// ParseStockType parses a stock type name (case-sensitive, lower case)
func ParseStockType(s string) (StockType, bool) {
	for _, t := range StockTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Recommendation is the label attached to a total score
type Recommendation string

const (
	StrongBuy  Recommendation = "Strong Buy"
	Buy        Recommendation = "Buy"
	Hold       Recommendation = "Neutral"
	Sell       Recommendation = "Sell"
	StrongSell Recommendation = "Strong Sell"
)

// Weights is a normalized tech/fund blend; Technical + Fundamental == 1
type Weights struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
}

// ScoreResult is the outcome of one analysis. All scores are in [0, 100].
type ScoreResult struct {
	StockType          StockType      `json:"stock_type"`
	Weights            Weights        `json:"weights"`
	TechnicalScore     float64        `json:"technical_score"`
	FundamentalScore   float64        `json:"fundamental_score"`
	TotalScore         float64        `json:"total_score"`
	Recommendation     Recommendation `json:"recommendation"`
	TechnicalSignals   []Signal       `json:"technical_signals"`
	FundamentalSignals []Signal       `json:"fundamental_signals"`
}
