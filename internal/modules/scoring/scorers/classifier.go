// Package scorers provides the stock scoring engine: type classification,
// technical and fundamental signal evaluation, signal scoring and the
// recommendation blend.
package scorers

import (
	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/scoring"
	"github.com/aristath/stockscore/internal/modules/scoring/domain"
)

// StockTypeClassifier determines the investment style of a stock from its fundamentals
type StockTypeClassifier struct{}

// NewStockTypeClassifier creates a new stock type classifier
func NewStockTypeClassifier() *StockTypeClassifier {
	return &StockTypeClassifier{}
}

// Classify returns the stock type. First match wins:
//   - Growth: PER > 25 and ROE > 12%
//   - Value: 0 < PER < 15 and 0 < PBR < 1.5
//   - Dividend: yield > 3%
//   - Balanced: everything else
//
// Unknown (<= 0) metrics never satisfy a criterion.
func (c *StockTypeClassifier) Classify(f market.FundamentalSnapshot) domain.StockType {
	switch {
	case f.PER > scoring.GrowthMinPER && f.ROE > scoring.GrowthMinROE:
		return domain.Growth
	case f.PER > 0 && f.PER < scoring.ValueMaxPER && f.PBR > 0 && f.PBR < scoring.ValueMaxPBR:
		return domain.Value
	case f.DividendYield > scoring.DividendMinYield:
		return domain.Dividend
	default:
		return domain.Balanced
	}
}
