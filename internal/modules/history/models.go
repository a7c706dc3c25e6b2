// Package history stores past analyses.
package history

import (
	"time"

	"github.com/aristath/stockscore/internal/modules/analysis"
	"github.com/aristath/stockscore/internal/modules/scoring/domain"
)

// DefaultListLimit applies when a caller asks for no limit
const DefaultListLimit = 50

// MaxListLimit caps a single page
const MaxListLimit = 500

// Entry is one stored analysis. Analysis carries the full result including signals.
type Entry struct {
	ID               string                `json:"id"`
	Code             string                `json:"code"`
	Name             string                `json:"name"`
	StockType        domain.StockType      `json:"stock_type"`
	TechnicalScore   float64               `json:"technical_score"`
	FundamentalScore float64               `json:"fundamental_score"`
	TotalScore       float64               `json:"total_score"`
	Recommendation   domain.Recommendation `json:"recommendation"`
	TechWeight       float64               `json:"tech_weight"`
	FundWeight       float64               `json:"fund_weight"`
	AnalyzedAt       time.Time             `json:"analyzed_at"`
	Analysis         *analysis.Analysis    `json:"analysis,omitempty"`
}

// ListFilter selects history entries. An empty Code matches every stock.
type ListFilter struct {
	Code  string
	Limit int
}

func (f ListFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return f.Limit
	}
}
