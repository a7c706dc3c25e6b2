// Package analysis runs the scoring engine over data fetched from a market data source.
package analysis

import (
	"sort"
	"time"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/scoring"
	"github.com/aristath/stockscore/internal/modules/scoring/domain"
	"github.com/aristath/stockscore/pkg/formulas"
)

// Analysis is the scored result for one stock, with the descriptive data it was based on
type Analysis struct {
	domain.ScoreResult
	AnalyzedAt    time.Time                  `json:"analyzed_at"`
	StockInfo     market.FundamentalSnapshot `json:"stock_info"`
	Code          string                     `json:"code"`
	Name          string                     `json:"name"`
	Market        string                     `json:"market,omitempty"`
	Date          string                     `json:"date"`
	CurrentPrice  float64                    `json:"current_price"`
	PrevClose     float64                    `json:"prev_close"`
	ChangePercent float64                    `json:"change_pct"`
}

// BatchItem is the outcome for one requested stock. Exactly one of Analysis and Error is set.
type BatchItem struct {
	Query     string    `json:"query"`
	Analysis  *Analysis `json:"analysis,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty"`
	err       error
}

// Err returns the item's error, if any
func (i BatchItem) Err() error {
	return i.err
}

// OK reports whether the item was analyzed successfully
func (i BatchItem) OK() bool {
	return i.Analysis != nil
}

// BatchError describes one failed stock in a batch summary
type BatchError struct {
	Query   string `json:"query"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// BatchSummary aggregates a batch. AvgScore covers successful items only.
type BatchSummary struct {
	TotalAnalyzed  int          `json:"total_analyzed"`
	Failed         int          `json:"failed"`
	BuySignals     int          `json:"buy_signals"`
	NeutralSignals int          `json:"neutral_signals"`
	SellSignals    int          `json:"sell_signals"`
	AvgScore       float64      `json:"avg_score"`
	Errors         []BatchError `json:"errors,omitempty"`
}

// BatchResult holds per-stock outcomes in request order plus the summary
type BatchResult struct {
	Results []BatchItem  `json:"results"`
	Summary BatchSummary `json:"summary"`
}

// Ranked returns successful items by total score, highest first, followed by failures in request order
func (r *BatchResult) Ranked() []BatchItem {
	ranked := make([]BatchItem, len(r.Results))
	copy(ranked, r.Results)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.OK() != b.OK() {
			return a.OK()
		}
		if !a.OK() {
			return false
		}
		return a.Analysis.TotalScore > b.Analysis.TotalScore
	})
	return ranked
}

// Summarize builds the batch summary.
// Buy means total >= 60, sell means total < 40.
func Summarize(items []BatchItem) BatchSummary {
	var summary BatchSummary
	var total float64

	for _, item := range items {
		if !item.OK() {
			summary.Failed++
			summary.Errors = append(summary.Errors, BatchError{
				Query:   item.Query,
				Kind:    item.ErrorKind,
				Message: item.Error,
			})
			continue
		}

		score := item.Analysis.TotalScore
		summary.TotalAnalyzed++
		total += score
		switch {
		case score >= scoring.BuyThreshold:
			summary.BuySignals++
		case score < scoring.NeutralThreshold:
			summary.SellSignals++
		default:
			summary.NeutralSignals++
		}
	}

	if summary.TotalAnalyzed > 0 {
		summary.AvgScore = formulas.Round(total/float64(summary.TotalAnalyzed), 1)
	}
	return summary
}

func failedItem(query string, err error) BatchItem {
	return BatchItem{
		Query:     query,
		Error:     err.Error(),
		ErrorKind: market.KindName(err),
		err:       err,
	}
}
