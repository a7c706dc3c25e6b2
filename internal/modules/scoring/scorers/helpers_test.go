package scorers

import (
	"time"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/scoring/domain"
)

var baseDate = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// pricesFrom builds daily bars whose high and low equal the close
func pricesFrom(closes []float64) []market.PricePoint {
	prices := make([]market.PricePoint, len(closes))
	for i, c := range closes {
		prices[i] = market.PricePoint{
			Date:   baseDate.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return prices
}

func linearCloses(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func flatCloses(value float64, n int) []float64 {
	return linearCloses(value, 0, n)
}

func sentiments(signals []domain.Signal) map[string]domain.Sentiment {
	out := make(map[string]domain.Sentiment, len(signals))
	for _, s := range signals {
		out[s.Indicator] = s.Sentiment
	}
	return out
}

func indicators(signals []domain.Signal) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = s.Indicator
	}
	return out
}
