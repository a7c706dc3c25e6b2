package scorers

import (
	"github.com/aristath/stockscore/internal/modules/scoring"
	"github.com/aristath/stockscore/internal/modules/scoring/domain"
	"github.com/aristath/stockscore/pkg/formulas"
)

// WeightTable maps indicator names to weights. It is immutable once built
// and safe to share between goroutines.
type WeightTable struct {
	weights map[string]float64
}

// NewWeightTable copies weights into a new table
func NewWeightTable(weights map[string]float64) WeightTable {
	copied := make(map[string]float64, len(weights))
	for k, v := range weights {
		copied[k] = v
	}
	return WeightTable{weights: copied}
}

// CanonicalWeightTable returns the default weight table
func CanonicalWeightTable() WeightTable {
	return NewWeightTable(scoring.CanonicalWeights())
}

// Weight returns the weight for an indicator, 1.0 when it is not listed
func (wt WeightTable) Weight(indicator string) float64 {
	if w, ok := wt.weights[indicator]; ok {
		return w
	}
	return scoring.DefaultIndicatorWeight
}

// Map returns a copy of the explicit weights
func (wt WeightTable) Map() map[string]float64 {
	copied := make(map[string]float64, len(wt.weights))
	for k, v := range wt.weights {
		copied[k] = v
	}
	return copied
}

// SignalScorer converts signals into a 0-100 sub-score
type SignalScorer struct {
	weights WeightTable
}

// NewSignalScorer creates a scorer bound to a weight table
func NewSignalScorer(weights WeightTable) *SignalScorer {
	return &SignalScorer{weights: weights}
}

// Score returns the weighted mean of the signal values
// (bullish 100, neutral 50, bearish 0):
//
//	Σ(value × weight) / Σ(weight)
//
// An empty signal set, or one whose weights sum to zero, scores 50.
func (s *SignalScorer) Score(signals []domain.Signal) float64 {
	if len(signals) == 0 {
		return scoring.NeutralScore
	}

	values := make([]float64, len(signals))
	weights := make([]float64, len(signals))
	for i, sig := range signals {
		values[i] = sig.Sentiment.Score()
		weights[i] = s.weights.Weight(sig.Indicator)
	}

	mean := formulas.WeightedMean(values, weights)
	if mean == nil {
		return scoring.NeutralScore
	}
	return formulas.Clamp(*mean, 0, 100)
}
