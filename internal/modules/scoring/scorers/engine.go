package scorers

import (
	"fmt"
	"math"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/scoring"
	"github.com/aristath/stockscore/internal/modules/scoring/domain"
	"github.com/aristath/stockscore/pkg/formulas"
)

// RecommendationEngine classifies, evaluates and scores a stock, then blends
// the technical and fundamental sub-scores into a recommendation.
//
// The engine holds no mutable state; one instance serves concurrent callers.
type RecommendationEngine struct {
	classifier   *StockTypeClassifier
	indicators   *IndicatorCalculator
	fundamentals *FundamentalEvaluator
	profiles     *WeightProfiles
	scorers      map[domain.StockType]*SignalScorer
}

// NewRecommendationEngine creates an engine. A nil profiles argument selects the defaults.
func NewRecommendationEngine(profiles *WeightProfiles, largeCapThreshold float64) *RecommendationEngine {
	if profiles == nil {
		profiles = DefaultWeightProfiles()
	}

	scorers := make(map[domain.StockType]*SignalScorer, len(domain.StockTypes))
	for _, t := range domain.StockTypes {
		scorers[t] = NewSignalScorer(profiles.For(t))
	}

	return &RecommendationEngine{
		classifier:   NewStockTypeClassifier(),
		indicators:   NewIndicatorCalculator(),
		fundamentals: NewFundamentalEvaluator(largeCapThreshold),
		profiles:     profiles,
		scorers:      scorers,
	}
}

// Profiles returns the weight profiles the engine scores with
func (e *RecommendationEngine) Profiles() *WeightProfiles {
	return e.profiles
}

// Evaluate runs the full pipeline on already-fetched data.
//
// techWeight and fundWeight are relative; they are normalized by their sum.
// Fails with ErrInvalidWeights or ErrInsufficientHistory.
func (e *RecommendationEngine) Evaluate(prices []market.PricePoint, f market.FundamentalSnapshot, techWeight, fundWeight float64) (*domain.ScoreResult, error) {
	weights, err := NormalizeWeights(techWeight, fundWeight)
	if err != nil {
		return nil, err
	}

	stockType := e.classifier.Classify(f)

	technicalSignals, err := e.indicators.Calculate(prices)
	if err != nil {
		return nil, err
	}
	fundamentalSignals := e.fundamentals.Evaluate(f, stockType)

	scorer := e.scorers[stockType]
	technicalScore := scorer.Score(technicalSignals)
	fundamentalScore := scorer.Score(fundamentalSignals)
	total, recommendation := scoreTotal(technicalScore, fundamentalScore, weights)

	return &domain.ScoreResult{
		StockType:          stockType,
		Weights:            weights,
		TechnicalScore:     formulas.Round(technicalScore, 1),
		FundamentalScore:   formulas.Round(fundamentalScore, 1),
		TotalScore:         total,
		Recommendation:     recommendation,
		TechnicalSignals:   technicalSignals,
		FundamentalSignals: fundamentalSignals,
	}, nil
}

// NormalizeWeights divides each weight by their sum.
// Negative, non-finite or all-zero weights fail with ErrInvalidWeights.
func NormalizeWeights(techWeight, fundWeight float64) (domain.Weights, error) {
	for _, w := range []float64{techWeight, fundWeight} {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return domain.Weights{}, fmt.Errorf("%w: weights must be finite numbers", market.ErrInvalidWeights)
		}
		if w < 0 {
			return domain.Weights{}, fmt.Errorf("%w: weights must not be negative (tech %v, fund %v)",
				market.ErrInvalidWeights, techWeight, fundWeight)
		}
	}

	sum := techWeight + fundWeight
	if sum <= 0 {
		return domain.Weights{}, fmt.Errorf("%w: at least one weight must be positive", market.ErrInvalidWeights)
	}

	return domain.Weights{
		Technical:   techWeight / sum,
		Fundamental: fundWeight / sum,
	}, nil
}

// Blend combines the two sub-scores with normalized weights, clamped to [0, 100]
func Blend(technicalScore, fundamentalScore float64, weights domain.Weights) float64 {
	total := technicalScore*weights.Technical + fundamentalScore*weights.Fundamental
	return formulas.Clamp(total, 0, 100)
}

// scoreTotal rounds the blended total to one decimal and labels the rounded
// value, so the reported score and its label always agree.
func scoreTotal(technicalScore, fundamentalScore float64, weights domain.Weights) (float64, domain.Recommendation) {
	total := formulas.Round(Blend(technicalScore, fundamentalScore, weights), 1)
	return total, RecommendationFor(total)
}

// RecommendationFor maps a total score to its label
func RecommendationFor(total float64) domain.Recommendation {
	switch {
	case total >= scoring.StrongBuyThreshold:
		return domain.StrongBuy
	case total >= scoring.BuyThreshold:
		return domain.Buy
	case total >= scoring.NeutralThreshold:
		return domain.Hold
	case total >= scoring.SellThreshold:
		return domain.Sell
	default:
		return domain.StrongSell
	}
}
