package scorers

import (
	"fmt"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/scoring"
	"github.com/aristath/stockscore/internal/modules/scoring/domain"
	"github.com/aristath/stockscore/pkg/formulas"
	"github.com/dustin/go-humanize"
)

// IndicatorCalculator turns a price/volume series into technical signals
type IndicatorCalculator struct{}

// NewIndicatorCalculator creates a new indicator calculator
func NewIndicatorCalculator() *IndicatorCalculator {
	return &IndicatorCalculator{}
}

// series holds the price columns an evaluation works on
type series struct {
	closes  []float64
	highs   []float64
	lows    []float64
	volumes []float64
}

func newSeries(prices []market.PricePoint) series {
	s := series{
		closes:  make([]float64, len(prices)),
		highs:   make([]float64, len(prices)),
		lows:    make([]float64, len(prices)),
		volumes: make([]float64, len(prices)),
	}
	for i, p := range prices {
		s.closes[i] = p.Close
		// Sources sometimes omit intraday range; fall back to the close
		s.highs[i] = p.High
		if p.High <= 0 {
			s.highs[i] = p.Close
		}
		s.lows[i] = p.Low
		if p.Low <= 0 {
			s.lows[i] = p.Close
		}
		s.volumes[i] = float64(p.Volume)
	}
	return s
}

// Calculate returns exactly seven signals in fixed order:
// MA alignment, position vs MA20, RSI, MACD, Bollinger Bands, Stochastic, Volume.
//
// Fails with ErrInsufficientHistory below 20 price points. Indicators whose
// own lookback is longer than the history read neutral "N/A".
func (ic *IndicatorCalculator) Calculate(prices []market.PricePoint) ([]domain.Signal, error) {
	if len(prices) < scoring.MinPriceHistory {
		return nil, fmt.Errorf("%w: need at least %d price points, got %d",
			market.ErrInsufficientHistory, scoring.MinPriceHistory, len(prices))
	}

	s := newSeries(prices)

	return []domain.Signal{
		ic.maAlignment(s.closes),
		ic.positionVsMA20(s.closes),
		ic.rsi(s.closes),
		ic.macd(s.closes),
		ic.bollinger(s.closes),
		ic.stochastic(s),
		ic.volume(s),
	}, nil
}

func (ic *IndicatorCalculator) maAlignment(closes []float64) domain.Signal {
	short := formulas.CalculateSMA(closes, scoring.MAShortLength)
	mid := formulas.CalculateSMA(closes, scoring.MAMidLength)
	long := formulas.CalculateSMA(closes, scoring.MALongLength)
	if short == nil || mid == nil || long == nil {
		return notAvailable(scoring.IndicatorMAAlignment,
			fmt.Sprintf("needs %d bars, have %d", scoring.MALongLength, len(closes)))
	}

	switch {
	case *short > *mid && *mid > *long:
		return domain.Signal{Indicator: scoring.IndicatorMAAlignment, Value: "Bullish alignment (MA5 > MA20 > MA60)", Sentiment: domain.Bullish}
	case *short < *mid && *mid < *long:
		return domain.Signal{Indicator: scoring.IndicatorMAAlignment, Value: "Bearish alignment (MA5 < MA20 < MA60)", Sentiment: domain.Bearish}
	default:
		return domain.Signal{Indicator: scoring.IndicatorMAAlignment, Value: "Mixed", Sentiment: domain.Neutral}
	}
}

func (ic *IndicatorCalculator) positionVsMA20(closes []float64) domain.Signal {
	ma20 := formulas.CalculateSMA(closes, scoring.MAMidLength)
	if ma20 == nil {
		return notAvailable(scoring.IndicatorMA20, "no moving average")
	}
	current := closes[len(closes)-1]
	distance := formulas.CalculateDistanceFromMA(current, *ma20)
	if distance == nil {
		return notAvailable(scoring.IndicatorMA20, "non-positive moving average")
	}

	switch {
	case current > *ma20:
		return domain.Signal{Indicator: scoring.IndicatorMA20, Value: fmt.Sprintf("Above (%+.1f%%)", *distance), Sentiment: domain.Bullish}
	case current < *ma20:
		return domain.Signal{Indicator: scoring.IndicatorMA20, Value: fmt.Sprintf("Below (%+.1f%%)", *distance), Sentiment: domain.Bearish}
	default:
		return domain.Signal{Indicator: scoring.IndicatorMA20, Value: "At MA20 (0.0%)", Sentiment: domain.Neutral}
	}
}

func (ic *IndicatorCalculator) rsi(closes []float64) domain.Signal {
	rsi := formulas.CalculateRSI(closes, scoring.RSILength)
	if rsi == nil {
		return notAvailable(scoring.IndicatorRSI, fmt.Sprintf("needs %d bars", scoring.RSILength+1))
	}

	switch {
	case *rsi > scoring.RSIOverbought:
		return domain.Signal{Indicator: scoring.IndicatorRSI, Value: fmt.Sprintf("%.0f (overbought)", *rsi), Sentiment: domain.Bearish}
	case *rsi < scoring.RSIOversold:
		return domain.Signal{Indicator: scoring.IndicatorRSI, Value: fmt.Sprintf("%.0f (oversold)", *rsi), Sentiment: domain.Bullish}
	default:
		return domain.Signal{Indicator: scoring.IndicatorRSI, Value: fmt.Sprintf("%.0f (neutral)", *rsi), Sentiment: domain.Neutral}
	}
}

func (ic *IndicatorCalculator) macd(closes []float64) domain.Signal {
	macd := formulas.CalculateMACD(closes, scoring.MACDFast, scoring.MACDSlow, scoring.MACDSignal)
	if macd == nil {
		return notAvailable(scoring.IndicatorMACD,
			fmt.Sprintf("needs %d bars, have %d", formulas.MACDMinLength(scoring.MACDSlow, scoring.MACDSignal), len(closes)))
	}

	switch {
	case macd.Line > macd.Signal:
		return domain.Signal{Indicator: scoring.IndicatorMACD, Value: fmt.Sprintf("Above signal (%.2f > %.2f)", macd.Line, macd.Signal), Sentiment: domain.Bullish}
	case macd.Line < macd.Signal:
		return domain.Signal{Indicator: scoring.IndicatorMACD, Value: fmt.Sprintf("Below signal (%.2f < %.2f)", macd.Line, macd.Signal), Sentiment: domain.Bearish}
	default:
		return domain.Signal{Indicator: scoring.IndicatorMACD, Value: fmt.Sprintf("On signal (%.2f)", macd.Line), Sentiment: domain.Neutral}
	}
}

func (ic *IndicatorCalculator) bollinger(closes []float64) domain.Signal {
	bb := formulas.CalculateBollingerPosition(closes, scoring.BollingerLength, scoring.BollingerStdDev)
	if bb == nil {
		return notAvailable(scoring.IndicatorBollinger, fmt.Sprintf("needs %d bars", scoring.BollingerLength))
	}

	pct := bb.Position * 100
	switch {
	case bb.Bands.Upper <= bb.Bands.Lower:
		return domain.Signal{Indicator: scoring.IndicatorBollinger, Value: "Bands collapsed (no volatility)", Sentiment: domain.Neutral}
	case bb.Position >= 1-scoring.BollingerNearTolerance:
		return domain.Signal{Indicator: scoring.IndicatorBollinger, Value: fmt.Sprintf("At upper band (%.0f%%, overextended)", pct), Sentiment: domain.Bearish}
	case bb.Position <= scoring.BollingerNearTolerance:
		return domain.Signal{Indicator: scoring.IndicatorBollinger, Value: fmt.Sprintf("At lower band (%.0f%%, oversold)", pct), Sentiment: domain.Bullish}
	default:
		return domain.Signal{Indicator: scoring.IndicatorBollinger, Value: fmt.Sprintf("Within band (%.0f%%)", pct), Sentiment: domain.Neutral}
	}
}

func (ic *IndicatorCalculator) stochastic(s series) domain.Signal {
	stoch := formulas.CalculateStochastic(s.highs, s.lows, s.closes, scoring.StochasticKLength, scoring.StochasticDLength)
	if stoch == nil {
		return notAvailable(scoring.IndicatorStochastic,
			fmt.Sprintf("needs %d bars", scoring.StochasticKLength+scoring.StochasticDLength-1))
	}

	value := fmt.Sprintf("K %.0f / D %.0f", stoch.K, stoch.D)
	switch {
	case stoch.K > scoring.StochasticOverbought:
		return domain.Signal{Indicator: scoring.IndicatorStochastic, Value: value + " (overbought)", Sentiment: domain.Bearish}
	case stoch.K < scoring.StochasticOversold:
		return domain.Signal{Indicator: scoring.IndicatorStochastic, Value: value + " (oversold)", Sentiment: domain.Bullish}
	default:
		return domain.Signal{Indicator: scoring.IndicatorStochastic, Value: value, Sentiment: domain.Neutral}
	}
}

func (ic *IndicatorCalculator) volume(s series) domain.Signal {
	n := len(s.volumes)
	start := n - 1 - scoring.VolumeAverageLength
	if start < 0 {
		start = 0
	}
	average := formulas.Mean(s.volumes[start : n-1])
	if average <= 0 {
		return notAvailable(scoring.IndicatorVolume, "no trading volume")
	}

	last := s.volumes[n-1]
	ratio := last / average
	value := fmt.Sprintf("%.1fx average (%s)", ratio, humanize.Comma(int64(last)))

	if ratio >= scoring.VolumeSpikeRatio {
		change := s.closes[n-1] - s.closes[n-2]
		switch {
		case change > 0:
			return domain.Signal{Indicator: scoring.IndicatorVolume, Value: value + ", spike on rising price", Sentiment: domain.Bullish}
		case change < 0:
			return domain.Signal{Indicator: scoring.IndicatorVolume, Value: value + ", spike on falling price", Sentiment: domain.Bearish}
		}
	}
	return domain.Signal{Indicator: scoring.IndicatorVolume, Value: value, Sentiment: domain.Neutral}
}

// notAvailable is the neutral placeholder for an indicator that cannot be computed
func notAvailable(indicator, reason string) domain.Signal {
	return domain.Signal{
		Indicator: indicator,
		Value:     "N/A (" + reason + ")",
		Sentiment: domain.Neutral,
	}
}
