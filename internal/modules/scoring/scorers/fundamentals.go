package scorers

import (
	"fmt"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/scoring"
	"github.com/aristath/stockscore/internal/modules/scoring/domain"
	"github.com/aristath/stockscore/pkg/formulas"
	"github.com/dustin/go-humanize"
)

// FundamentalEvaluator turns company metrics into fundamental signals
type FundamentalEvaluator struct {
	largeCapThreshold float64
}

// NewFundamentalEvaluator creates a new fundamental evaluator.
// A non-positive threshold selects DefaultLargeCapThreshold.
func NewFundamentalEvaluator(largeCapThreshold float64) *FundamentalEvaluator {
	if largeCapThreshold <= 0 {
		largeCapThreshold = scoring.DefaultLargeCapThreshold
	}
	return &FundamentalEvaluator{largeCapThreshold: largeCapThreshold}
}

// Evaluate returns exactly six signals in fixed order:
// PER, PBR, ROE, 52-week position, foreign ratio, market cap.
//
// PER thresholds depend on the stock type. Unknown metrics read neutral "N/A".
func (fe *FundamentalEvaluator) Evaluate(f market.FundamentalSnapshot, stockType domain.StockType) []domain.Signal {
	return []domain.Signal{
		fe.per(f.PER, stockType),
		fe.pbr(f.PBR),
		fe.roe(f.ROE),
		fe.week52Position(f.CurrentPrice, f.High52W, f.Low52W),
		fe.foreignRatio(f.ForeignRatio),
		fe.marketCap(f.MarketCap),
	}
}

// PERBandsFor returns the PER thresholds used for a stock type
func PERBandsFor(stockType domain.StockType) scoring.PERBands {
	switch stockType {
	case domain.Growth:
		return scoring.GrowthPERBands
	case domain.Value:
		return scoring.ValuePERBands
	default:
		return scoring.StandardPERBands
	}
}

func (fe *FundamentalEvaluator) per(per float64, stockType domain.StockType) domain.Signal {
	if per <= 0 {
		return notAvailable(scoring.IndicatorPER, "no earnings data")
	}

	bands := PERBandsFor(stockType)
	value := fmt.Sprintf("%.1fx", per)
	switch {
	case per < bands.Bullish:
		return domain.Signal{Indicator: scoring.IndicatorPER, Value: value + " (undervalued)", Sentiment: domain.Bullish}
	case per >= bands.Bearish:
		return domain.Signal{Indicator: scoring.IndicatorPER, Value: value + " (overvalued)", Sentiment: domain.Bearish}
	case per >= bands.Elevated:
		return domain.Signal{Indicator: scoring.IndicatorPER, Value: value + " (elevated)", Sentiment: domain.Neutral}
	default:
		return domain.Signal{Indicator: scoring.IndicatorPER, Value: value + " (fair)", Sentiment: domain.Neutral}
	}
}

func (fe *FundamentalEvaluator) pbr(pbr float64) domain.Signal {
	if pbr <= 0 {
		return notAvailable(scoring.IndicatorPBR, "no book value data")
	}

	value := fmt.Sprintf("%.2fx", pbr)
	switch {
	case pbr < scoring.PBRUndervalued:
		return domain.Signal{Indicator: scoring.IndicatorPBR, Value: value + " (below book value)", Sentiment: domain.Bullish}
	case pbr > scoring.PBROvervalued:
		return domain.Signal{Indicator: scoring.IndicatorPBR, Value: value + " (overvalued)", Sentiment: domain.Bearish}
	default:
		return domain.Signal{Indicator: scoring.IndicatorPBR, Value: value + " (fair)", Sentiment: domain.Neutral}
	}
}

func (fe *FundamentalEvaluator) roe(roe float64) domain.Signal {
	if roe <= 0 {
		return notAvailable(scoring.IndicatorROE, "no profitability data")
	}

	value := fmt.Sprintf("%.1f%%", roe)
	switch {
	case roe > scoring.ROEExcellent:
		return domain.Signal{Indicator: scoring.IndicatorROE, Value: value + " (excellent)", Sentiment: domain.Bullish}
	case roe < scoring.ROEPoor:
		return domain.Signal{Indicator: scoring.IndicatorROE, Value: value + " (poor)", Sentiment: domain.Bearish}
	default:
		return domain.Signal{Indicator: scoring.IndicatorROE, Value: value + " (adequate)", Sentiment: domain.Neutral}
	}
}

// week52Position places the current price in its 52-week range.
// A flat reported range (high <= low) is neutral. Otherwise the range is
// widened to include the current price, since reported 52-week figures can
// lag an intraday breakout.
func (fe *FundamentalEvaluator) week52Position(price, high, low float64) domain.Signal {
	if price <= 0 || high <= 0 || low <= 0 {
		return notAvailable(scoring.Indicator52WeekPos, "no 52-week range")
	}

	if high <= low {
		return domain.Signal{Indicator: scoring.Indicator52WeekPos, Value: "Flat 52-week range", Sentiment: domain.Neutral}
	}

	pos := *formulas.RangePosition(price, min(low, price), max(high, price))

	value := fmt.Sprintf("%.0f%%", pos)
	switch {
	case pos >= scoring.Week52NewHigh:
		return domain.Signal{Indicator: scoring.Indicator52WeekPos, Value: value + " (new high)", Sentiment: domain.Bullish}
	case pos >= scoring.Week52High:
		return domain.Signal{Indicator: scoring.Indicator52WeekPos, Value: value + " (near high)", Sentiment: domain.Bullish}
	case pos >= scoring.Week52Upper:
		return domain.Signal{Indicator: scoring.Indicator52WeekPos, Value: value + " (upper range)", Sentiment: domain.Neutral}
	case pos >= scoring.Week52Lower:
		return domain.Signal{Indicator: scoring.Indicator52WeekPos, Value: value + " (mid range)", Sentiment: domain.Neutral}
	case pos >= scoring.Week52Low:
		return domain.Signal{Indicator: scoring.Indicator52WeekPos, Value: value + " (lower range)", Sentiment: domain.Neutral}
	default:
		return domain.Signal{Indicator: scoring.Indicator52WeekPos, Value: value + " (near low)", Sentiment: domain.Bearish}
	}
}

func (fe *FundamentalEvaluator) foreignRatio(ratio float64) domain.Signal {
	if ratio <= 0 {
		return notAvailable(scoring.IndicatorForeignRatio, "no ownership data")
	}

	value := fmt.Sprintf("%.1f%%", ratio)
	switch {
	case ratio > scoring.ForeignRatioHigh:
		return domain.Signal{Indicator: scoring.IndicatorForeignRatio, Value: value + " (high)", Sentiment: domain.Bullish}
	case ratio < scoring.ForeignRatioLow:
		return domain.Signal{Indicator: scoring.IndicatorForeignRatio, Value: value + " (low)", Sentiment: domain.Bearish}
	default:
		return domain.Signal{Indicator: scoring.IndicatorForeignRatio, Value: value + " (moderate)", Sentiment: domain.Neutral}
	}
}

func (fe *FundamentalEvaluator) marketCap(marketCap float64) domain.Signal {
	if marketCap <= 0 {
		return notAvailable(scoring.IndicatorMarketCap, "no market cap data")
	}

	value := FormatKRW(marketCap)
	if marketCap >= fe.largeCapThreshold {
		return domain.Signal{Indicator: scoring.IndicatorMarketCap, Value: value + " (large cap)", Sentiment: domain.Bullish}
	}
	return domain.Signal{Indicator: scoring.IndicatorMarketCap, Value: value, Sentiment: domain.Neutral}
}

// FormatKRW renders a won amount in trillions or billions, e.g. "16.1T KRW"
func FormatKRW(amount float64) string {
	if amount >= 1e12 {
		return humanize.CommafWithDigits(amount/1e12, 1) + "T KRW"
	}
	return humanize.CommafWithDigits(amount/1e9, 1) + "B KRW"
}
