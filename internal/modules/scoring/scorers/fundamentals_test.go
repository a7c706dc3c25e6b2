package scorers

import (
	"strings"
	"testing"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/aristath/stockscore/internal/modules/scoring"
	"github.com/aristath/stockscore/internal/modules/scoring/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundamentalEvaluator_FixedOrder(t *testing.T) {
	fe := NewFundamentalEvaluator(0)

	for _, snapshot := range []market.FundamentalSnapshot{
		{},
		{PER: 12, PBR: 1.1, ROE: 9, CurrentPrice: 70000, High52W: 80000, Low52W: 50000, ForeignRatio: 52, MarketCap: 4e14},
	} {
		signals := fe.Evaluate(snapshot, domain.Balanced)
		require.Len(t, signals, scoring.FundamentalSignalCount)
		assert.Equal(t, []string{
			scoring.IndicatorPER,
			scoring.IndicatorPBR,
			scoring.IndicatorROE,
			scoring.Indicator52WeekPos,
			scoring.IndicatorForeignRatio,
			scoring.IndicatorMarketCap,
		}, indicators(signals))
	}
}

func TestFundamentalEvaluator_UnknownMetricsAreNeutral(t *testing.T) {
	fe := NewFundamentalEvaluator(0)

	signals := fe.Evaluate(market.FundamentalSnapshot{PER: -3, PBR: 0, ROE: -10, ForeignRatio: 0}, domain.Balanced)
	for _, s := range signals {
		assert.Equal(t, domain.Neutral, s.Sentiment, s.Indicator)
		assert.True(t, strings.HasPrefix(s.Value, "N/A"), s.Value)
	}
}

func TestFundamentalEvaluator_PERBands(t *testing.T) {
	fe := NewFundamentalEvaluator(0)

	tests := []struct {
		stockType domain.StockType
		per       float64
		expected  domain.Sentiment
	}{
		{domain.Growth, 24.9, domain.Bullish},
		{domain.Growth, 25, domain.Neutral},
		{domain.Growth, 50, domain.Neutral},
		{domain.Growth, 79.9, domain.Neutral},
		{domain.Growth, 80, domain.Bearish},
		{domain.Value, 9.9, domain.Bullish},
		{domain.Value, 10, domain.Neutral},
		{domain.Value, 19.9, domain.Neutral},
		{domain.Value, 20, domain.Bearish},
		{domain.Dividend, 14.9, domain.Bullish},
		{domain.Dividend, 15, domain.Neutral},
		{domain.Dividend, 35, domain.Bearish},
		{domain.Balanced, 14.9, domain.Bullish},
		{domain.Balanced, 34.9, domain.Neutral},
		{domain.Balanced, 35, domain.Bearish},
	}

	for _, tt := range tests {
		signal := fe.Evaluate(market.FundamentalSnapshot{PER: tt.per}, tt.stockType)[0]
		assert.Equal(t, tt.expected, signal.Sentiment, "%s PER %.1f", tt.stockType, tt.per)
	}

	elevated := fe.Evaluate(market.FundamentalSnapshot{PER: 60}, domain.Growth)[0]
	assert.Contains(t, elevated.Value, "elevated")
}

func TestFundamentalEvaluator_ClassifierFeedsPERThresholds(t *testing.T) {
	classifier := NewStockTypeClassifier()
	fe := NewFundamentalEvaluator(0)

	snapshot := market.FundamentalSnapshot{PER: 30, ROE: 15}
	stockType := classifier.Classify(snapshot)
	require.Equal(t, domain.Growth, stockType)
	assert.Equal(t, domain.Neutral, fe.Evaluate(snapshot, stockType)[0].Sentiment)

	// Balanced bands would call PER 40 overvalued; Growth bands do not
	snapshot = market.FundamentalSnapshot{PER: 40, ROE: 15}
	stockType = classifier.Classify(snapshot)
	require.Equal(t, domain.Growth, stockType)
	assert.Equal(t, domain.Neutral, fe.Evaluate(snapshot, stockType)[0].Sentiment)
	assert.Equal(t, domain.Bearish, fe.Evaluate(snapshot, domain.Balanced)[0].Sentiment)
}

func TestFundamentalEvaluator_Thresholds(t *testing.T) {
	fe := NewFundamentalEvaluator(0)

	tests := []struct {
		name     string
		snapshot market.FundamentalSnapshot
		index    int
		expected domain.Sentiment
	}{
		{"PBR below book", market.FundamentalSnapshot{PBR: 0.8}, 1, domain.Bullish},
		{"PBR at 1", market.FundamentalSnapshot{PBR: 1}, 1, domain.Neutral},
		{"PBR at 3", market.FundamentalSnapshot{PBR: 3}, 1, domain.Neutral},
		{"PBR above 3", market.FundamentalSnapshot{PBR: 3.1}, 1, domain.Bearish},
		{"ROE above 15", market.FundamentalSnapshot{ROE: 15.1}, 2, domain.Bullish},
		{"ROE at 15", market.FundamentalSnapshot{ROE: 15}, 2, domain.Neutral},
		{"ROE at 5", market.FundamentalSnapshot{ROE: 5}, 2, domain.Neutral},
		{"ROE below 5", market.FundamentalSnapshot{ROE: 4.9}, 2, domain.Bearish},
		{"foreign above 40", market.FundamentalSnapshot{ForeignRatio: 40.1}, 4, domain.Bullish},
		{"foreign at 40", market.FundamentalSnapshot{ForeignRatio: 40}, 4, domain.Neutral},
		{"foreign at 10", market.FundamentalSnapshot{ForeignRatio: 10}, 4, domain.Neutral},
		{"foreign below 10", market.FundamentalSnapshot{ForeignRatio: 3}, 4, domain.Bearish},
		{"large cap", market.FundamentalSnapshot{MarketCap: 1e13}, 5, domain.Bullish},
		{"small cap", market.FundamentalSnapshot{MarketCap: 5e11}, 5, domain.Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := fe.Evaluate(tt.snapshot, domain.Balanced)[tt.index]
			assert.Equal(t, tt.expected, signal.Sentiment, signal.Value)
		})
	}
}

func TestFundamentalEvaluator_LargeCapThreshold(t *testing.T) {
	fe := NewFundamentalEvaluator(1e12)
	signal := fe.Evaluate(market.FundamentalSnapshot{MarketCap: 2e12}, domain.Balanced)[5]
	assert.Equal(t, domain.Bullish, signal.Sentiment)
	assert.Equal(t, "2T KRW (large cap)", signal.Value)
}

func TestFundamentalEvaluator_52WeekPosition(t *testing.T) {
	fe := NewFundamentalEvaluator(0)

	tests := []struct {
		name     string
		price    float64
		expected domain.Sentiment
		label    string
	}{
		{"at the high", 200, domain.Bullish, "100% (new high)"},
		{"near the high", 190, domain.Bullish, "90% (near high)"},
		{"upper range", 175, domain.Neutral, "75% (upper range)"},
		{"mid range", 150, domain.Neutral, "50% (mid range)"},
		{"between 20 and 30 stays neutral", 125, domain.Neutral, "25% (lower range)"},
		{"near the low", 115, domain.Bearish, "15% (near low)"},
		{"at the low", 100, domain.Bearish, "0% (near low)"},
		{"above the reported high", 220, domain.Bullish, "100% (new high)"},
		{"below the reported low", 90, domain.Bearish, "0% (near low)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := market.FundamentalSnapshot{CurrentPrice: tt.price, High52W: 200, Low52W: 100}
			signal := fe.Evaluate(snapshot, domain.Balanced)[3]
			assert.Equal(t, tt.expected, signal.Sentiment)
			assert.Equal(t, tt.label, signal.Value)
		})
	}

	flat := []struct {
		name  string
		price float64
		high  float64
		low   float64
	}{
		{"price on the flat range", 100, 100, 100},
		{"price above a flat range", 110, 100, 100},
		{"price below a flat range", 90, 100, 100},
		{"inverted range", 150, 100, 120},
	}

	for _, tt := range flat {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := market.FundamentalSnapshot{CurrentPrice: tt.price, High52W: tt.high, Low52W: tt.low}
			signal := fe.Evaluate(snapshot, domain.Balanced)[3]
			assert.Equal(t, domain.Neutral, signal.Sentiment)
			assert.Equal(t, "Flat 52-week range", signal.Value)
		})
	}
}

func TestFormatKRW(t *testing.T) {
	assert.Equal(t, "16.1T KRW", FormatKRW(16.1e12))
	assert.Equal(t, "1,234.5T KRW", FormatKRW(1234.5e12))
	assert.Equal(t, "850B KRW", FormatKRW(850e9))
}
