package scoring

// Scoring Constants - All thresholds, indicator names and weights for stock scoring

// =============================================================================
// Indicator Names
// =============================================================================

// Technical indicators, in output order
const (
	IndicatorMAAlignment = "MA Alignment"
	IndicatorMA20        = "Position vs MA20"
	IndicatorRSI         = "RSI"
	IndicatorMACD        = "MACD"
	IndicatorBollinger   = "Bollinger Bands"
	IndicatorStochastic  = "Stochastic"
	IndicatorVolume      = "Volume"
)

// Fundamental indicators, in output order
const (
	IndicatorPER          = "PER"
	IndicatorPBR          = "PBR"
	IndicatorROE          = "ROE"
	Indicator52WeekPos    = "52-Week Position"
	IndicatorForeignRatio = "Foreign Ratio"
	IndicatorMarketCap    = "Market Cap"
)

const (
	TechnicalSignalCount   = 7
	FundamentalSignalCount = 6
)

// =============================================================================
// Technical Thresholds
// =============================================================================

const (
	// MinPriceHistory is the number of bars technical analysis requires
	MinPriceHistory = 20

	// Moving average lengths
	MAShortLength = 5
	MAMidLength   = 20
	MALongLength  = 60

	// RSI - strict comparisons, 70 and 30 themselves are neutral
	RSILength     = 14
	RSIOverbought = 70.0
	RSIOversold   = 30.0

	// MACD
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9

	// Bollinger Bands
	BollingerLength = 20
	BollingerStdDev = 2.0

	// Band position within this distance of a band counts as "near"
	BollingerNearTolerance = 0.05

	// Stochastic
	StochasticKLength    = 14
	StochasticDLength    = 3
	StochasticOverbought = 80.0
	StochasticOversold   = 20.0

	// Volume - last bar vs the average of the bars before it
	VolumeAverageLength = 20
	VolumeSpikeRatio    = 1.5
)

// =============================================================================
// Classification Thresholds
// =============================================================================

const (
	GrowthMinPER     = 25.0
	GrowthMinROE     = 12.0
	ValueMaxPER      = 15.0
	ValueMaxPBR      = 1.5
	DividendMinYield = 3.0
)

// =============================================================================
// Fundamental Thresholds
// =============================================================================

// PERBands holds the PER cut-offs for one stock type.
// PER < Bullish is bullish, PER >= Bearish is bearish, anything between is neutral.
// Elevated only changes the display label inside the neutral band.
type PERBands struct {
	Bullish  float64
	Elevated float64
	Bearish  float64
}

// PER bands by stock type
var (
	GrowthPERBands   = PERBands{Bullish: 25, Elevated: 50, Bearish: 80}
	ValuePERBands    = PERBands{Bullish: 10, Elevated: 20, Bearish: 20}
	StandardPERBands = PERBands{Bullish: 15, Elevated: 35, Bearish: 35}
)

const (
	// PBR: < 1 bullish, 1-3 neutral, > 3 bearish
	PBRUndervalued = 1.0
	PBROvervalued  = 3.0

	// ROE (percent): > 15 bullish, 5-15 neutral, < 5 bearish
	ROEExcellent = 15.0
	ROEPoor      = 5.0

	// 52-week position (percent of range)
	Week52NewHigh = 95.0
	Week52High    = 85.0
	Week52Upper   = 70.0
	Week52Lower   = 30.0
	Week52Low     = 20.0

	// Foreign ownership (percent): > 40 bullish, 10-40 neutral, < 10 bearish
	ForeignRatioHigh = 40.0
	ForeignRatioLow  = 10.0

	// DefaultLargeCapThreshold is 10 trillion KRW
	DefaultLargeCapThreshold = 1e13
)

// =============================================================================
// Sentiment Scores and Recommendation Bands
// =============================================================================

const (
	BullishScore = 100.0
	NeutralScore = 50.0
	BearishScore = 0.0

	StrongBuyThreshold = 80.0
	BuyThreshold       = 60.0
	NeutralThreshold   = 40.0
	SellThreshold      = 20.0
)

// =============================================================================
// Weights
// =============================================================================

const (
	// DefaultIndicatorWeight applies to indicators missing from a weight table
	DefaultIndicatorWeight = 1.0

	// Caller-side blend defaults (percent)
	DefaultTechWeight = 40.0
	DefaultFundWeight = 60.0

	// MaxBatchSize caps analyze_batch
	MaxBatchSize = 20
)

// CanonicalWeights returns a fresh copy of the canonical per-indicator weight table
func CanonicalWeights() map[string]float64 {
	return map[string]float64{
		IndicatorPER:          2.0,
		IndicatorROE:          2.0,
		IndicatorMAAlignment:  1.5,
		Indicator52WeekPos:    1.5,
		IndicatorForeignRatio: 0.8,
		IndicatorMarketCap:    0.5,
	}
}

// Preset is a named tech/fund weight blend
type Preset struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	TechWeight  float64 `json:"tech_weight"`
	FundWeight  float64 `json:"fund_weight"`
}

// Presets are the blends offered to clients
var Presets = []Preset{
	{Name: "default", Description: "Balanced toward fundamentals", TechWeight: 40, FundWeight: 60},
	{Name: "trading", Description: "Short-term trading, technicals first", TechWeight: 70, FundWeight: 30},
	{Name: "value", Description: "Long-term value investing", TechWeight: 30, FundWeight: 70},
	{Name: "balanced", Description: "Equal weight", TechWeight: 50, FundWeight: 50},
}
