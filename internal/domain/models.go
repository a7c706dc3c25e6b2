// Package domain provides core domain models and types.
package domain

import "time"

// PricePoint is one daily bar of price history.
// Sequences of PricePoint are chronological, most recent last.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// FundamentalSnapshot holds company metrics as reported by the market data source.
//
// Zero or negative numeric fields mean "unknown" and are never errors.
// Code, Name, Market and PrevClose are descriptive only.
type FundamentalSnapshot struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Market        string  `json:"market,omitempty"`
	CurrentPrice  float64 `json:"current_price"`
	PrevClose     float64 `json:"prev_close,omitempty"`
	PER           float64 `json:"per"`
	PBR           float64 `json:"pbr"`
	EPS           float64 `json:"eps"`
	ROE           float64 `json:"roe"`            // percent
	DividendYield float64 `json:"dividend_yield"` // percent
	High52W       float64 `json:"high_52w"`
	Low52W        float64 `json:"low_52w"`
	MarketCap     float64 `json:"market_cap"`    // KRW
	ForeignRatio  float64 `json:"foreign_ratio"` // percent
	Volume        int64   `json:"volume"`
}

// ChangePercent returns the day's change against PrevClose, or 0 when PrevClose is unknown.
func (f FundamentalSnapshot) ChangePercent() float64 {
	if f.PrevClose <= 0 || f.CurrentPrice <= 0 {
		return 0
	}
	return (f.CurrentPrice/f.PrevClose - 1) * 100
}

// StockMatch is one result of a stock name search.
type StockMatch struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Market string `json:"market,omitempty"`
}

// Closes extracts closing prices from a price series.
func Closes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}
