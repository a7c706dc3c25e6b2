package naver

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	market "github.com/aristath/stockscore/internal/domain"
	"golang.org/x/net/html/charset"
)

var (
	numberCleaner  = regexp.MustCompile(`[^\d.\-]`)
	joPattern      = regexp.MustCompile(`([\d,]+)\s*조`)
	eokPattern     = regexp.MustCompile(`([\d,]+)\s*억`)
	hrefCodeRegexp = regexp.MustCompile(`code=(\d{6})`)
)

// parseNumber extracts a number from display text such as "1,234", "14.50배" or "55.12%".
// Text without digits parses as 0.
func parseNumber(text string) float64 {
	cleaned := numberCleaner.ReplaceAllString(strings.ReplaceAll(text, ",", ""), "")
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseKoreanAmount converts "16조 1,100억" style amounts to won.
// A bare trailing number counts as 억 (100 million), which is how the item
// page renders market cap.
func parseKoreanAmount(text string) float64 {
	var total float64
	rest := text

	if m := joPattern.FindStringSubmatchIndex(text); m != nil {
		total += parseNumber(text[m[2]:m[3]]) * 1e12
		rest = text[m[1]:]
	}

	if m := eokPattern.FindStringSubmatch(rest); m != nil {
		total += parseNumber(m[1]) * 1e8
	} else if n := parseNumber(rest); n > 0 {
		total += n * 1e8
	}

	return total
}

// decodeBody converts an HTML body to UTF-8 using the Content-Type and meta tags.
// The desktop pages are served as EUC-KR.
func decodeBody(body []byte, contentType string) io.Reader {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return bytes.NewReader(body)
	}
	return r
}

type chartResponse struct {
	ChartData struct {
		Items []struct {
			Data string `xml:"data,attr"`
		} `xml:"item"`
	} `xml:"chartdata"`
}

// parseChartXML parses the fchart daily series.
// Each item carries "YYYYMMDD|open|high|low|close|volume".
func parseChartXML(data []byte) ([]market.PricePoint, error) {
	var chart chartResponse
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&chart); err != nil {
		return nil, err
	}

	prices := make([]market.PricePoint, 0, len(chart.ChartData.Items))
	for _, item := range chart.ChartData.Items {
		fields := strings.Split(item.Data, "|")
		if len(fields) < 5 {
			continue
		}

		date, err := time.Parse("20060102", fields[0])
		if err != nil {
			return nil, fmt.Errorf("bad date %q: %w", fields[0], err)
		}

		p := market.PricePoint{
			Date:  date,
			Open:  parseNumber(fields[1]),
			High:  parseNumber(fields[2]),
			Low:   parseNumber(fields[3]),
			Close: parseNumber(fields[4]),
		}
		if len(fields) > 5 {
			p.Volume = int64(parseNumber(fields[5]))
		}
		if p.Close <= 0 {
			continue
		}
		prices = append(prices, p)
	}

	sort.SliceStable(prices, func(i, j int) bool {
		return prices[i].Date.Before(prices[j].Date)
	})
	return prices, nil
}

type integrationResponse struct {
	StockName  string `json:"stockName"`
	TotalInfos []struct {
		Code  string `json:"code"`
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"totalInfos"`
}

// setIfUnknown fills *field only while it still holds the unknown sentinel
func setIfUnknown(field *float64, value float64) {
	if *field == 0 {
		*field = value
	}
}

// parseIntegration reads the mobile integration API. Earlier sources win.
func parseIntegration(data []byte, s *market.FundamentalSnapshot) error {
	var resp integrationResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}

	if s.Name == "" {
		s.Name = strings.TrimSpace(resp.StockName)
	}

	for _, info := range resp.TotalInfos {
		switch info.Code {
		case "lastClosePrice":
			setIfUnknown(&s.PrevClose, parseNumber(info.Value))
		case "highPriceOf52Weeks":
			setIfUnknown(&s.High52W, parseNumber(info.Value))
		case "lowPriceOf52Weeks":
			setIfUnknown(&s.Low52W, parseNumber(info.Value))
		case "accumulatedTradingVolume":
			if s.Volume == 0 {
				s.Volume = int64(parseNumber(info.Value))
			}
		case "marketValue":
			setIfUnknown(&s.MarketCap, parseKoreanAmount(info.Value))
		case "foreignRate":
			setIfUnknown(&s.ForeignRatio, parseNumber(info.Value))
		case "per":
			setIfUnknown(&s.PER, parseNumber(info.Value))
		case "eps":
			setIfUnknown(&s.EPS, parseNumber(info.Value))
		case "pbr":
			setIfUnknown(&s.PBR, parseNumber(info.Value))
		case "dividendYieldRatio":
			setIfUnknown(&s.DividendYield, parseNumber(info.Value))
		case "roe":
			setIfUnknown(&s.ROE, parseNumber(info.Value))
		}
	}
	return nil
}

type basicResponse struct {
	StockName         string `json:"stockName"`
	ClosePrice        string `json:"closePrice"`
	StockExchangeName string `json:"stockExchangeName"`
}

// parseBasic reads the mobile basic API (name, price, exchange)
func parseBasic(data []byte, s *market.FundamentalSnapshot) error {
	var resp basicResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}

	if s.Name == "" {
		s.Name = strings.TrimSpace(resp.StockName)
	}
	if s.Market == "" {
		s.Market = resp.StockExchangeName
	}
	setIfUnknown(&s.CurrentPrice, parseNumber(resp.ClosePrice))
	return nil
}

type financeAnnualResponse struct {
	FinanceInfos []struct {
		Key    string        `json:"key"`
		Values []interface{} `json:"values"`
	} `json:"financeInfos"`
}

// parseFinanceAnnual takes the most recent reported ROE
func parseFinanceAnnual(data []byte, s *market.FundamentalSnapshot) error {
	var resp financeAnnualResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}

	for _, info := range resp.FinanceInfos {
		if info.Key != "roe" {
			continue
		}
		for i := len(info.Values) - 1; i >= 0; i-- {
			v := info.Values[i]
			if v == nil {
				continue
			}
			text := fmt.Sprint(v)
			if text == "" || text == "-" {
				continue
			}
			setIfUnknown(&s.ROE, parseNumber(text))
			return nil
		}
	}
	return fmt.Errorf("no ROE in annual finance data")
}

// parseMainPage reads the desktop item page
func parseMainPage(r io.Reader, s *market.FundamentalSnapshot) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return err
	}

	if s.Name == "" {
		s.Name = strings.TrimSpace(doc.Find("div.wrap_company h2 a").First().Text())
	}
	if s.Market == "" {
		switch {
		case doc.Find("div.description img.kospi").Length() > 0:
			s.Market = "KOSPI"
		case doc.Find("div.description img.kosdaq").Length() > 0:
			s.Market = "KOSDAQ"
		}
	}

	setIfUnknown(&s.CurrentPrice, parseNumber(doc.Find("p.no_today span.blind").First().Text()))
	setIfUnknown(&s.MarketCap, parseKoreanAmount(doc.Find("em#_market_sum").Text()))
	setIfUnknown(&s.PER, parseNumber(doc.Find("em#_per").Text()))
	setIfUnknown(&s.EPS, parseNumber(doc.Find("em#_eps").Text()))
	setIfUnknown(&s.PBR, parseNumber(doc.Find("em#_pbr").Text()))
	setIfUnknown(&s.DividendYield, parseNumber(doc.Find("em#_dvr").Text()))

	return nil
}

// parseSearchResults reads the search list page
func parseSearchResults(r io.Reader) ([]market.StockMatch, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var matches []market.StockMatch
	seen := make(map[string]bool)
	doc.Find("a.tit").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		m := hrefCodeRegexp.FindStringSubmatch(href)
		if m == nil || seen[m[1]] {
			return
		}
		seen[m[1]] = true
		matches = append(matches, market.StockMatch{
			Code: m[1],
			Name: strings.TrimSpace(a.Text()),
		})
	})

	return matches, nil
}
