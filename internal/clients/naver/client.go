// Package naver provides a market data client for Naver Finance.
package naver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	market "github.com/aristath/stockscore/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://finance.naver.com"
	DefaultMobileURL = "https://m.stock.naver.com/api/stock"
	DefaultChartURL  = "https://fchart.stock.naver.com/sise.nhn"

	DefaultTimeout     = 10 * time.Second
	DefaultRateLimit   = 2.0 // requests per second
	DefaultHistoryDays = 120

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxBodySize = 4 << 20
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// Config configures the Naver client. Zero values select defaults.
type Config struct {
	BaseURL     string
	MobileURL   string
	ChartURL    string
	RateLimit   float64
	Timeout     time.Duration
	HistoryDays int
}

// Client fetches price history, fundamentals and search results from Naver Finance.
// All requests share one rate limiter.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient creates a new Naver Finance client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MobileURL == "" {
		cfg.MobileURL = DefaultMobileURL
	}
	if cfg.ChartURL == "" {
		cfg.ChartURL = DefaultChartURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = DefaultHistoryDays
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		log:     log.With().Str("client", "naver").Logger(),
	}
}

// FetchPriceHistory returns up to HistoryDays daily bars, oldest first
func (c *Client) FetchPriceHistory(ctx context.Context, code string) ([]market.PricePoint, error) {
	params := url.Values{}
	params.Set("symbol", code)
	params.Set("timeframe", "day")
	params.Set("count", strconv.Itoa(c.cfg.HistoryDays))
	params.Set("requestType", "0")

	body, _, err := c.get(ctx, c.cfg.ChartURL+"?"+params.Encode())
	if err != nil {
		return nil, market.WithCode(code, err)
	}

	prices, err := parseChartXML(body)
	if err != nil {
		return nil, market.NewStockError(code, market.ErrSourceUnavailable, "malformed chart data: %v", err)
	}
	if len(prices) == 0 {
		return nil, market.NewStockError(code, market.ErrNotFound, "no price history")
	}

	c.log.Debug().Str("code", code).Int("bars", len(prices)).Msg("Fetched price history")
	return prices, nil
}

// FetchFundamentals merges the mobile integration and basic APIs, the annual
// finance API (ROE) and the desktop item page into one snapshot.
// Individual sources may fail; the call fails only when none produced data.
func (c *Client) FetchFundamentals(ctx context.Context, code string) (market.FundamentalSnapshot, error) {
	snapshot := market.FundamentalSnapshot{Code: code}
	var errs []error

	if body, _, err := c.get(ctx, c.cfg.MobileURL+"/"+code+"/integration"); err != nil {
		errs = append(errs, err)
	} else if err := parseIntegration(body, &snapshot); err != nil {
		c.log.Warn().Err(err).Str("code", code).Msg("Failed to parse integration data")
	}

	if body, _, err := c.get(ctx, c.cfg.MobileURL+"/"+code+"/basic"); err != nil {
		errs = append(errs, err)
	} else if err := parseBasic(body, &snapshot); err != nil {
		c.log.Warn().Err(err).Str("code", code).Msg("Failed to parse basic data")
	}

	if snapshot.ROE == 0 {
		if body, _, err := c.get(ctx, c.cfg.MobileURL+"/"+code+"/finance/annual"); err == nil {
			if err := parseFinanceAnnual(body, &snapshot); err != nil {
				c.log.Debug().Err(err).Str("code", code).Msg("No annual finance data")
			}
		}
	}

	if snapshot.Name == "" || snapshot.CurrentPrice == 0 || snapshot.PER == 0 || snapshot.PBR == 0 {
		if body, contentType, err := c.get(ctx, c.cfg.BaseURL+"/item/main.naver?code="+url.QueryEscape(code)); err != nil {
			errs = append(errs, err)
		} else if err := parseMainPage(decodeBody(body, contentType), &snapshot); err != nil {
			c.log.Warn().Err(err).Str("code", code).Msg("Failed to parse item page")
		}
	}

	if snapshot.Name == "" && snapshot.CurrentPrice == 0 {
		if err := errors.Join(errs...); err != nil && !allNotFound(errs) {
			return market.FundamentalSnapshot{}, market.WithCode(code, err)
		}
		return market.FundamentalSnapshot{}, market.NewStockError(code, market.ErrNotFound, "no fundamentals")
	}

	if snapshot.PrevClose == 0 {
		snapshot.PrevClose = snapshot.CurrentPrice
	}

	c.log.Debug().
		Str("code", code).
		Str("name", snapshot.Name).
		Float64("per", snapshot.PER).
		Float64("pbr", snapshot.PBR).
		Float64("roe", snapshot.ROE).
		Msg("Fetched fundamentals")

	return snapshot, nil
}

// Search returns stocks whose name matches query
func (c *Client) Search(ctx context.Context, query string) ([]market.StockMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if codePattern.MatchString(query) {
		return []market.StockMatch{{Code: query}}, nil
	}

	body, contentType, err := c.get(ctx, c.cfg.BaseURL+"/search/searchList.naver?query="+url.QueryEscape(query))
	if err != nil {
		return nil, err
	}

	matches, err := parseSearchResults(decodeBody(body, contentType))
	if err != nil {
		return nil, market.NewStockError("", market.ErrSourceUnavailable, "malformed search page: %v", err)
	}
	return matches, nil
}

// ResolveCode passes six-digit codes through and looks names up by search
func (c *Client) ResolveCode(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if codePattern.MatchString(query) {
		return query, nil
	}

	matches, err := c.Search(ctx, query)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", market.NewStockError(query, market.ErrNotFound, "no stock matches %q", query)
	}

	c.log.Debug().Str("query", query).Str("code", matches[0].Code).Msg("Resolved stock name")
	return matches[0].Code, nil
}

// get performs a rate-limited GET and maps failures onto the error taxonomy
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.log.Debug().Str("url", reqURL).Msg("Naver request")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", fmt.Errorf("%w: %v", market.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", fmt.Errorf("%w: %s returned 404", market.ErrNotFound, req.URL.Path)
	case resp.StatusCode != http.StatusOK:
		return nil, "", fmt.Errorf("%w: %s returned status %d", market.ErrSourceUnavailable, req.URL.Path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read response: %v", market.ErrSourceUnavailable, err)
	}

	return body, resp.Header.Get("Content-Type"), nil
}

func allNotFound(errs []error) bool {
	for _, err := range errs {
		if !errors.Is(err, market.ErrNotFound) {
			return false
		}
	}
	return true
}
