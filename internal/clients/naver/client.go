// Package naver provides clients for the Naver finance endpoints: daily
// candles, money-flow and theme page scraping, mobile JSON fundamentals and
// news headlines. All calls are single-attempt with a short timeout; callers
// are expected to fall back to cached or mock data on failure.
package naver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/domain"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Client for Naver finance pages and APIs
type Client struct {
	pageBaseURL   string
	mobileBaseURL string
	chartBaseURL  string
	client        *http.Client
	log           zerolog.Logger
}

// NewClient creates a new Naver finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		pageBaseURL:   "https://finance.naver.com",
		mobileBaseURL: "https://m.stock.naver.com",
		chartBaseURL:  "https://fchart.stock.naver.com",
		client:        &http.Client{Timeout: 5 * time.Second},
		log:           log.With().Str("client", "naver").Logger(),
	}
}

// get issues a GET with the browser User-Agent the endpoints expect.
func (c *Client) get(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// GetDailyCandles fetches daily bars for a ticker from the chart endpoint.
// The endpoint returns a JSON-ish matrix with single-quoted strings:
// [["date","open","high","low","close","volume","ratio"], ["20260828", ...], ...]
func (c *Client) GetDailyCandles(ticker string, from, to time.Time) ([]domain.Candle, error) {
	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		days = 1
	}

	url := fmt.Sprintf("%s/siseJson.naver?symbol=%s&requestType=1&timeframe=day&count=%d",
		c.chartBaseURL, ticker, days)

	body, err := c.get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candles for %s: %w", ticker, err)
	}

	// The payload uses single quotes; normalize before decoding.
	normalized := strings.ReplaceAll(string(body), "'", `"`)

	var rows [][]interface{}
	if err := json.Unmarshal([]byte(normalized), &rows); err != nil {
		return nil, fmt.Errorf("failed to parse candle payload for %s: %w", ticker, err)
	}

	candles := make([]domain.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		dateStr, ok := row[0].(string)
		if !ok {
			continue // header row
		}
		date, err := time.Parse("20060102", strings.TrimSpace(dateStr))
		if err != nil {
			continue
		}
		if date.Before(from) || date.After(to) {
			continue
		}

		candles = append(candles, domain.Candle{
			Date:   date,
			Open:   asFloat(row[1]),
			High:   asFloat(row[2]),
			Low:    asFloat(row[3]),
			Close:  asFloat(row[4]),
			Volume: asFloat(row[5]),
		})
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("no candles returned for %s", ticker)
	}
	return candles, nil
}

// GetQuote returns the most recent daily close for a ticker.
// Implements domain.PriceSource.
func (c *Client) GetQuote(ticker string) (*domain.Quote, error) {
	to := time.Now()
	candles, err := c.GetDailyCandles(ticker, to.AddDate(0, 0, -10), to)
	if err != nil {
		return nil, err
	}

	last := candles[len(candles)-1]
	return &domain.Quote{
		Ticker: ticker,
		Price:  last.Close,
		Time:   last.Date,
		Source: c.Name(),
	}, nil
}

// Name identifies this price source in logs and quote records.
func (c *Client) Name() string {
	return "naver"
}

func asFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		var f float64
		fmt.Sscanf(strings.ReplaceAll(x, ",", ""), "%f", &f)
		return f
	default:
		return 0
	}
}
