// Package yahoo wraps the Yahoo Finance quote API as a secondary price
// source. KRX tickers are suffixed with the exchange code (.KS for KOSPI,
// .KQ for KOSDAQ) before lookup.
package yahoo

import (
	"fmt"
	"time"

	"github.com/piquette/finance-go/quote"
	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/domain"
)

type quoteFunc func(symbol string) (float64, error)

// Client fetches delayed quotes from Yahoo Finance.
type Client struct {
	fetch quoteFunc
	log   zerolog.Logger
}

// NewClient creates a Yahoo Finance quote client.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		fetch: fetchQuote,
		log:   log.With().Str("client", "yahoo").Logger(),
	}
}

func fetchQuote(symbol string) (float64, error) {
	q, err := quote.Get(symbol)
	if err != nil {
		return 0, err
	}
	if q == nil {
		return 0, fmt.Errorf("no quote returned for %s", symbol)
	}
	return q.RegularMarketPrice, nil
}

// GetQuote fetches the current price for a KRX ticker, trying the KOSPI
// suffix first and the KOSDAQ suffix second.
// Implements domain.PriceSource.
func (c *Client) GetQuote(ticker string) (*domain.Quote, error) {
	var lastErr error
	for _, suffix := range []string{".KS", ".KQ"} {
		symbol := ticker + suffix
		price, err := c.fetch(symbol)
		if err != nil {
			lastErr = err
			c.log.Debug().Str("symbol", symbol).Err(err).Msg("Yahoo lookup failed")
			continue
		}
		if price <= 0 {
			lastErr = fmt.Errorf("non-positive price for %s", symbol)
			continue
		}
		return &domain.Quote{
			Ticker: ticker,
			Price:  price,
			Time:   time.Now(),
			Source: c.Name(),
		}, nil
	}
	return nil, fmt.Errorf("yahoo quote failed for %s: %w", ticker, lastErr)
}

// Name identifies this price source in logs and quote records.
func (c *Client) Name() string {
	return "yahoo"
}
