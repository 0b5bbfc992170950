package services

import (
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/cache"
	"github.com/trendlotto/invest/internal/domain"
)

// QuoteService provides current prices with a 5-tier fallback:
// 1. Fresh cached quote (under the TTL)
// 2. KIS OpenAPI (primary realtime source)
// 3. Naver chart endpoint (last daily close)
// 4. Yahoo Finance (delayed)
// 5. Stale cached quote, then a deterministic mock price
type QuoteService struct {
	sources []domain.PriceSource
	cache   *cache.QuoteCache
	log     zerolog.Logger
}

// NewQuoteService creates a quote service. Sources are tried in order.
func NewQuoteService(quoteCache *cache.QuoteCache, log zerolog.Logger, sources ...domain.PriceSource) *QuoteService {
	return &QuoteService{
		sources: sources,
		cache:   quoteCache,
		log:     log.With().Str("service", "quotes").Logger(),
	}
}

// GetQuote resolves the current price for a ticker. It never returns an
// error: when every live source and the cache fail it falls back to a
// deterministic mock price so downstream pages stay rendered.
func (s *QuoteService) GetQuote(ticker string) *domain.Quote {
	if s.cache != nil {
		if q, err := s.cache.GetIfFresh(ticker); err == nil && q != nil {
			return q
		}
	}

	for _, source := range s.sources {
		q, err := source.GetQuote(ticker)
		if err == nil && q.Price > 0 {
			s.log.Debug().
				Str("ticker", ticker).
				Float64("price", q.Price).
				Str("source", source.Name()).
				Msg("Got live quote")
			if s.cache != nil {
				if err := s.cache.Store(q); err != nil {
					s.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache quote")
				}
			}
			return q
		}
		s.log.Warn().Err(err).
			Str("ticker", ticker).
			Str("source", source.Name()).
			Msg("Quote source failed, trying next")
	}

	if s.cache != nil {
		if q, err := s.cache.Get(ticker); err == nil && q != nil {
			s.log.Warn().Str("ticker", ticker).Msg("Serving stale cached quote (all sources failed)")
			q.Source = "cache"
			return q
		}
	}

	s.log.Warn().Str("ticker", ticker).Msg("No quote available, using mock price")
	return &domain.Quote{
		Ticker: ticker,
		Price:  mockPrice(ticker),
		Time:   time.Now(),
		Source: "mock",
	}
}

// mockPrice derives a stable placeholder price from the ticker so repeated
// renders of the same page agree with each other.
func mockPrice(ticker string) float64 {
	h := fnv.New32a()
	h.Write([]byte(ticker))
	// Range 10,000 .. 109,900 KRW in 100 KRW steps.
	return float64(10000 + (h.Sum32()%1000)*100)
}
