// Package review assembles the per-ticker stock review page: signal score,
// fundamentals, news sentiment and the forecast band.
package review

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/clients/naver"
	"github.com/trendlotto/invest/internal/modules/forecast"
	"github.com/trendlotto/invest/internal/modules/scoring"
	"github.com/trendlotto/invest/internal/modules/sentiment"
)

// knownTickers resolves common company names to KRX codes. Lookups that miss
// fall through to treating the query as a code.
var knownTickers = map[string]string{
	"삼성전자":     "005930",
	"SK하이닉스":   "000660",
	"LG에너지솔루션": "373220",
	"현대차":      "005380",
	"NAVER":    "035420",
	"카카오":      "035720",
	"에코프로비엠":   "247540",
	"셀트리온":     "068270",
	"POSCO홀딩스": "005490",
	"기아":       "000270",
}

// FundamentalsGetter loads the annual finance table.
type FundamentalsGetter interface {
	GetFundamentals(ticker string) (*naver.Fundamentals, error)
	GetNewsHeadlines(ticker string) ([]string, error)
}

// Scorer evaluates the signal score for a ticker.
type Scorer interface {
	Evaluate(ticker string) (*scoring.Result, error)
}

// ForecastGetter loads stored forecast bands.
type ForecastGetter interface {
	Get(ticker string) (*forecast.Forecast, error)
}

// Report is everything the review page shows for one ticker.
type Report struct {
	Ticker       string              `json:"ticker"`
	Query        string              `json:"query"`
	Score        *scoring.Result     `json:"score,omitempty"`
	ScoreError   string              `json:"score_error,omitempty"`
	Fundamentals *naver.Fundamentals `json:"fundamentals,omitempty"`
	Sentiment    *sentiment.Summary  `json:"sentiment,omitempty"`
	Forecast     *forecast.Forecast  `json:"forecast,omitempty"`
}

// Service builds review reports.
type Service struct {
	scorer    Scorer
	naver     FundamentalsGetter
	forecasts ForecastGetter
	log       zerolog.Logger
}

// NewService creates a new review service
func NewService(scorer Scorer, naverClient FundamentalsGetter, forecasts ForecastGetter, log zerolog.Logger) *Service {
	return &Service{
		scorer:    scorer,
		naver:     naverClient,
		forecasts: forecasts,
		log:       log.With().Str("service", "review").Logger(),
	}
}

// ResolveTicker maps a company name to its KRX code. Six-digit queries pass
// through unchanged, and unknown names are returned as-is.
func ResolveTicker(query string) string {
	query = strings.TrimSpace(query)
	if isSixDigits(query) {
		return query
	}
	if code, ok := knownTickers[query]; ok {
		return code
	}
	return query
}

// Build assembles the review report. The score is the core block; the
// fundamentals, sentiment and forecast enrichments are best-effort and their
// failures leave the corresponding section empty.
func (s *Service) Build(query string) *Report {
	ticker := ResolveTicker(query)
	report := &Report{Ticker: ticker, Query: query}

	result, err := s.scorer.Evaluate(ticker)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Score evaluation failed")
		report.ScoreError = "종목 데이터를 불러오지 못했습니다."
	} else {
		report.Score = result
	}

	if fundamentals, err := s.naver.GetFundamentals(ticker); err != nil {
		s.log.Debug().Err(err).Str("ticker", ticker).Msg("Fundamentals unavailable")
	} else {
		report.Fundamentals = fundamentals
	}

	if headlines, err := s.naver.GetNewsHeadlines(ticker); err != nil {
		s.log.Debug().Err(err).Str("ticker", ticker).Msg("Headlines unavailable")
	} else {
		report.Sentiment = sentiment.Analyze(headlines)
	}

	if s.forecasts != nil {
		if f, err := s.forecasts.Get(ticker); err != nil {
			s.log.Debug().Err(err).Str("ticker", ticker).Msg("Forecast unavailable")
		} else {
			report.Forecast = f
		}
	}

	return report
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
