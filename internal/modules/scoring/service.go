package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/domain"
	"github.com/trendlotto/invest/pkg/formulas"
)

// Result is the signal evaluation for one ticker at one point in time.
// It is recomputed per request, never persisted.
type Result struct {
	Ticker string   `json:"ticker"`
	Score  int      `json:"score"`
	Phase  string   `json:"phase"`
	RSI    *float64 `json:"rsi,omitempty"`
	AsOf   string   `json:"as_of"`
}

// Service evaluates signal scores from daily price history.
type Service struct {
	history domain.HistorySource
	log     zerolog.Logger
}

// NewService creates a new scoring service
func NewService(history domain.HistorySource, log zerolog.Logger) *Service {
	return &Service{
		history: history,
		log:     log.With().Str("service", "scoring").Logger(),
	}
}

// Evaluate fetches six months of daily candles for the ticker, computes the
// indicator frame, and scores the most recent fully-defined row.
func (s *Service) Evaluate(ticker string) (*Result, error) {
	to := time.Now()
	from := to.AddDate(0, -6, 0)

	candles, err := s.history.GetDailyCandles(ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load candles for %s: %w", ticker, err)
	}

	return s.EvaluateCandles(ticker, candles)
}

// EvaluateCandles scores an already-fetched candle series.
func (s *Service) EvaluateCandles(ticker string, candles []domain.Candle) (*Result, error) {
	frame := formulas.NewFrame(candles)
	row, err := frame.LastComplete()
	if err != nil {
		return nil, fmt.Errorf("cannot score %s: %w", ticker, err)
	}

	score := Score(row)
	result := &Result{
		Ticker: ticker,
		Score:  score,
		Phase:  Phase(score),
		AsOf:   row.Date.Format("2006-01-02"),
	}
	if formulas.IsDefined(row.RSI) {
		rsi := math.Round(row.RSI*100) / 100
		result.RSI = &rsi
	}

	s.log.Debug().
		Str("ticker", ticker).
		Int("score", score).
		Str("phase", result.Phase).
		Msg("Evaluated signal score")

	return result, nil
}

// Frame exposes the computed indicator frame for chart rendering.
func (s *Service) Frame(ticker string) (*formulas.Frame, error) {
	to := time.Now()
	from := to.AddDate(0, -6, 0)

	candles, err := s.history.GetDailyCandles(ticker, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load candles for %s: %w", ticker, err)
	}
	return formulas.NewFrame(candles), nil
}
