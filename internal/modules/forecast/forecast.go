// Package forecast projects a 30-day price band from a linear trend fitted
// over the recent close series.
package forecast

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/trendlotto/invest/internal/domain"
)

const (
	// MinObservations is the shortest close series worth fitting.
	MinObservations = 60
	// HorizonDays is how far ahead the band extends.
	HorizonDays = 30
)

// Point is one projected day.
type Point struct {
	Date  time.Time `json:"date"`
	Mid   float64   `json:"mid"`
	Upper float64   `json:"upper"`
	Lower float64   `json:"lower"`
}

// Forecast is a fitted trend band for one ticker.
type Forecast struct {
	Ticker      string    `json:"ticker"`
	Slope       float64   `json:"slope"`
	Intercept   float64   `json:"intercept"`
	ResidualStd float64   `json:"residual_std"`
	Points      []Point   `json:"points"`
	FittedAt    time.Time `json:"fitted_at"`
}

// Compute fits a least-squares line through the close series and extends it
// HorizonDays forward. The band half-width is twice the residual standard
// deviation. Returns nil when the series is too short.
func Compute(ticker string, candles []domain.Candle) *Forecast {
	if len(candles) < MinObservations {
		return nil
	}

	xs := make([]float64, len(candles))
	ys := make([]float64, len(candles))
	for i, c := range candles {
		xs[i] = float64(i)
		ys[i] = c.Close
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	var ssr float64
	for i := range xs {
		resid := ys[i] - (intercept + slope*xs[i])
		ssr += resid * resid
	}
	residStd := math.Sqrt(ssr / float64(len(xs)-2))

	last := candles[len(candles)-1]
	points := make([]Point, 0, HorizonDays)
	for day := 1; day <= HorizonDays; day++ {
		x := float64(len(candles) - 1 + day)
		mid := intercept + slope*x
		points = append(points, Point{
			Date:  last.Date.AddDate(0, 0, day),
			Mid:   mid,
			Upper: mid + 2*residStd,
			Lower: mid - 2*residStd,
		})
	}

	return &Forecast{
		Ticker:      ticker,
		Slope:       slope,
		Intercept:   intercept,
		ResidualStd: residStd,
		Points:      points,
		FittedAt:    time.Now(),
	}
}

// Store persists fitted forecasts in cache.db so page loads never refit.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a forecast store over cache.db.
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "forecast_store").Logger(),
	}
}

// Save stores a fitted forecast.
func (s *Store) Save(f *Forecast) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO forecasts (ticker, data, updated_at) VALUES (?, ?, ?)",
		f.Ticker, string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store forecast for %s: %w", f.Ticker, err)
	}
	return nil
}

// Get loads the stored forecast for a ticker. Returns nil, nil on a miss.
func (s *Store) Get(ticker string) (*Forecast, error) {
	var data string
	err := s.db.QueryRow("SELECT data FROM forecasts WHERE ticker = ?", ticker).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read forecast for %s: %w", ticker, err)
	}

	var f Forecast
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal forecast for %s: %w", ticker, err)
	}
	return &f, nil
}
