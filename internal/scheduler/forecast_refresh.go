package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/domain"
	"github.com/trendlotto/invest/internal/modules/forecast"
)

// TickerSource lists the tickers worth forecasting.
type TickerSource interface {
	DistinctTickers() ([]string, error)
}

// ForecastSaver persists computed forecast bands.
type ForecastSaver interface {
	Save(f *forecast.Forecast) error
}

// ForecastRefreshJob refits the price trend bands nightly for every ticker
// anyone currently holds. Tickers with too little history are skipped.
type ForecastRefreshJob struct {
	log     zerolog.Logger
	tickers TickerSource
	history domain.HistorySource
	store   ForecastSaver
}

// NewForecastRefreshJob creates a new forecast refresh job
func NewForecastRefreshJob(tickers TickerSource, history domain.HistorySource, store ForecastSaver, log zerolog.Logger) *ForecastRefreshJob {
	return &ForecastRefreshJob{
		log:     log.With().Str("job", "forecast_refresh").Logger(),
		tickers: tickers,
		history: history,
		store:   store,
	}
}

// Name returns the job name
func (j *ForecastRefreshJob) Name() string {
	return "forecast_refresh"
}

// Run recomputes and stores forecasts for all held tickers. Per-ticker
// failures are logged and the pass continues.
func (j *ForecastRefreshJob) Run() error {
	tickers, err := j.tickers.DistinctTickers()
	if err != nil {
		return err
	}

	now := time.Now()
	from := now.AddDate(-1, 0, 0)
	updated := 0

	for _, ticker := range tickers {
		candles, err := j.history.GetDailyCandles(ticker, from, now)
		if err != nil {
			j.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to load candles")
			continue
		}

		f := forecast.Compute(ticker, candles)
		if f == nil {
			j.log.Debug().Str("ticker", ticker).Int("candles", len(candles)).Msg("Not enough history to forecast")
			continue
		}

		if err := j.store.Save(f); err != nil {
			j.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to store forecast")
			continue
		}
		updated++
	}

	j.log.Info().Int("tickers", len(tickers)).Int("updated", updated).Msg("Forecast refresh complete")
	return nil
}
