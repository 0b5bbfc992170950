package scheduler

import (
	"time"

	"github.com/rs/zerolog"
)

// MarketRefresher re-scrapes the investor flow and theme snapshots.
type MarketRefresher interface {
	Refresh() error
}

// MarketRefreshJob keeps the market dashboard data fresh. It runs every
// ten minutes and once at startup so the first page load is never empty.
type MarketRefreshJob struct {
	log    zerolog.Logger
	market MarketRefresher
}

// NewMarketRefreshJob creates a new market refresh job
func NewMarketRefreshJob(market MarketRefresher, log zerolog.Logger) *MarketRefreshJob {
	return &MarketRefreshJob{
		log:    log.With().Str("job", "market_refresh").Logger(),
		market: market,
	}
}

// Name returns the job name
func (j *MarketRefreshJob) Name() string {
	return "market_refresh"
}

// Run refreshes the cached market snapshots. A scrape failure is reported
// but the previous snapshot stays in place, so readers are unaffected.
func (j *MarketRefreshJob) Run() error {
	start := time.Now()
	if err := j.market.Refresh(); err != nil {
		return err
	}
	j.log.Info().Dur("duration", time.Since(start)).Msg("Market snapshots refreshed")
	return nil
}
