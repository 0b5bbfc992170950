package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlotto/invest/internal/domain"
	"github.com/trendlotto/invest/internal/modules/forecast"
)

type fakeTickers struct {
	tickers []string
	err     error
}

func (f *fakeTickers) DistinctTickers() ([]string, error) {
	return f.tickers, f.err
}

type fakeHistory struct {
	candles map[string][]domain.Candle
}

func (f *fakeHistory) GetDailyCandles(ticker string, from, to time.Time) ([]domain.Candle, error) {
	candles, ok := f.candles[ticker]
	if !ok {
		return nil, errors.New("no data")
	}
	return candles, nil
}

type fakeForecastStore struct {
	saved []string
	err   error
}

func (f *fakeForecastStore) Save(fc *forecast.Forecast) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, fc.Ticker)
	return nil
}

func trendCandles(n int) []domain.Candle {
	candles := make([]domain.Candle, n)
	day := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i := range candles {
		candles[i] = domain.Candle{
			Date:  day.AddDate(0, 0, i),
			Close: 10000 + float64(i)*50,
		}
	}
	return candles
}

func TestForecastRefreshSkipsThinAndFailedTickers(t *testing.T) {
	history := &fakeHistory{candles: map[string][]domain.Candle{
		"005930": trendCandles(forecast.MinObservations + 10),
		"000660": trendCandles(5),
	}}
	store := &fakeForecastStore{}
	job := NewForecastRefreshJob(
		&fakeTickers{tickers: []string{"005930", "000660", "035720"}},
		history, store, zerolog.Nop(),
	)

	require.NoError(t, job.Run())
	assert.Equal(t, []string{"005930"}, store.saved)
}

func TestForecastRefreshFailsWhenTickersUnavailable(t *testing.T) {
	job := NewForecastRefreshJob(
		&fakeTickers{err: errors.New("db closed")},
		&fakeHistory{}, &fakeForecastStore{}, zerolog.Nop(),
	)
	assert.Error(t, job.Run())
}

type fakeBackups struct {
	createErr   error
	rotatedKeys []string
}

func (f *fakeBackups) CreateAndUpload(ctx context.Context) error {
	return f.createErr
}

func (f *fakeBackups) Rotate(ctx context.Context, keys []string, retentionDays int) error {
	f.rotatedKeys = keys
	return nil
}

type fakeLister struct {
	keys []string
	err  error
}

func (f *fakeLister) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	return f.keys, f.err
}

func TestBackupJobUploadsThenRotates(t *testing.T) {
	backups := &fakeBackups{}
	lister := &fakeLister{keys: []string{"trendlotto-backup-2026-08-01-010000.tar.gz"}}
	job := NewBackupJob(backups, lister, 30, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Equal(t, lister.keys, backups.rotatedKeys)
}

func TestBackupJobFailsWhenUploadFails(t *testing.T) {
	job := NewBackupJob(&fakeBackups{createErr: errors.New("bucket gone")}, &fakeLister{}, 30, zerolog.Nop())
	assert.Error(t, job.Run())
}

func TestBackupJobToleratesListFailure(t *testing.T) {
	backups := &fakeBackups{}
	job := NewBackupJob(backups, &fakeLister{err: errors.New("timeout")}, 30, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Nil(t, backups.rotatedKeys)
}

type countingChecker struct {
	fired int
	err   error
}

func (c *countingChecker) CheckAll() (int, error) {
	return c.fired, c.err
}

func TestAlertCheckJobPropagatesErrors(t *testing.T) {
	assert.NoError(t, NewAlertCheckJob(&countingChecker{fired: 2}, zerolog.Nop()).Run())
	assert.Error(t, NewAlertCheckJob(&countingChecker{err: errors.New("quote source down")}, zerolog.Nop()).Run())
}
