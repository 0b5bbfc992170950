package forecast

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlotto/invest/internal/database"
	"github.com/trendlotto/invest/internal/domain"
)

func linearCandles(n int, start, step float64) []domain.Candle {
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]domain.Candle, n)
	for i := range candles {
		candles[i] = domain.Candle{
			Date:  base.AddDate(0, 0, i),
			Close: start + step*float64(i),
		}
	}
	return candles
}

func TestComputeNilBelowMinimum(t *testing.T) {
	assert.Nil(t, Compute("005930", linearCandles(MinObservations-1, 100, 1)))
	assert.NotNil(t, Compute("005930", linearCandles(MinObservations, 100, 1)))
}

func TestComputeRecoversPerfectTrend(t *testing.T) {
	f := Compute("005930", linearCandles(80, 1000, 5))
	require.NotNil(t, f)
	assert.InDelta(t, 5.0, f.Slope, 1e-6)
	assert.InDelta(t, 1000.0, f.Intercept, 1e-6)
	assert.InDelta(t, 0.0, f.ResidualStd, 1e-6)

	require.Len(t, f.Points, HorizonDays)
	// Day 1 projects index 80: 1000 + 5*80 = 1400.
	assert.InDelta(t, 1400.0, f.Points[0].Mid, 1e-6)
	assert.InDelta(t, f.Points[0].Mid, f.Points[0].Upper, 1e-6)
	// Dates continue daily from the last candle.
	lastDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 79)
	assert.Equal(t, lastDate.AddDate(0, 0, 1), f.Points[0].Date)
}

func TestComputeBandWidensWithNoise(t *testing.T) {
	candles := linearCandles(80, 1000, 5)
	for i := range candles {
		if i%2 == 0 {
			candles[i].Close += 50
		} else {
			candles[i].Close -= 50
		}
	}

	f := Compute("005930", candles)
	require.NotNil(t, f)
	assert.Greater(t, f.ResidualStd, 40.0)
	assert.Greater(t, f.Points[0].Upper, f.Points[0].Mid)
	assert.Less(t, f.Points[0].Lower, f.Points[0].Mid)
}

func TestStoreRoundTrip(t *testing.T) {
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	store := NewStore(db.Conn(), zerolog.Nop())

	miss, err := store.Get("005930")
	require.NoError(t, err)
	assert.Nil(t, miss)

	f := Compute("005930", linearCandles(80, 1000, 5))
	require.NoError(t, store.Save(f))

	loaded, err := store.Get("005930")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.InDelta(t, f.Slope, loaded.Slope, 1e-9)
	assert.Len(t, loaded.Points, HorizonDays)
}
