package formulas

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlotto/invest/internal/domain"
)

func TestSmaWarmupIsUndefined(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6}
	out := Sma(closes, 5)

	require.Len(t, out, 6)
	for i := 0; i < 4; i++ {
		assert.False(t, IsDefined(out[i]), "row %d should be warm-up", i)
	}
	assert.InDelta(t, 3.0, out[4], 1e-9) // (1+2+3+4+5)/5
	assert.InDelta(t, 4.0, out[5], 1e-9) // (2+3+4+5+6)/5
}

func TestSmaShorterThanWindow(t *testing.T) {
	out := Sma([]float64{1, 2, 3}, 5)
	for i, v := range out {
		assert.False(t, IsDefined(v), "row %d", i)
	}
}

func TestRollingStdMatchesSampleStd(t *testing.T) {
	closes := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	out := RollingStd(closes, 8)

	require.True(t, IsDefined(out[7]))
	// Sample std dev (ddof=1) of the full series
	assert.InDelta(t, 2.13809, out[7], 1e-4)
	for i := 0; i < 7; i++ {
		assert.False(t, IsDefined(out[i]))
	}
}

func TestRsiRollingMeanSemantics(t *testing.T) {
	// Alternating gains and losses: avg gain 1.0, avg loss 0.5 over any
	// 4-period window -> RS = 2 -> RSI = 100 - 100/3
	closes := []float64{10, 11, 10.5, 11.5, 11, 12, 11.5, 12.5}
	out := Rsi(closes, 4)

	for i := 0; i < 4; i++ {
		assert.False(t, IsDefined(out[i]), "row %d should be warm-up", i)
	}
	for i := 4; i < len(out); i++ {
		require.True(t, IsDefined(out[i]), "row %d", i)
		assert.InDelta(t, 100-100.0/3, out[i], 1e-9)
	}
}

func TestRsiUndefinedOnStrictlyIncreasingSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	out := Rsi(closes, 14)

	// No losses anywhere: the zero denominator leaves every row undefined.
	// In particular it must not silently report 100.
	for i, v := range out {
		assert.False(t, IsDefined(v), "row %d should be undefined", i)
	}
}

func TestRsiShortSeries(t *testing.T) {
	out := Rsi([]float64{1, 2, 3}, 14)
	for _, v := range out {
		assert.False(t, IsDefined(v))
	}
}

func TestBollingerBandsAroundSma(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 50 + float64(i%5)
	}
	bands := Bollinger(closes, 20, 2)

	for i := 0; i < 19; i++ {
		assert.False(t, IsDefined(bands.Upper[i]))
		assert.False(t, IsDefined(bands.Lower[i]))
	}
	for i := 19; i < 25; i++ {
		require.True(t, IsDefined(bands.Upper[i]))
		assert.Greater(t, bands.Upper[i], bands.Middle[i])
		assert.Less(t, bands.Lower[i], bands.Middle[i])
		// Symmetric around the middle band
		assert.InDelta(t, bands.Middle[i]-bands.Lower[i], bands.Upper[i]-bands.Middle[i], 1e-9)
	}
}

func TestBollingerConstantSeriesHasZeroWidth(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	bands := Bollinger(closes, 20, 3)

	require.True(t, IsDefined(bands.Upper[19]))
	assert.InDelta(t, 100, bands.Upper[19], 1e-9)
	assert.InDelta(t, 100, bands.Lower[19], 1e-9)
}

func makeCandles(closes []float64) []domain.Candle {
	start := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]domain.Candle, len(closes))
	for i, c := range closes {
		candles[i] = domain.Candle{
			Date:  start.AddDate(0, 0, i),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return candles
}

func TestFrameLastCompleteRequiresLongestWindow(t *testing.T) {
	closes := make([]float64, 59)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i))
	}
	frame := NewFrame(makeCandles(closes))

	_, err := frame.LastComplete()
	assert.Error(t, err, "59 rows cannot satisfy the 60-period MA")

	closes = append(closes, 101)
	frame = NewFrame(makeCandles(closes))
	row, err := frame.LastComplete()
	require.NoError(t, err)
	assert.True(t, IsDefined(row.MA60))
	assert.True(t, IsDefined(row.BBUpperExt))
}

func TestFrameCompleteRowsExcludesWarmup(t *testing.T) {
	closes := make([]float64, 70)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	frame := NewFrame(makeCandles(closes))

	rows := frame.CompleteRows()
	// Rows 0..58 are warm-up for MA60; 11 rows remain
	assert.Len(t, rows, 11)
	for _, r := range rows {
		assert.True(t, IsDefined(r.MA60))
	}
}

func TestFrameRowUndefinedRSIIsNotComplete(t *testing.T) {
	// Strictly increasing series: MA/BB defined after 60 rows, RSI never.
	// The row must still be considered complete (RSI contributes neutrally).
	closes := make([]float64, 65)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	frame := NewFrame(makeCandles(closes))

	row, err := frame.LastComplete()
	require.NoError(t, err)
	assert.False(t, IsDefined(row.RSI))
}
