package formulas

import (
	"fmt"
	"time"

	"github.com/trendlotto/invest/internal/domain"
)

// Indicator windows used throughout the application.
const (
	WindowMAShort = 5
	WindowMAMid   = 20
	WindowMALong  = 60
	WindowMATrend = 120
	WindowRSI     = 14
	WindowBB      = 20
	BBMultDisplay = 2.0
	BBMultExtreme = 3.0
)

// Frame is a daily price series augmented with derived indicator columns.
// All columns are aligned index-for-index with Candles; warm-up rows are NaN.
type Frame struct {
	Candles []domain.Candle

	MA5   []float64
	MA20  []float64
	MA60  []float64
	MA120 []float64

	RSI []float64

	// Bollinger: 20-period mean ± k·std, k=2 for display, k=3 for extremes
	BBUpper    []float64
	BBLower    []float64
	BBUpperExt []float64
	BBLowerExt []float64
}

// Row is one fully materialized indicator row.
type Row struct {
	Date       time.Time
	Close      float64
	MA5        float64
	MA20       float64
	MA60       float64
	MA120      float64
	RSI        float64
	BBUpper    float64
	BBLower    float64
	BBUpperExt float64
	BBLowerExt float64
}

// NewFrame computes all indicator columns for an ascending daily candle
// series. The series may be shorter than some windows; those columns are
// simply all-NaN and LastComplete will fail.
func NewFrame(candles []domain.Candle) *Frame {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	display := Bollinger(closes, WindowBB, BBMultDisplay)
	extreme := Bollinger(closes, WindowBB, BBMultExtreme)

	return &Frame{
		Candles:    candles,
		MA5:        Sma(closes, WindowMAShort),
		MA20:       Sma(closes, WindowMAMid),
		MA60:       Sma(closes, WindowMALong),
		MA120:      Sma(closes, WindowMATrend),
		RSI:        Rsi(closes, WindowRSI),
		BBUpper:    display.Upper,
		BBLower:    display.Lower,
		BBUpperExt: extreme.Upper,
		BBLowerExt: extreme.Lower,
	}
}

// Len returns the number of rows in the frame.
func (f *Frame) Len() int {
	return len(f.Candles)
}

// Row materializes the indicator row at index i.
func (f *Frame) Row(i int) Row {
	return Row{
		Date:       f.Candles[i].Date,
		Close:      f.Candles[i].Close,
		MA5:        f.MA5[i],
		MA20:       f.MA20[i],
		MA60:       f.MA60[i],
		MA120:      f.MA120[i],
		RSI:        f.RSI[i],
		BBUpper:    f.BBUpper[i],
		BBLower:    f.BBLower[i],
		BBUpperExt: f.BBUpperExt[i],
		BBLowerExt: f.BBLowerExt[i],
	}
}

// complete reports whether every column the score depends on is defined at i.
// RSI is deliberately excluded: an undefined RSI contributes nothing to the
// score but does not invalidate the row.
func (f *Frame) complete(i int) bool {
	return IsDefined(f.MA5[i]) &&
		IsDefined(f.MA20[i]) &&
		IsDefined(f.MA60[i]) &&
		IsDefined(f.BBUpper[i]) &&
		IsDefined(f.BBLower[i]) &&
		IsDefined(f.BBUpperExt[i]) &&
		IsDefined(f.BBLowerExt[i])
}

// LastComplete returns the most recent row where all score inputs are
// defined. It fails when the series is shorter than the largest warm-up
// window.
func (f *Frame) LastComplete() (Row, error) {
	for i := f.Len() - 1; i >= 0; i-- {
		if f.complete(i) {
			return f.Row(i), nil
		}
	}
	return Row{}, fmt.Errorf("series too short for indicators: %d rows", f.Len())
}

// CompleteRows returns all rows where the score inputs are defined,
// for chart rendering (warm-up rows are excluded, never rendered as zero).
func (f *Frame) CompleteRows() []Row {
	rows := make([]Row, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		if f.complete(i) {
			rows = append(rows, f.Row(i))
		}
	}
	return rows
}
