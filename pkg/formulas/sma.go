// Package formulas implements the rolling indicator math used by the
// scoring and alerting pipelines. All series functions return a slice the
// same length as the input, with NaN marking warm-up rows where the rolling
// window has fewer than the required observations. NaN is the only
// "undefined" marker; callers must never treat warm-up rows as zero.
package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// IsDefined reports whether an indicator value is defined (not a warm-up NaN).
func IsDefined(v float64) bool {
	return !math.IsNaN(v)
}

// Sma computes the trailing simple moving average over the given window.
// The first window-1 entries are NaN.
func Sma(closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	if window <= 0 || len(closes) < window {
		return out
	}

	sma := talib.Sma(closes, window)
	// talib leaves zeros in warm-up positions; keep those as NaN.
	copy(out[window-1:], sma[window-1:])
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
