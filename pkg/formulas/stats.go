package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// RollingStd computes the trailing sample standard deviation over the given
// window. The first window-1 entries are NaN.
func RollingStd(closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	if window <= 1 || len(closes) < window {
		return out
	}

	for i := window - 1; i < len(closes); i++ {
		out[i] = stat.StdDev(closes[i-window+1:i+1], nil)
	}
	return out
}
