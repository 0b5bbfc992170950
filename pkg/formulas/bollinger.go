package formulas

// BollingerBands holds the per-row upper and lower band series for one
// standard-deviation multiple. The middle band is the window SMA.
type BollingerBands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger computes Bollinger Bands as SMA(window) ± k·RollingStd(window).
// Warm-up rows are NaN in all three series.
func Bollinger(closes []float64, window int, k float64) BollingerBands {
	middle := Sma(closes, window)
	std := RollingStd(closes, window)

	upper := nanSlice(len(closes))
	lower := nanSlice(len(closes))
	for i := range closes {
		if IsDefined(middle[i]) && IsDefined(std[i]) {
			upper[i] = middle[i] + k*std[i]
			lower[i] = middle[i] - k*std[i]
		}
	}

	return BollingerBands{Upper: upper, Middle: middle, Lower: lower}
}
