package formulas

import "math"

// Rsi computes the Relative Strength Index over the given window using
// simple rolling means of gains and losses (not Wilder smoothing):
//
//	RSI = 100 - 100/(1+RS), RS = avg(gains) / avg(losses)
//
// The first `window` entries are NaN (the first delta needs two closes).
// When the rolling loss average is zero the RSI is undefined for that row
// and stays NaN; callers must treat it as neutral, never as 100.
func Rsi(closes []float64, window int) []float64 {
	out := nanSlice(len(closes))
	if window <= 0 || len(closes) < window+1 {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 1; i < len(closes); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > window {
			gainSum -= gains[i-window]
			lossSum -= losses[i-window]
		}
		if i < window {
			continue
		}

		avgLoss := lossSum / float64(window)
		if avgLoss == 0 {
			// Zero denominator: RSI undefined for this row
			out[i] = math.NaN()
			continue
		}
		avgGain := gainSum / float64(window)
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}

	return out
}
