// Package scoring maps the latest indicator row of a ticker to a 0-100
// signal score and a qualitative phase label.
package scoring

import (
	"github.com/trendlotto/invest/pkg/formulas"
)

// Phase labels, bucketed by score threshold.
const (
	PhaseExtremeOversold   = "extreme oversold / strong rebound zone"
	PhaseUptrend           = "uptrend / hold and accumulate"
	PhaseNeutral           = "neutral / range-bound"
	PhaseDowntrend         = "downtrend / hold off new buys"
	PhaseExtremeOverbought = "extreme overbought / take-profit zone"
)

// Score computes the signal score for one fully-defined indicator row.
// The score starts at 50 and is adjusted by independent additive rules,
// then clamped to [0,100].
func Score(row formulas.Row) int {
	score := 50

	// Moving-average alignment
	if row.MA5 > row.MA20 && row.MA20 > row.MA60 {
		score += 20
	} else if row.MA5 < row.MA20 && row.MA20 < row.MA60 {
		score -= 20
	}

	// RSI level; an undefined RSI contributes nothing
	if formulas.IsDefined(row.RSI) {
		switch {
		case row.RSI < 30:
			score += 15
		case row.RSI > 70:
			score -= 15
		case row.RSI >= 40 && row.RSI <= 60:
			score += 5
		}
	}

	// Bollinger position: ordered cascade, first matching rule wins
	switch {
	case row.Close < row.BBLowerExt:
		score += 25
	case row.Close < row.BBLower:
		score += 10
	case row.Close > row.BBUpperExt:
		score -= 25
	case row.Close > row.BBUpper:
		score -= 10
	case row.Close > row.MA5:
		score += 5
	}

	return clamp(score, 0, 100)
}

// Phase maps a score to its qualitative phase label. The mapping is total:
// every integer 0-100 lands in exactly one bucket.
func Phase(score int) string {
	switch {
	case score >= 80:
		return PhaseExtremeOversold
	case score >= 60:
		return PhaseUptrend
	case score >= 40:
		return PhaseNeutral
	case score >= 20:
		return PhaseDowntrend
	default:
		return PhaseExtremeOverbought
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
