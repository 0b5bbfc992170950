package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trendlotto/invest/pkg/formulas"
)

func row() formulas.Row {
	// Neutral baseline: no MA alignment, RSI outside every bucket band,
	// price between the bands and below MA5.
	return formulas.Row{
		Close:      100,
		MA5:        101,
		MA20:       99,
		MA60:       100,
		RSI:        65,
		BBUpper:    110,
		BBLower:    90,
		BBUpperExt: 115,
		BBLowerExt: 85,
	}
}

func TestScoreNeutralBaseline(t *testing.T) {
	assert.Equal(t, 50, Score(row()))
}

func TestScoreBullishAlignment(t *testing.T) {
	r := row()
	r.MA5, r.MA20, r.MA60 = 110, 105, 100
	r.Close = 100 // below MA5, between bands
	assert.Equal(t, 70, Score(r))
}

func TestScoreBearishAlignment(t *testing.T) {
	r := row()
	r.MA5, r.MA20, r.MA60 = 100, 105, 110
	assert.Equal(t, 30, Score(r))
}

func TestScoreRSIBuckets(t *testing.T) {
	cases := []struct {
		rsi  float64
		want int
	}{
		{25, 65}, // oversold +15
		{75, 35}, // overbought -15
		{40, 55}, // stable band +5 (inclusive lower bound)
		{60, 55}, // stable band +5 (inclusive upper bound)
		{50, 55}, // stable band +5
		{35, 50}, // no bucket
		{65, 50}, // no bucket
	}
	for _, tc := range cases {
		r := row()
		r.RSI = tc.rsi
		assert.Equal(t, tc.want, Score(r), "rsi=%v", tc.rsi)
	}
}

func TestScoreUndefinedRSIContributesNothing(t *testing.T) {
	r := row()
	r.RSI = math.NaN()
	assert.Equal(t, 50, Score(r))
}

func TestScoreBollingerCascadeFirstMatchWins(t *testing.T) {
	cases := []struct {
		name  string
		close float64
		want  int
	}{
		{"below 3-sigma lower", 80, 75},  // +25, not +25+10
		{"below 2-sigma lower", 88, 60},  // +10
		{"above 3-sigma upper", 120, 25}, // -25
		{"above 2-sigma upper", 112, 40}, // -10
		{"above MA5 only", 102, 55},      // +5
		{"between bands below MA5", 100, 50},
	}
	for _, tc := range cases {
		r := row()
		r.Close = tc.close
		assert.Equal(t, tc.want, Score(r), tc.name)
	}
}

func TestScoreClampedToRange(t *testing.T) {
	// Everything bullish at once: 50+20+15+25 = 110 -> clamp 100
	r := row()
	r.MA5, r.MA20, r.MA60 = 110, 105, 100
	r.RSI = 20
	r.Close = 80
	assert.Equal(t, 100, Score(r))

	// Everything bearish at once: 50-20-15-25 = -10 -> clamp 0
	r = row()
	r.MA5, r.MA20, r.MA60 = 100, 105, 110
	r.RSI = 80
	r.Close = 120
	assert.Equal(t, 0, Score(r))
}

func TestScoreWorkedExample(t *testing.T) {
	// MA5=110 > MA20=105 > MA60=100, RSI=45, price between the bands and
	// above MA5: 50+20+5+5 = 80
	r := formulas.Row{
		Close:      112,
		MA5:        110,
		MA20:       105,
		MA60:       100,
		RSI:        45,
		BBUpper:    120,
		BBLower:    95,
		BBUpperExt: 125,
		BBLowerExt: 90,
	}
	score := Score(r)
	assert.Equal(t, 80, score)
	assert.Equal(t, PhaseExtremeOversold, Phase(score))
}

func TestPhaseMappingIsTotal(t *testing.T) {
	for s := 0; s <= 100; s++ {
		phase := Phase(s)
		assert.NotEmpty(t, phase, "score %d", s)
		switch {
		case s >= 80:
			assert.Equal(t, PhaseExtremeOversold, phase)
		case s >= 60:
			assert.Equal(t, PhaseUptrend, phase)
		case s >= 40:
			assert.Equal(t, PhaseNeutral, phase)
		case s >= 20:
			assert.Equal(t, PhaseDowntrend, phase)
		default:
			assert.Equal(t, PhaseExtremeOverbought, phase)
		}
	}
}
