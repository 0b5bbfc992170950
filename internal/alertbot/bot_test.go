package alertbot

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlotto/invest/internal/domain"
)

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Send(text string) error {
	n.messages = append(n.messages, text)
	return nil
}

type fakeHistory struct {
	candles map[string][]domain.Candle
}

func (f *fakeHistory) GetDailyCandles(ticker string, from, to time.Time) ([]domain.Candle, error) {
	candles, ok := f.candles[ticker]
	if !ok {
		return nil, errors.New("scrape failed")
	}
	return candles, nil
}

func candlesFromCloses(closes []float64) []domain.Candle {
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]domain.Candle, len(closes))
	for i, c := range closes {
		candles[i] = domain.Candle{Date: day.AddDate(0, 0, i), Close: c}
	}
	return candles
}

// fallingCloses lose ground nearly every day, driving RSI toward zero.
func fallingCloses(n int) []float64 {
	closes := make([]float64, n)
	price := 50000.0
	for i := range closes {
		closes[i] = price
		if i%5 == 4 {
			price += 20
		} else {
			price -= 300
		}
	}
	return closes
}

// spikedCloses are flat with one large final jump, breaking the upper band
// while leaving the RSI undefined (no losing days in the window).
func spikedCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 10000
	}
	closes[n-1] = 20000
	return closes
}

// calmCloses oscillate mildly and trip nothing.
func calmCloses(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 10000
		if i%2 == 1 {
			closes[i] = 10050
		}
	}
	return closes
}

func writeConfig(t *testing.T, cfg Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alert_config.json")
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func newTestBot(t *testing.T, cfg Config, history *fakeHistory) (*Bot, *recordingNotifier) {
	t.Helper()
	sent := &recordingNotifier{}
	bot := New(writeConfig(t, cfg), history, zerolog.Nop())
	bot.tickerPace = 0
	bot.newNotifier = func(token, chatID string) domain.Notifier { return sent }
	return bot, sent
}

func watchConfig(watch ...string) Config {
	return Config{
		TelegramToken:  "token",
		TelegramChatID: "42",
		WatchList:      watch,
	}
}

func TestCheckOnceFiresRSIOversold(t *testing.T) {
	history := &fakeHistory{candles: map[string][]domain.Candle{
		"005930": candlesFromCloses(fallingCloses(40)),
	}}
	bot, sent := newTestBot(t, watchConfig("삼성전자"), history)

	bot.CheckOnce()

	require.Len(t, sent.messages, 1)
	assert.Contains(t, sent.messages[0], "삼성전자 (005930)")
	assert.Contains(t, sent.messages[0], "RSI 과매도")
}

func TestCheckOnceFiresBollingerBreakout(t *testing.T) {
	history := &fakeHistory{candles: map[string][]domain.Candle{
		"000660": candlesFromCloses(spikedCloses(40)),
	}}
	bot, sent := newTestBot(t, watchConfig("000660"), history)

	bot.CheckOnce()

	require.Len(t, sent.messages, 1)
	assert.Contains(t, sent.messages[0], "상단 돌파")
	assert.NotContains(t, sent.messages[0], "RSI")
}

func TestCheckOnceStaysQuietOnCalmPrices(t *testing.T) {
	history := &fakeHistory{candles: map[string][]domain.Candle{
		"005930": candlesFromCloses(calmCloses(40)),
	}}
	bot, sent := newTestBot(t, watchConfig("005930"), history)

	bot.CheckOnce()
	assert.Empty(t, sent.messages)
}

func TestCheckOnceSkipsFailingAndThinTickers(t *testing.T) {
	history := &fakeHistory{candles: map[string][]domain.Candle{
		"005930": candlesFromCloses(fallingCloses(5)),
	}}
	bot, sent := newTestBot(t, watchConfig("005930", "035720"), history)

	bot.CheckOnce()
	assert.Empty(t, sent.messages)
}

func TestCheckOnceSkipsIncompleteConfig(t *testing.T) {
	bot, sent := newTestBot(t, Config{TelegramToken: "token"}, &fakeHistory{})

	interval := bot.CheckOnce()
	assert.Empty(t, sent.messages)
	assert.Equal(t, time.Hour, interval)
}

func TestCheckOnceSurvivesMissingConfigFile(t *testing.T) {
	bot := New(filepath.Join(t.TempDir(), "missing.json"), &fakeHistory{}, zerolog.Nop())
	assert.Equal(t, time.Hour, bot.CheckOnce())
}

func TestConfigInterval(t *testing.T) {
	assert.Equal(t, time.Hour, (&Config{}).Interval())
	assert.Equal(t, 5*time.Minute, (&Config{IntervalSeconds: 300}).Interval())
}
