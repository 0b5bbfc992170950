// Package alertbot is the standalone indicator watcher. It polls daily
// candles for a configured watch list and sends a Telegram message when a
// ticker hits an RSI extreme or breaks out of its Bollinger band.
package alertbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/domain"
	"github.com/trendlotto/invest/internal/modules/review"
	"github.com/trendlotto/invest/internal/notifier"
	"github.com/trendlotto/invest/pkg/formulas"
)

const (
	rsiWindow         = 14
	rsiOversold       = 30.0
	rsiOverbought     = 80.0
	bollingerWindow   = 20
	bollingerK        = 3.0
	historyDays       = 60
	minCandles        = 20
	tickerPaceDefault = time.Second
)

// Bot runs the watch loop.
type Bot struct {
	log        zerolog.Logger
	configPath string
	history    domain.HistorySource

	// tickerPace spaces consecutive candle fetches so the data source is
	// not hammered; tests shorten it.
	tickerPace  time.Duration
	newNotifier func(token, chatID string) domain.Notifier
}

// New creates a new alert bot
func New(configPath string, history domain.HistorySource, log zerolog.Logger) *Bot {
	botLog := log.With().Str("component", "alertbot").Logger()
	return &Bot{
		log:        botLog,
		configPath: configPath,
		history:    history,
		tickerPace: tickerPaceDefault,
		newNotifier: func(token, chatID string) domain.Notifier {
			return notifier.NewTelegram(token, chatID, botLog)
		},
	}
}

// Run loops until the context is cancelled. The config file is re-read at
// the start of every cycle, so the interval and watch list can change
// between cycles.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info().Str("config", b.configPath).Msg("Alert bot started")

	for {
		interval := b.CheckOnce()

		b.log.Info().Dur("sleep", interval).Msg("Cycle complete")
		select {
		case <-ctx.Done():
			b.log.Info().Msg("Alert bot stopped")
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// CheckOnce runs one watch pass and returns how long to sleep before the
// next one. A missing or incomplete config skips the pass.
func (b *Bot) CheckOnce() time.Duration {
	cfg, err := LoadConfig(b.configPath)
	if err != nil {
		b.log.Warn().Err(err).Msg("Config unavailable, skipping pass")
		return defaultInterval
	}
	if !cfg.Ready() {
		b.log.Warn().Msg("Telegram credentials or watch list missing, skipping pass")
		return cfg.Interval()
	}

	b.log.Info().Strs("watch_list", cfg.WatchList).Msg("Starting watch pass")
	send := b.newNotifier(cfg.TelegramToken, cfg.TelegramChatID)

	for i, query := range cfg.WatchList {
		if i > 0 {
			time.Sleep(b.tickerPace)
		}
		b.checkTicker(query, send)
	}

	return cfg.Interval()
}

// checkTicker evaluates one watch entry. Failures are logged and the pass
// moves on to the next entry.
func (b *Bot) checkTicker(query string, send domain.Notifier) {
	ticker := review.ResolveTicker(query)

	now := time.Now()
	candles, err := b.history.GetDailyCandles(ticker, now.AddDate(0, 0, -historyDays), now)
	if err != nil {
		b.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to load candles")
		return
	}
	if len(candles) < minCandles {
		b.log.Debug().Str("ticker", ticker).Int("candles", len(candles)).Msg("Not enough history")
		return
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}

	last := len(closes) - 1
	lastClose := closes[last]
	rsi := formulas.Rsi(closes, rsiWindow)[last]
	bands := formulas.Bollinger(closes, bollingerWindow, bollingerK)
	upper, lower := bands.Upper[last], bands.Lower[last]

	var alerts []string
	if formulas.IsDefined(rsi) && rsi <= rsiOversold {
		alerts = append(alerts, fmt.Sprintf(
			"📉 <b>RSI 과매도 도달 (%.1f)</b>\n👉 초강력 매수 타점이 임박했습니다!", rsi))
	}
	if formulas.IsDefined(rsi) && rsi >= rsiOverbought {
		alerts = append(alerts, fmt.Sprintf(
			"📈 <b>RSI 과매수 도달 (%.1f)</b>\n👉 차익 실현 및 관망 타점이 임박했습니다!", rsi))
	}
	if formulas.IsDefined(upper) && lastClose >= upper {
		alerts = append(alerts, fmt.Sprintf(
			"🔥 <b>볼린저 밴드(20,3) 상단 돌파!</b>\n현재가: %.0f원 (상단선: %.0f원)\n👉 초과열 상태입니다. 익절을 고려하세요.",
			lastClose, upper))
	}
	if formulas.IsDefined(lower) && lastClose <= lower {
		alerts = append(alerts, fmt.Sprintf(
			"🥶 <b>볼린저 밴드(20,3) 하단 이탈!</b>\n현재가: %.0f원 (하단선: %.0f원)\n👉 과도한 투매 상태입니다. 초강력 매수 또는 물타기를 고려하세요.",
			lastClose, lower))
	}

	if len(alerts) == 0 {
		return
	}

	msg := fmt.Sprintf("🚨 <b>[Trend-Lotto Alert] %s (%s)</b> 🚨\n\n%s",
		query, ticker, strings.Join(alerts, "\n\n"))
	if err := send.Send(msg); err != nil {
		b.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to send alert")
		return
	}
	b.log.Info().Str("ticker", ticker).Int("conditions", len(alerts)).Msg("Alert sent")
}
