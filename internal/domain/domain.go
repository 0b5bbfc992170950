// Package domain holds shared contracts used across modules.
// It has no infrastructure dependencies so modules can depend on it freely.
package domain

import "time"

// Candle is one daily price bar, ascending by date in any series.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Quote is a latest-price observation for a ticker.
type Quote struct {
	Ticker string    `json:"ticker"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
	Source string    `json:"source"`
}

// PriceSource provides latest quotes for tickers.
// Implementations are expected to fail fast so callers can fall back.
type PriceSource interface {
	GetQuote(ticker string) (*Quote, error)
	Name() string
}

// HistorySource provides daily candle history for tickers.
type HistorySource interface {
	GetDailyCandles(ticker string, from, to time.Time) ([]Candle, error)
}

// Notifier delivers user-facing notification messages.
type Notifier interface {
	Send(text string) error
}

// User is the authenticated principal attached to request contexts.
type User struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	Membership  string  `json:"membership"`
	TotalReturn float64 `json:"total_return"`
}

// Membership levels
const (
	MembershipBasic   = "basic"
	MembershipPremium = "premium"
)
