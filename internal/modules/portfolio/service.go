package portfolio

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/domain"
)

// QuoteGetter resolves current prices for return calculations.
type QuoteGetter interface {
	GetQuote(ticker string) *domain.Quote
}

// PositionView is one holding enriched with the current price.
type PositionView struct {
	Holding
	CurrentPrice float64 `json:"current_price"`
	ReturnPct    float64 `json:"return_pct"`
	PriceSource  string  `json:"price_source"`
}

// Service implements merge-averaged buys and valued listings.
type Service struct {
	repo   *Repository
	quotes QuoteGetter
	log    zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(repo *Repository, quotes QuoteGetter, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		quotes: quotes,
		log:    log.With().Str("service", "portfolio").Logger(),
	}
}

// Add records a buy. Buying a ticker the user already holds merges into the
// existing row with a quantity-weighted average price.
func (s *Service) Add(userID int64, ticker string, price, qty, targetPrice float64) (*Holding, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if price <= 0 || qty <= 0 {
		return nil, fmt.Errorf("price and quantity must be positive")
	}

	existing, err := s.repo.GetByTicker(userID, ticker)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if existing != nil {
		totalQty := existing.Qty + qty
		existing.AvgPrice = (existing.AvgPrice*existing.Qty + price*qty) / totalQty
		existing.Qty = totalQty
		if targetPrice > 0 {
			existing.TargetPrice = targetPrice
		}
		if err := s.repo.Update(*existing); err != nil {
			return nil, err
		}
		s.log.Debug().Str("ticker", ticker).Float64("avg_price", existing.AvgPrice).Msg("Merged buy into holding")
		return existing, nil
	}

	h := Holding{
		UserID:      userID,
		Ticker:      ticker,
		AvgPrice:    price,
		Qty:         qty,
		TargetPrice: targetPrice,
	}
	id, err := s.repo.Insert(h)
	if err != nil {
		return nil, err
	}
	h.ID = id
	return &h, nil
}

// Remove deletes a holding owned by the user.
func (s *Service) Remove(userID, holdingID int64) error {
	return s.repo.Delete(userID, holdingID)
}

// List returns the user's holdings with current prices and return
// percentages. Quote failures never fail the listing; the resolver always
// produces a price.
func (s *Service) List(userID int64) ([]PositionView, error) {
	holdings, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}

	views := make([]PositionView, 0, len(holdings))
	for _, h := range holdings {
		view := PositionView{Holding: h}
		if s.quotes != nil {
			q := s.quotes.GetQuote(h.Ticker)
			view.CurrentPrice = q.Price
			view.PriceSource = q.Source
			if h.AvgPrice > 0 {
				view.ReturnPct = (q.Price - h.AvgPrice) / h.AvgPrice * 100
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// TotalReturnPct computes the value-weighted return across all holdings,
// used by the nightly leaderboard settlement.
func (s *Service) TotalReturnPct(userID int64) (float64, error) {
	views, err := s.List(userID)
	if err != nil {
		return 0, err
	}

	var cost, value float64
	for _, v := range views {
		cost += v.AvgPrice * v.Qty
		value += v.CurrentPrice * v.Qty
	}
	if cost == 0 {
		return 0, nil
	}
	return (value - cost) / cost * 100, nil
}
