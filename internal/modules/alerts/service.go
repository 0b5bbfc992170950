package alerts

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/domain"
)

// QuoteGetter resolves current prices for alert evaluation.
type QuoteGetter interface {
	GetQuote(ticker string) *domain.Quote
}

// Service creates alerts and runs the periodic trigger check.
type Service struct {
	repo     *Repository
	quotes   QuoteGetter
	notifier domain.Notifier
	log      zerolog.Logger
}

// NewService creates a new alert service
func NewService(repo *Repository, quotes QuoteGetter, notifier domain.Notifier, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		quotes:   quotes,
		notifier: notifier,
		log:      log.With().Str("service", "alerts").Logger(),
	}
}

// Create validates and arms a new alert.
func (s *Service) Create(userID int64, ticker string, targetPrice float64, conditionType string) (*Alert, error) {
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	if targetPrice <= 0 {
		return nil, fmt.Errorf("target price must be positive")
	}
	if conditionType != ConditionAbove && conditionType != ConditionBelow {
		return nil, fmt.Errorf("condition must be %s or %s", ConditionAbove, ConditionBelow)
	}

	a := Alert{
		UserID:        userID,
		Ticker:        ticker,
		TargetPrice:   targetPrice,
		ConditionType: conditionType,
		IsActive:      true,
	}
	id, err := s.repo.Create(a)
	if err != nil {
		return nil, err
	}
	a.ID = id
	return &a, nil
}

// List returns a user's alerts.
func (s *Service) List(userID int64) ([]Alert, error) {
	return s.repo.ListByUser(userID)
}

// Delete removes a user's alert.
func (s *Service) Delete(userID, alertID int64) error {
	return s.repo.Delete(userID, alertID)
}

// CheckAll runs one trigger pass over every armed alert. Each ticker is
// quoted at most once per pass; a triggered alert is deactivated before the
// notification goes out, so re-running the pass never re-notifies.
// Returns the number of alerts fired.
func (s *Service) CheckAll() (int, error) {
	armed, err := s.repo.ListActive()
	if err != nil {
		return 0, err
	}
	if len(armed) == 0 {
		return 0, nil
	}

	prices := make(map[string]float64)
	fired := 0

	for _, a := range armed {
		price, ok := prices[a.Ticker]
		if !ok {
			q := s.quotes.GetQuote(a.Ticker)
			price = q.Price
			prices[a.Ticker] = price
		}

		if !conditionMet(a, price) {
			continue
		}

		flipped, err := s.repo.Deactivate(a.ID)
		if err != nil {
			s.log.Error().Err(err).Int64("alert_id", a.ID).Msg("Failed to deactivate alert")
			continue
		}
		if !flipped {
			// Another pass got here first.
			continue
		}
		fired++

		msg := fmt.Sprintf("🔔 %s hit your target: current %.0f, alert %s %.0f",
			a.Ticker, price, a.ConditionType, a.TargetPrice)
		if s.notifier != nil {
			if err := s.notifier.Send(msg); err != nil {
				s.log.Warn().Err(err).Int64("alert_id", a.ID).Msg("Alert notification failed")
			}
		}
		s.log.Info().
			Str("ticker", a.Ticker).
			Float64("price", price).
			Float64("target", a.TargetPrice).
			Str("condition", a.ConditionType).
			Msg("Alert triggered")
	}

	return fired, nil
}

func conditionMet(a Alert, price float64) bool {
	switch a.ConditionType {
	case ConditionAbove:
		return price >= a.TargetPrice
	case ConditionBelow:
		return price <= a.TargetPrice
	}
	return false
}
