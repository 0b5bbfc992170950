// Package leaderboard ranks users by settled portfolio return.
package leaderboard

import (
	"github.com/rs/zerolog"

	"github.com/trendlotto/invest/internal/domain"
)

const defaultLimit = 20

// UserStore is the slice of the user repository the leaderboard needs.
type UserStore interface {
	ListIDs() ([]int64, error)
	UpdateTotalReturn(id int64, totalReturn float64) error
	Leaderboard(limit int) ([]domain.User, error)
}

// ReturnCalculator computes a user's current total return percentage.
type ReturnCalculator interface {
	TotalReturnPct(userID int64) (float64, error)
}

// Entry is one leaderboard row.
type Entry struct {
	Rank       int     `json:"rank"`
	Username   string  `json:"username"`
	Membership string  `json:"membership"`
	ReturnPct  float64 `json:"return_pct"`
}

// Service settles returns nightly and serves the ranking.
type Service struct {
	users   UserStore
	returns ReturnCalculator
	log     zerolog.Logger
}

// NewService creates a new leaderboard service
func NewService(users UserStore, returns ReturnCalculator, log zerolog.Logger) *Service {
	return &Service{
		users:   users,
		returns: returns,
		log:     log.With().Str("service", "leaderboard").Logger(),
	}
}

// Settle recomputes and stores every user's total return. Individual user
// failures are logged and skipped so one bad portfolio cannot block the rest.
func (s *Service) Settle() error {
	ids, err := s.users.ListIDs()
	if err != nil {
		return err
	}

	settled := 0
	for _, id := range ids {
		pct, err := s.returns.TotalReturnPct(id)
		if err != nil {
			s.log.Warn().Err(err).Int64("user_id", id).Msg("Skipping user in settlement")
			continue
		}
		if err := s.users.UpdateTotalReturn(id, pct); err != nil {
			s.log.Warn().Err(err).Int64("user_id", id).Msg("Failed to store settled return")
			continue
		}
		settled++
	}

	s.log.Info().Int("users", settled).Msg("Leaderboard settlement complete")
	return nil
}

// Top returns the ranked leaderboard, capped at limit (default 20).
func (s *Service) Top(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	users, err := s.users.Leaderboard(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(users))
	for i, u := range users {
		entries = append(entries, Entry{
			Rank:       i + 1,
			Username:   u.Username,
			Membership: u.Membership,
			ReturnPct:  u.TotalReturn,
		})
	}
	return entries, nil
}
