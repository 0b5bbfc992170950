// Package billing handles membership tiers and the payment confirmation
// webhook. Amounts are kept as exact decimal strings end to end.
package billing

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/trendlotto/invest/internal/domain"
)

// PremiumMonthlyPrice is the KRW price checked on payment confirmations.
var PremiumMonthlyPrice = decimal.NewFromInt(4900)

// ErrDuplicatePayment is returned when a transaction ID was already recorded.
var ErrDuplicatePayment = errors.New("payment already recorded")

// Payment is one confirmed payment row.
type Payment struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"`
	UserID        int64           `json:"-"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ProviderRef   string          `json:"provider_ref"`
	ConfirmedAt   time.Time       `json:"confirmed_at"`
}

// UserStore is the slice of the user repository billing needs.
type UserStore interface {
	GetByID(id int64) (*domain.User, error)
	UpdateMembership(id int64, membership string) error
}

// Service implements upgrades, downgrades and payment recording.
type Service struct {
	db    *sql.DB
	users UserStore
	log   zerolog.Logger
}

// NewService creates a new billing service
func NewService(db *sql.DB, users UserStore, log zerolog.Logger) *Service {
	return &Service{
		db:    db,
		users: users,
		log:   log.With().Str("service", "billing").Logger(),
	}
}

// ConfirmPayment validates a provider webhook payload, records the payment
// under a fresh transaction ID and upgrades the user to premium.
func (s *Service) ConfirmPayment(userID int64, amountStr, currency, providerRef string) (*Payment, error) {
	if providerRef == "" {
		return nil, fmt.Errorf("provider reference is required")
	}
	if currency == "" {
		currency = "KRW"
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(amountStr))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}
	if amount.LessThan(PremiumMonthlyPrice) {
		return nil, fmt.Errorf("amount %s is below the premium price %s", amount, PremiumMonthlyPrice)
	}

	if _, err := s.users.GetByID(userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	p := Payment{
		TransactionID: uuid.NewString(),
		UserID:        userID,
		Amount:        amount,
		Currency:      currency,
		ProviderRef:   providerRef,
		ConfirmedAt:   time.Now(),
	}

	res, err := s.db.Exec(`
		INSERT INTO payments (transaction_id, user_id, amount, currency, provider_ref, confirmed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.TransactionID, p.UserID, p.Amount.String(), p.Currency, p.ProviderRef, p.ConfirmedAt.Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicatePayment
		}
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	p.ID, _ = res.LastInsertId()

	if err := s.users.UpdateMembership(userID, domain.MembershipPremium); err != nil {
		return nil, fmt.Errorf("payment recorded but upgrade failed: %w", err)
	}

	s.log.Info().
		Int64("user_id", userID).
		Str("transaction_id", p.TransactionID).
		Str("amount", p.Amount.String()).
		Msg("Payment confirmed, membership upgraded")
	return &p, nil
}

// Downgrade drops a user back to the basic tier.
func (s *Service) Downgrade(userID int64) error {
	if err := s.users.UpdateMembership(userID, domain.MembershipBasic); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user not found")
		}
		return err
	}
	s.log.Info().Int64("user_id", userID).Msg("Membership downgraded")
	return nil
}

// History returns a user's confirmed payments, newest first.
func (s *Service) History(userID int64) ([]Payment, error) {
	rows, err := s.db.Query(`
		SELECT id, transaction_id, user_id, amount, currency, provider_ref, confirmed_at
		FROM payments WHERE user_id = ? ORDER BY confirmed_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		var amount string
		var confirmed int64
		if err := rows.Scan(&p.ID, &p.TransactionID, &p.UserID, &amount, &p.Currency, &p.ProviderRef, &confirmed); err != nil {
			return nil, err
		}
		p.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q in payment %d: %w", amount, p.ID, err)
		}
		p.ConfirmedAt = time.Unix(confirmed, 0)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
