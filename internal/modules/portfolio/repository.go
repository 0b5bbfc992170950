// Package portfolio manages per-user holdings with merge-averaged buys.
package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Holding is one portfolio row.
type Holding struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	Ticker      string    `json:"ticker"`
	AvgPrice    float64   `json:"avg_price"`
	Qty         float64   `json:"qty"`
	TargetPrice float64   `json:"target_price"`
	AddedAt     time.Time `json:"added_at"`
}

// Repository handles portfolio rows in the app database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new portfolio repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "portfolio").Logger(),
	}
}

// DistinctTickers returns every ticker held by any user, sorted.
func (r *Repository) DistinctTickers() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT ticker FROM portfolios ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// GetByTicker returns the user's holding for a ticker, or sql.ErrNoRows.
func (r *Repository) GetByTicker(userID int64, ticker string) (*Holding, error) {
	var h Holding
	var added int64
	var target sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT id, user_id, ticker, avg_price, qty, target_price, added_at
		FROM portfolios WHERE user_id = ? AND ticker = ?
	`, userID, ticker).Scan(&h.ID, &h.UserID, &h.Ticker, &h.AvgPrice, &h.Qty, &target, &added)
	if err != nil {
		return nil, err
	}
	h.TargetPrice = target.Float64
	h.AddedAt = time.Unix(added, 0)
	return &h, nil
}

// List returns all holdings for a user, oldest first.
func (r *Repository) List(userID int64) ([]Holding, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, ticker, avg_price, qty, target_price, added_at
		FROM portfolios WHERE user_id = ? ORDER BY added_at, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []Holding
	for rows.Next() {
		var h Holding
		var added int64
		var target sql.NullFloat64
		if err := rows.Scan(&h.ID, &h.UserID, &h.Ticker, &h.AvgPrice, &h.Qty, &target, &added); err != nil {
			return nil, err
		}
		h.TargetPrice = target.Float64
		h.AddedAt = time.Unix(added, 0)
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// Insert creates a new holding row.
func (r *Repository) Insert(h Holding) (int64, error) {
	res, err := r.db.Exec(`
		INSERT INTO portfolios (user_id, ticker, avg_price, qty, target_price, added_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, h.UserID, h.Ticker, h.AvgPrice, h.Qty, h.TargetPrice, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert holding: %w", err)
	}
	return res.LastInsertId()
}

// Update overwrites price, quantity and target for an existing holding.
func (r *Repository) Update(h Holding) error {
	_, err := r.db.Exec(`
		UPDATE portfolios SET avg_price = ?, qty = ?, target_price = ? WHERE id = ?
	`, h.AvgPrice, h.Qty, h.TargetPrice, h.ID)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	return nil
}

// Delete removes a holding, scoped to the owning user. Returns sql.ErrNoRows
// when the row does not exist or belongs to someone else.
func (r *Repository) Delete(userID, holdingID int64) error {
	res, err := r.db.Exec(`DELETE FROM portfolios WHERE id = ? AND user_id = ?`, holdingID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
