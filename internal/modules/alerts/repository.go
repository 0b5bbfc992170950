// Package alerts implements one-shot price alerts checked in the background.
package alerts

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Alert condition directions.
const (
	ConditionAbove = "ABOVE"
	ConditionBelow = "BELOW"
)

// Alert is one price alert row. Active alerts are armed; the checker flips
// them inactive exactly once when the condition holds.
type Alert struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"-"`
	Ticker        string     `json:"ticker"`
	TargetPrice   float64    `json:"target_price"`
	ConditionType string     `json:"condition_type"`
	IsActive      bool       `json:"is_active"`
	TriggeredAt   *time.Time `json:"triggered_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Repository handles alert rows in the app database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new alert repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "alerts").Logger(),
	}
}

// Create inserts a new armed alert.
func (r *Repository) Create(a Alert) (int64, error) {
	res, err := r.db.Exec(`
		INSERT INTO alerts (user_id, ticker, target_price, condition_type, is_active, created_at)
		VALUES (?, ?, ?, ?, 1, ?)
	`, a.UserID, a.Ticker, a.TargetPrice, a.ConditionType, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to create alert: %w", err)
	}
	return res.LastInsertId()
}

// ListByUser returns all alerts for a user, newest first.
func (r *Repository) ListByUser(userID int64) ([]Alert, error) {
	return r.list(`SELECT id, user_id, ticker, target_price, condition_type, is_active, triggered_at, created_at
		FROM alerts WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

// ListActive returns every armed alert across all users.
func (r *Repository) ListActive() ([]Alert, error) {
	return r.list(`SELECT id, user_id, ticker, target_price, condition_type, is_active, triggered_at, created_at
		FROM alerts WHERE is_active = 1 ORDER BY ticker, id`)
}

func (r *Repository) list(query string, args ...interface{}) ([]Alert, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		var active int
		var created int64
		var triggered sql.NullInt64
		if err := rows.Scan(&a.ID, &a.UserID, &a.Ticker, &a.TargetPrice, &a.ConditionType, &active, &triggered, &created); err != nil {
			return nil, err
		}
		a.IsActive = active != 0
		a.CreatedAt = time.Unix(created, 0)
		if triggered.Valid {
			at := time.Unix(triggered.Int64, 0)
			a.TriggeredAt = &at
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// Deactivate marks an alert as triggered. Only flips rows that are still
// active so a concurrent pass cannot double-fire.
func (r *Repository) Deactivate(alertID int64) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE alerts SET is_active = 0, triggered_at = ? WHERE id = ? AND is_active = 1
	`, time.Now().Unix(), alertID)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate alert: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete removes an alert, scoped to the owning user.
func (r *Repository) Delete(userID, alertID int64) error {
	res, err := r.db.Exec(`DELETE FROM alerts WHERE id = ? AND user_id = ?`, alertID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
