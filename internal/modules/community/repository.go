// Package community implements per-ticker comments and BUY/SELL/HOLD votes.
package community

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Vote choices.
const (
	VoteBuy  = "BUY"
	VoteSell = "SELL"
	VoteHold = "HOLD"
)

// Comment is one ticker discussion entry.
type Comment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Username  string    `json:"username"`
	Ticker    string    `json:"ticker"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Tally is the vote distribution for one ticker.
type Tally struct {
	Buy  int `json:"buy"`
	Sell int `json:"sell"`
	Hold int `json:"hold"`
}

// Repository handles comment and vote rows in the app database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new community repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "community").Logger(),
	}
}

// AddComment saves a comment and returns its ID.
func (r *Repository) AddComment(userID int64, ticker, content string) (int64, error) {
	res, err := r.db.Exec(`
		INSERT INTO comments (user_id, ticker, content, created_at)
		VALUES (?, ?, ?, ?)
	`, userID, ticker, content, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to add comment: %w", err)
	}
	return res.LastInsertId()
}

// ListComments returns comments for a ticker, newest first, capped at limit.
func (r *Repository) ListComments(ticker string, limit int) ([]Comment, error) {
	rows, err := r.db.Query(`
		SELECT c.id, c.user_id, u.username, c.ticker, c.content, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.ticker = ?
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT ?
	`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		var created int64
		if err := rows.Scan(&c.ID, &c.UserID, &c.Username, &c.Ticker, &c.Content, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = time.Unix(created, 0)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CastVote records or replaces the user's vote for a ticker.
func (r *Repository) CastVote(userID int64, ticker, voteType string) error {
	_, err := r.db.Exec(`
		INSERT INTO votes (user_id, ticker, vote_type, cast_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, ticker) DO UPDATE SET vote_type = excluded.vote_type, cast_at = excluded.cast_at
	`, userID, ticker, voteType, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to cast vote: %w", err)
	}
	return nil
}

// VoteTally counts votes per choice for a ticker.
func (r *Repository) VoteTally(ticker string) (*Tally, error) {
	rows, err := r.db.Query(`
		SELECT vote_type, COUNT(*) FROM votes WHERE ticker = ? GROUP BY vote_type
	`, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	defer rows.Close()

	var tally Tally
	for rows.Next() {
		var voteType string
		var count int
		if err := rows.Scan(&voteType, &count); err != nil {
			return nil, err
		}
		switch voteType {
		case VoteBuy:
			tally.Buy = count
		case VoteSell:
			tally.Sell = count
		case VoteHold:
			tally.Hold = count
		}
	}
	return &tally, rows.Err()
}
